package kernels

import (
	"math"
	"sync/atomic"
)

// Unset marks a slot of a Recurrence that has not been computed.
const Unset = math.MinInt

// A Recurrence evaluates x[0] = 0, x[i] = x[i-1] + 1 by storing each result in
// a slice shared by all invocations of Step.
//
// Step violates the purity requirement of the concurrent strategies on
// purpose: it reads the result of the previous element and writes shared
// state. Mapped over the indices 1..n with parmap.Sequential, it yields
// 1..n. With a concurrent strategy, Step regularly runs before its
// predecessor and yields Unset, and the outcome differs from run to run.
// Slots are accessed atomically, so the hazard is a logical one, not a data
// race.
type Recurrence struct {
	xs []atomic.Int64
}

// NewRecurrence returns a recurrence with n+1 slots, where only x[0] is set.
func NewRecurrence(n int) *Recurrence {
	r := &Recurrence{xs: make([]atomic.Int64, n+1)}
	for i := 1; i <= n; i++ {
		r.xs[i].Store(Unset)
	}
	return r
}

// Step computes x[i] from x[i-1] and stores it. If x[i-1] has not been
// computed yet, Step stores nothing and returns Unset.
func (r *Recurrence) Step(i int) (int, error) {
	prev := r.xs[i-1].Load()
	if prev == Unset {
		return Unset, nil
	}
	r.xs[i].Store(prev + 1)
	return int(prev + 1), nil
}

// Values returns all slots, including x[0].
func (r *Recurrence) Values() []int {
	values := make([]int, len(r.xs))
	for i := range r.xs {
		values[i] = int(r.xs[i].Load())
	}
	return values
}

// RecurrenceValues returns x[0..n] evaluated sequentially, which is the
// correct result.
func RecurrenceValues(n int) []int {
	values := make([]int, n+1)
	for i := 1; i <= n; i++ {
		values[i] = values[i-1] + 1
	}
	return values
}
