package kernels_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/batch"
	"github.com/exascience/parmap/kernels"
	"github.com/exascience/parmap/process"
)

func ExamplePrimes() {
	ys, err := batch.Map(context.Background(), []int{2, 3, 4, 6, 17}, kernels.Primes(),
		batch.WithStrategy(parmap.Thread))
	fmt.Println(ys, err)

	// Output:
	// [true true false false true] <nil>
}

func ExampleRecurrenceValues() {
	fmt.Println(kernels.RecurrenceValues(5))

	// Output:
	// [0 1 2 3 4 5]
}

func TestIsPrime(t *testing.T) {
	primes := map[int]bool{2: true, 3: true, 5: true, 7: true, 11: true, 13: true, 17: true, 19: true, 23: true, 25: false, 29: true, 31: true}
	for n := -5; n < 32; n++ {
		got, err := kernels.IsPrime(n)
		require.NoError(t, err)
		assert.Equal(t, primes[n], got, "n = %d", n)
	}
	got, _ := kernels.IsPrime(2147483647)
	assert.True(t, got)
	got, _ = kernels.IsPrime(2147483649)
	assert.False(t, got)
}

func TestSieveAgreesWithTrialDivision(t *testing.T) {
	ns := make([]int, 0, 1200)
	for n := -10; n < 1000; n++ {
		ns = append(ns, n)
	}
	ns = append(ns, 7919, 7921, 104729)
	got, err := kernels.SieveIsPrime(ns)
	require.NoError(t, err)
	require.Len(t, got, len(ns))
	for i, n := range ns {
		want, _ := kernels.IsPrime(n)
		assert.Equal(t, want, got[i], "n = %d", n)
	}

	got, err = kernels.SieveIsPrime(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = kernels.SieveIsPrime([]int{0, 1, -7})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false}, got)
}

func TestParseIsPrime(t *testing.T) {
	got, err := kernels.ParseIsPrime("17")
	require.NoError(t, err)
	assert.True(t, got)

	_, err = kernels.ParseIsPrime("bad")
	assert.ErrorContains(t, err, "not an integer")

	_, err = kernels.ParseSieveIsPrime([]string{"1", "2", "bad", "x"})
	var te *parmap.TransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 2, te.Index)
}

func TestKernelsAreRegistered(t *testing.T) {
	assert.True(t, process.Registered(kernels.IsPrimeName))
	assert.True(t, process.Registered(kernels.ParseIsPrimeName))
	ok, _ := kernels.Primes().Supports(parmap.Vectorized)
	assert.True(t, ok)
	ok, reason := kernels.Affine(1, 0).Supports(parmap.Process)
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
}

func TestAffineFormsAgree(t *testing.T) {
	kernel := kernels.Affine(1.1, 1e-17)
	xs := []float64{0, 1, -1, 0.1, math.Pi, 1e10, -3.3e-8, math.Inf(1)}
	vector, err := kernel.Vector(xs)
	require.NoError(t, err)
	for i, x := range xs {
		y, err := kernel.Elem(x)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(y), math.Float64bits(vector[i]), "x = %v", x)
	}
}

func TestRecurrence(t *testing.T) {
	r := kernels.NewRecurrence(3)
	assert.Equal(t, []int{0, kernels.Unset, kernels.Unset, kernels.Unset}, r.Values())

	// out of order: the successor of an unset slot cannot be computed
	y, err := r.Step(2)
	require.NoError(t, err)
	assert.Equal(t, kernels.Unset, y)

	for i := 1; i <= 3; i++ {
		y, err := r.Step(i)
		require.NoError(t, err)
		assert.Equal(t, i, y)
	}
	assert.Equal(t, kernels.RecurrenceValues(3), r.Values())
}
