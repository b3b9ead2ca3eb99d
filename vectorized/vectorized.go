// Package vectorized provides the vectorized strategy: it applies the
// whole-sequence form of a transform to a batch in a single call.
//
// For elementwise numeric work, a vector form written against whole slices
// usually outperforms both the sequential loop and the concurrent
// strategies, at the cost of expressing the transform in a vector-native
// way instead of as a per-element function.
package vectorized

import (
	"context"
	"errors"
	"fmt"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/internal"
)

// ErrLengthMismatch is returned when a vector form returns a different number
// of results than it received inputs.
var ErrLengthMismatch = errors.New("vector form returned wrong number of results")

// Map applies vf to inputs and returns its results.
//
// Map checks ctx before calling vf, but a running vector form is not
// interrupted. A failure of vf as a whole is reported as the error of vf, not
// as a *parmap.TransformError, since no single element can be blamed. A panic
// in vf is recovered and returned as an error.
func Map[T, U any](ctx context.Context, inputs []T, vf parmap.VectorFunc[T, U]) ([]U, error) {
	if vf == nil {
		return nil, &parmap.UnsupportedStrategyError{Strategy: parmap.Vectorized, Reason: "no vector form"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return []U{}, nil
	}
	results, err := call(vf, inputs)
	if err != nil {
		return nil, err
	}
	if len(results) != len(inputs) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(results), len(inputs))
	}
	return results, nil
}

func call[T, U any](vf parmap.VectorFunc[T, U], inputs []T) (results []U, err error) {
	defer func() {
		if p := recover(); p != nil {
			results, err = nil, internal.NewPanicError(p)
		}
	}()
	return vf(inputs)
}
