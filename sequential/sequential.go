// Package sequential provides the sequential strategy, an explicit loop over
// the input batch.
//
// The sequential strategy is the baseline against which all other strategies
// are checked: for a pure transform, every strategy must produce exactly the
// output of Map in this package. It is also the only strategy that is valid
// for transforms whose result depends on other elements.
package sequential

import (
	"context"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/internal"
)

// Map applies f to each element of inputs in index order and returns the
// results in the same order.
//
// Map checks ctx between elements and returns ctx.Err() if it is done.
// Under the FailFast policy, Map returns the *parmap.TransformError of the
// first failing element and a nil slice. Under the CollectErrors policy, Map
// evaluates every element and returns the results together with a
// *parmap.PartialError if any element failed.
//
// A panic in f is recovered and reported as a failure of that element.
func Map[T, U any](
	ctx context.Context,
	inputs []T,
	f parmap.Func[T, U],
	policy parmap.ErrorPolicy,
) ([]U, error) {
	results := make([]U, len(inputs))
	collector := internal.NewCollector(policy)
	for i, x := range inputs {
		if ctx.Err() != nil {
			collector.Stop()
			break
		}
		y, err := internal.Call(f, x)
		if err != nil {
			if collector.Fail(i, err) {
				break
			}
			continue
		}
		results[i] = y
	}
	return internal.Finish(ctx, results, collector)
}
