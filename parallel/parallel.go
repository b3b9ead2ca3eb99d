// Package parallel provides the multithread strategy: it applies a transform
// to the elements of a batch in worker goroutines and reassembles the
// results by index.
//
// Two schedules are available. Map divides the index range statically into
// one contiguous partition per worker, by recursive halving of the range.
// MapDynamic hands out one index at a time to a bounded pool of goroutines,
// which balances transforms with uneven cost per element.
//
// Both schedules are only correct for pure transforms. A transform that
// reads the result of another element, or writes state shared with other
// invocations, gives undefined results, and neither schedule detects this.
package parallel

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/internal"
)

// Range receives a range, a batch count n, and a range function f,
// divides the range into batches, and invokes the range function for
// each of these batches in parallel, covering the half-open interval
// from low to high, including low but excluding high.
//
// The range is specified by a low and high integer, with low <=
// high. The batches are determined by dividing up the size of the
// range (high - low) by n. If n is 0, a reasonable default is used
// that takes runtime.GOMAXPROCS(0) into account.
//
// The range function is invoked for each batch in its own goroutine,
// with 0 <= low <= high, and Range returns only when all range
// functions have terminated, returning the left-most error value
// that is different from nil.
//
// Range panics if high < low, or if n < 0.
//
// If one or more range function invocations panic, the corresponding
// goroutines recover the panics, and Range eventually panics with
// the left-most recovered panic value, annotated with the stack trace
// of the goroutine that recovered it.
func Range(
	low, high, n int,
	f func(low, high int) error,
) error {
	var recur func(int, int, int) error
	recur = func(low, high, n int) (err error) {
		switch {
		case n == 1:
			return f(low, high)
		case n > 1:
			batchSize := ((high - low - 1) / n) + 1
			half := n / 2
			mid := low + batchSize*half
			if mid >= high {
				return f(low, high)
			}
			var err0, err1 error
			var p interface{}
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer func() {
					p = internal.WrapPanic(recover())
					wg.Done()
				}()
				err1 = recur(mid, high, n-half)
			}()
			err0 = recur(low, mid, half)
			wg.Wait()
			if p != nil {
				panic(p)
			}
			if err0 != nil {
				err = err0
			} else {
				err = err1
			}
			return
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
	}
	return recur(low, high, internal.ComputeNofBatches(low, high, n))
}

func checkWorkers(workers int) error {
	if workers <= 0 {
		return &parmap.ConfigurationError{Field: "workers", Value: workers, Reason: "must be positive"}
	}
	return nil
}

// Map applies f to each element of inputs in parallel and returns the
// results in input order.
//
// The index range is divided into at most workers contiguous partitions,
// each of which is processed by its own goroutine. Map returns only when all
// goroutines have terminated. Workers may exceed the hardware parallelism,
// in which case the goroutines are multiplexed by the Go scheduler.
//
// Under the FailFast policy, a failing element stops all partitions at
// their next element, and Map returns the *parmap.TransformError with the
// lowest failing index observed and a nil slice. Under the CollectErrors
// policy, all elements are evaluated and the results are returned together
// with a *parmap.PartialError if any element failed. Cancelling ctx stops all
// partitions at their next element, and Map returns ctx.Err().
//
// A panic in f is recovered and reported as a failure of that element.
//
// Map returns a *parmap.ConfigurationError if workers <= 0.
func Map[T, U any](
	ctx context.Context,
	inputs []T,
	f parmap.Func[T, U],
	workers int,
	policy parmap.ErrorPolicy,
) ([]U, error) {
	if err := checkWorkers(workers); err != nil {
		return nil, err
	}
	results := make([]U, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}
	collector := internal.NewCollector(policy)
	stop := context.AfterFunc(ctx, collector.Stop)
	defer stop()
	_ = Range(0, len(inputs), workers, func(low, high int) error {
		for i := low; i < high; i++ {
			if collector.Stopped() {
				return nil
			}
			y, err := internal.Call(f, inputs[i])
			if err != nil {
				collector.Fail(i, err)
				continue
			}
			results[i] = y
		}
		return nil
	})
	return internal.Finish(ctx, results, collector)
}

// MapDynamic applies f to each element of inputs in parallel and returns the
// results in input order.
//
// MapDynamic starts one task per element, but never runs more than workers
// tasks at the same time, so that a goroutine that finishes early picks up
// the next pending element. Results are written to their original index.
// MapDynamic returns only when all started tasks have terminated.
//
// Errors, cancellation, and panics are handled as by Map.
func MapDynamic[T, U any](
	ctx context.Context,
	inputs []T,
	f parmap.Func[T, U],
	workers int,
	policy parmap.ErrorPolicy,
) ([]U, error) {
	if err := checkWorkers(workers); err != nil {
		return nil, err
	}
	results := make([]U, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}
	collector := internal.NewCollector(policy)
	stop := context.AfterFunc(ctx, collector.Stop)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		i := i
		if collector.Stopped() || gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if collector.Stopped() {
				return nil
			}
			y, err := internal.Call(f, inputs[i])
			if err != nil {
				if collector.Fail(i, err) {
					return err
				}
				return nil
			}
			results[i] = y
			return nil
		})
	}
	// element errors are recorded by the collector
	_ = g.Wait()
	return internal.Finish(ctx, results, collector)
}
