package internal

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/exascience/parmap"
)

// Call invokes f on x and converts a panic into a *PanicError.
func Call[T, U any](f parmap.Func[T, U], x T) (result U, err error) {
	defer func() {
		if p := recover(); p != nil {
			var zero U
			result, err = zero, NewPanicError(p)
		}
	}()
	return f(x)
}

// A Collector records element failures on behalf of the workers of one
// batch and decides whether the batch has to stop.
//
// A Collector is safe for concurrent use.
type Collector struct {
	policy  parmap.ErrorPolicy
	stopped atomic.Bool
	mutex   sync.Mutex
	errs    []*parmap.TransformError
}

// NewCollector returns a collector applying the given policy.
func NewCollector(policy parmap.ErrorPolicy) *Collector {
	return &Collector{policy: policy}
}

// Fail records that the element at index failed with err. It returns true
// if the batch must stop.
func (c *Collector) Fail(index int, err error) bool {
	c.mutex.Lock()
	c.errs = append(c.errs, &parmap.TransformError{Index: index, Err: err})
	c.mutex.Unlock()
	if c.policy == parmap.FailFast {
		c.stopped.Store(true)
		return true
	}
	return false
}

// Stop marks the batch as stopped without recording a failure, for example
// on cancellation.
func (c *Collector) Stop() {
	c.stopped.Store(true)
}

// Stopped reports whether the batch must stop.
func (c *Collector) Stopped() bool {
	return c.stopped.Load()
}

// Err returns nil if no element failed. Otherwise, under FailFast it returns
// the *parmap.TransformError with the lowest recorded index, and under
// CollectErrors a *parmap.PartialError with all failures sorted by index.
func (c *Collector) Err() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if len(c.errs) == 0 {
		return nil
	}
	sort.Slice(c.errs, func(i, j int) bool {
		return c.errs[i].Index < c.errs[j].Index
	})
	if c.policy == parmap.FailFast {
		return c.errs[0]
	}
	errs := make([]*parmap.TransformError, len(c.errs))
	copy(errs, c.errs)
	return &parmap.PartialError{Errors: errs}
}

// Finish turns the state of a batch into the result of a map call. A
// fail-fast failure discards results, as does cancellation of ctx. Under
// CollectErrors, results are returned together with the
// *parmap.PartialError.
func Finish[U any](ctx context.Context, results []U, c *Collector) ([]U, error) {
	err := c.Err()
	switch {
	case err != nil && c.policy == parmap.FailFast:
		return nil, err
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		return results, err
	}
	return results, nil
}
