/*
Package batch maps a pure transform over an ordered batch of inputs with one
of several interchangeable execution strategies.

Map is the single entry point. It validates its options before any work
begins, selects a strategy, and returns one output per input, in input
order, such that output[i] is the transform of input[i]. The strategies
differ only in wall-clock time and resource usage:

	parmap.Sequential  explicit loop on the calling goroutine
	parmap.Thread      worker goroutines, static or dynamic schedule
	parmap.Process     worker processes running the same binary
	parmap.Vectorized  the whole-sequence form of the transform

Concurrent strategies require independence between elements. The transform
must not read or write state shared with other invocations, and it must not
depend on the order or the results of other invocations. A dependent
computation such as the recurrence x[n] = x[n-1] + 1, evaluated by a
transform that reads the previous element's output, produces wrong and
nondeterministic results under parmap.Thread and parmap.Process, without
any error being raised. Purity cannot be checked mechanically, so Map does
not try to: the burden is on the caller. Use parmap.Sequential for such
computations.

If the requested strategy is not available, because the kernel lacks the
required form or the host cannot start worker processes, Map returns a
*parmap.UnsupportedStrategyError. With WithFallback(true), Map runs the
sequential strategy instead, logs a warning, and reports a FallbackEvent to
the handler set with WithFallbackHandler.

The vector form fails as a whole, so the vectorized strategy cannot be
combined with parmap.CollectErrors, and WithPreferVector is ignored under
that policy.

Map logs through the zerolog logger stored in its context, if any.
*/
package batch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/parallel"
	"github.com/exascience/parmap/process"
	"github.com/exascience/parmap/sequential"
	"github.com/exascience/parmap/vectorized"
)

// IndependenceRequirement states the precondition of the concurrent
// strategies. It is logged whenever a concurrent strategy starts.
const IndependenceRequirement = "concurrent strategies require independence between elements: " +
	"a transform that depends on other elements' results or on shared mutable state " +
	"yields undefined results, and this is not detected"

// A Kernel bundles the forms in which a transform can be applied.
//
// Elem is the per-element form used by the sequential and multithread
// strategies. Vector is the whole-sequence form used by the vectorized
// strategy. Name is the name under which Elem was passed to process.Register,
// used by the multiprocess strategy. A kernel needs only the forms required
// by the strategies it is used with.
type Kernel[T, U any] struct {
	Name   string
	Elem   parmap.Func[T, U]
	Vector parmap.VectorFunc[T, U]
}

// Func returns a kernel with only a per-element form.
func Func[T, U any](f parmap.Func[T, U]) Kernel[T, U] {
	return Kernel[T, U]{Elem: f}
}

// Supports reports whether the kernel can be run with the given strategy on
// this host. If not, it also returns the reason.
func (k Kernel[T, U]) Supports(strategy parmap.Strategy) (bool, string) {
	switch strategy {
	case parmap.Sequential, parmap.Thread:
		if k.Elem == nil {
			return false, "kernel has no element form"
		}
	case parmap.Vectorized:
		if k.Vector == nil {
			return false, "kernel has no vector form"
		}
	case parmap.Process:
		if k.Name == "" {
			return false, "kernel has no registered name"
		}
		if !process.Registered(k.Name) {
			return false, "transform " + k.Name + " is not registered"
		}
		return process.Supported()
	default:
		return false, "unknown strategy"
	}
	return true, ""
}

// Map applies the kernel to each element of inputs and returns the results
// in input order, using the strategy selected by opts.
//
// Map returns a *parmap.ConfigurationError for invalid options, including a
// kernel without the element form required by parmap.Sequential or
// parmap.Thread and the combination of parmap.Vectorized with
// parmap.CollectErrors, and a *parmap.UnsupportedStrategyError for an
// unavailable strategy, before any work begins. An empty batch yields an
// empty, non-nil slice for every strategy.
//
// Under the default parmap.FailFast policy, a failing element aborts the
// batch, and Map returns the *parmap.TransformError carrying its index and a
// nil slice; partial results are never returned. Under parmap.CollectErrors,
// Map returns all results together with a *parmap.PartialError; failed
// slots hold the zero value. A failure of the vector form as a whole is
// returned as is; for that reason WithPreferVector is ignored under
// parmap.CollectErrors. Cancelling ctx stops the batch, and Map returns
// ctx.Err() once all workers have been reclaimed.
//
// See the package documentation for the independence requirement of the
// concurrent strategies.
func Map[T, U any](ctx context.Context, inputs []T, kernel Kernel[T, U], opts ...Option) ([]U, error) {
	s := newSettings(opts)
	if err := s.validate(); err != nil {
		return nil, err
	}
	strategy, err := selectStrategy(ctx, s, kernel)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().
		Str("strategy", strategy.String()).
		Int("elements", len(inputs)).
		Logger()
	if strategy.Concurrent() {
		logger.Debug().Int("workers", s.workers).Str("schedule", s.schedule.String()).Msg(IndependenceRequirement)
	}
	start := time.Now()
	results, err := run(ctx, inputs, kernel, strategy, s)
	if err != nil {
		logger.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("batch failed")
		return results, err
	}
	logger.Debug().Dur("elapsed", time.Since(start)).Msg("batch completed")
	return results, nil
}

func selectStrategy[T, U any](ctx context.Context, s *settings, kernel Kernel[T, U]) (parmap.Strategy, error) {
	if s.strategy == parmap.Vectorized && s.policy == parmap.CollectErrors {
		return 0, &parmap.ConfigurationError{
			Field:  "policy",
			Value:  s.policy,
			Reason: "the vectorized strategy cannot report per-element errors",
		}
	}
	// the vector form cannot collect per-element errors
	if s.preferVector && s.policy != parmap.CollectErrors {
		if ok, _ := kernel.Supports(parmap.Vectorized); ok {
			return parmap.Vectorized, nil
		}
	}
	ok, reason := kernel.Supports(s.strategy)
	if ok {
		return s.strategy, nil
	}
	if kernel.Elem == nil && (s.strategy == parmap.Sequential || s.strategy == parmap.Thread) {
		return 0, &parmap.ConfigurationError{Field: "kernel", Value: "Elem", Reason: reason}
	}
	if !s.fallback {
		return 0, &parmap.UnsupportedStrategyError{Strategy: s.strategy, Reason: reason}
	}
	if ok, _ := kernel.Supports(parmap.Sequential); !ok {
		return 0, &parmap.UnsupportedStrategyError{Strategy: s.strategy, Reason: reason + ", and no element form to fall back to"}
	}
	event := FallbackEvent{Requested: s.strategy, Used: parmap.Sequential, Reason: reason}
	zerolog.Ctx(ctx).Warn().
		Str("requested", event.Requested.String()).
		Str("used", event.Used.String()).
		Str("reason", event.Reason).
		Msg("strategy unavailable, falling back")
	if s.onFallback != nil {
		s.onFallback(event)
	}
	return parmap.Sequential, nil
}

func run[T, U any](
	ctx context.Context,
	inputs []T,
	kernel Kernel[T, U],
	strategy parmap.Strategy,
	s *settings,
) ([]U, error) {
	switch strategy {
	case parmap.Thread:
		if s.schedule == parmap.Dynamic {
			return parallel.MapDynamic(ctx, inputs, kernel.Elem, s.workers, s.policy)
		}
		return parallel.Map(ctx, inputs, kernel.Elem, s.workers, s.policy)
	case parmap.Process:
		return process.Map[T, U](ctx, kernel.Name, inputs, s.workers, s.policy)
	case parmap.Vectorized:
		return vectorized.Map(ctx, inputs, kernel.Vector)
	default:
		return sequential.Map(ctx, inputs, kernel.Elem, s.policy)
	}
}
