package batch

import (
	"github.com/exascience/parmap"
)

// An Option configures a call to Map.
type Option func(*settings)

// A FallbackEvent reports that Map ran the sequential strategy instead of the
// requested one.
type FallbackEvent struct {
	Requested parmap.Strategy
	Used      parmap.Strategy
	Reason    string
}

type settings struct {
	strategy     parmap.Strategy
	workers      int
	workersSet   bool
	schedule     parmap.Schedule
	policy       parmap.ErrorPolicy
	fallback     bool
	preferVector bool
	onFallback   func(FallbackEvent)
}

func newSettings(opts []Option) *settings {
	s := &settings{
		strategy: parmap.Sequential,
		workers:  parmap.HardwareParallelism(),
		schedule: parmap.Static,
		policy:   parmap.FailFast,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *settings) validate() error {
	switch {
	case !s.strategy.Valid():
		return &parmap.ConfigurationError{Field: "strategy", Value: s.strategy, Reason: "unknown strategy"}
	case s.workersSet && s.workers <= 0:
		return &parmap.ConfigurationError{Field: "workers", Value: s.workers, Reason: "must be positive"}
	case !s.schedule.Valid():
		return &parmap.ConfigurationError{Field: "schedule", Value: s.schedule, Reason: "unknown schedule"}
	case !s.policy.Valid():
		return &parmap.ConfigurationError{Field: "policy", Value: s.policy, Reason: "unknown error policy"}
	}
	return nil
}

// WithStrategy selects the execution strategy. The default is
// parmap.Sequential.
func WithStrategy(strategy parmap.Strategy) Option {
	return func(s *settings) {
		s.strategy = strategy
	}
}

// WithWorkers sets the number of worker goroutines or processes used by the
// concurrent strategies. The default is parmap.HardwareParallelism(). Map
// returns a *parmap.ConfigurationError if n <= 0. Values above the hardware
// parallelism are accepted.
func WithWorkers(n int) Option {
	return func(s *settings) {
		s.workers = n
		s.workersSet = true
	}
}

// WithSchedule selects how the multithread strategy assigns elements to
// workers. The default is parmap.Static.
func WithSchedule(schedule parmap.Schedule) Option {
	return func(s *settings) {
		s.schedule = schedule
	}
}

// WithPolicy selects the error policy. The default is parmap.FailFast.
func WithPolicy(policy parmap.ErrorPolicy) Option {
	return func(s *settings) {
		s.policy = policy
	}
}

// WithFallback makes Map run the sequential strategy, instead of returning a
// *parmap.UnsupportedStrategyError, when the requested strategy is not
// available.
func WithFallback(fallback bool) Option {
	return func(s *settings) {
		s.fallback = fallback
	}
}

// WithPreferVector makes Map use the vector form of the kernel, when it has
// one, regardless of the requested strategy. It is ignored under
// parmap.CollectErrors.
func WithPreferVector(prefer bool) Option {
	return func(s *settings) {
		s.preferVector = prefer
	}
}

// WithFallbackHandler sets a function that is called when Map falls back to
// the sequential strategy.
func WithFallbackHandler(f func(FallbackEvent)) Option {
	return func(s *settings) {
		s.onFallback = f
	}
}
