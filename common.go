package parmap

import (
	"fmt"
	"runtime"
	"strings"
)

type (
	// A Func is a transform from one input element to one output element,
	// returning an error value or nil.
	//
	// A Func must be pure: it must not depend on or mutate any state outside
	// its own argument, and it must not depend on the order of invocation or
	// on the results of other invocations.
	Func[T, U any] func(T) (U, error)

	// A VectorFunc is the whole-sequence form of a transform. It receives all
	// input elements at once and returns one output element per input
	// element, in the same order.
	VectorFunc[T, U any] func([]T) ([]U, error)

	// A Strategy selects the execution mechanism used to apply a transform
	// across a batch.
	Strategy int

	// A Schedule selects how the multithread strategy assigns indices to
	// workers.
	Schedule int

	// An ErrorPolicy selects what happens when a transform fails for an
	// element.
	ErrorPolicy int
)

const (
	// Sequential applies the transform in index order on the calling
	// goroutine.
	Sequential Strategy = iota

	// Process applies the transform in worker processes.
	Process

	// Thread applies the transform in worker goroutines.
	Thread

	// Vectorized applies the whole-sequence form of the transform.
	Vectorized
)

const (
	// Static divides the index range into one contiguous partition per
	// worker.
	Static Schedule = iota

	// Dynamic hands out one index at a time to whichever worker is free.
	Dynamic
)

const (
	// FailFast aborts the batch on the first failing element and discards
	// all partial results.
	FailFast ErrorPolicy = iota

	// CollectErrors evaluates every element and reports all failures
	// alongside the successful results.
	CollectErrors
)

var strategyNames = [...]string{
	Sequential: "sequential",
	Process:    "multiprocess",
	Thread:     "multithread",
	Vectorized: "vectorized",
}

var strategyAliases = map[string]Strategy{
	"sequential":   Sequential,
	"seq":          Sequential,
	"multiprocess": Process,
	"process":      Process,
	"multithread":  Thread,
	"thread":       Thread,
	"vectorized":   Vectorized,
	"vector":       Vectorized,
}

// Strategies returns all known strategies in declaration order.
func Strategies() []Strategy {
	return []Strategy{Sequential, Process, Thread, Vectorized}
}

func (s Strategy) String() string {
	if s.Valid() {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Valid reports whether s is one of the declared strategies.
func (s Strategy) Valid() bool {
	return s >= Sequential && s <= Vectorized
}

// Concurrent reports whether s evaluates elements concurrently.
func (s Strategy) Concurrent() bool {
	return s == Process || s == Thread
}

// ParseStrategy returns the strategy with the given name or alias. Matching
// is case-insensitive.
func ParseStrategy(name string) (Strategy, error) {
	if s, ok := strategyAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s, nil
	}
	return 0, &ConfigurationError{Field: "strategy", Value: name, Reason: "unknown strategy"}
}

func (s Schedule) String() string {
	switch s {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("Schedule(%d)", int(s))
	}
}

// Valid reports whether s is one of the declared schedules.
func (s Schedule) Valid() bool {
	return s == Static || s == Dynamic
}

// ParseSchedule returns the schedule with the given name.
func ParseSchedule(name string) (Schedule, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "static", "":
		return Static, nil
	case "dynamic":
		return Dynamic, nil
	}
	return 0, &ConfigurationError{Field: "schedule", Value: name, Reason: "unknown schedule"}
}

func (p ErrorPolicy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case CollectErrors:
		return "collect"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", int(p))
	}
}

// Valid reports whether p is one of the declared error policies.
func (p ErrorPolicy) Valid() bool {
	return p == FailFast || p == CollectErrors
}

// ParseErrorPolicy returns the error policy with the given name.
func ParseErrorPolicy(name string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fail-fast", "failfast", "":
		return FailFast, nil
	case "collect", "collect-errors":
		return CollectErrors, nil
	}
	return 0, &ConfigurationError{Field: "policy", Value: name, Reason: "unknown error policy"}
}

// HardwareParallelism returns the number of goroutines that can execute
// simultaneously, as determined by runtime.GOMAXPROCS(0). It is used as the
// default worker count.
func HardwareParallelism() int {
	return runtime.GOMAXPROCS(0)
}
