package parmap

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by the typed errors of this package through
// errors.Is.
var (
	ErrConfiguration       = errors.New("invalid configuration")
	ErrUnsupportedStrategy = errors.New("unsupported strategy")
	ErrTransform           = errors.New("transform failed")
)

// A ConfigurationError reports an invalid option, such as a worker count
// that is not positive or an unknown strategy. It is returned before any
// work begins.
type ConfigurationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// An UnsupportedStrategyError reports that a strategy cannot run on this
// host or with this transform. It is returned before any work begins.
type UnsupportedStrategyError struct {
	Strategy Strategy
	Reason   string
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("strategy %v unsupported: %s", e.Strategy, e.Reason)
}

func (e *UnsupportedStrategyError) Is(target error) bool {
	return target == ErrUnsupportedStrategy
}

// A TransformError reports that the transform failed for the element at
// Index.
type TransformError struct {
	Index int
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform failed at index %d: %v", e.Index, e.Err)
}

func (e *TransformError) Is(target error) bool {
	return target == ErrTransform
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// A PartialError is returned under the CollectErrors policy when one or more
// elements failed. Errors is sorted by index.
type PartialError struct {
	Errors []*TransformError
}

func (e *PartialError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d element(s) failed", len(e.Errors))
	for i, err := range e.Errors {
		if i == 3 {
			fmt.Fprintf(&b, "; and %d more", len(e.Errors)-i)
			break
		}
		fmt.Fprintf(&b, "; %v", err)
	}
	return b.String()
}

func (e *PartialError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Indices returns the indices of the failed elements in ascending order.
func (e *PartialError) Indices() []int {
	indices := make([]int, len(e.Errors))
	for i, err := range e.Errors {
		indices[i] = err.Index
	}
	return indices
}
