// Package stopwatch measures the wall-clock time of batch calls and
// summarizes repeated measurements, so that strategies can be compared.
//
// The stopwatch is not part of the correctness contract of batch.Map. It
// only wraps a call in a start and stop of the clock.
package stopwatch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"gonum.org/v1/gonum/stat"
)

// ErrNoRepeats is returned by Bench when repeats is not positive.
var ErrNoRepeats = errors.New("repeats must be positive")

// A Sample is one measurement of a call.
type Sample struct {
	Label   string
	Elapsed time.Duration
}

// Time measures the wall-clock duration of fn. The error of fn is returned
// as is, together with the sample.
func Time(ctx context.Context, label string, fn func(context.Context) error) (Sample, error) {
	start := time.Now()
	err := fn(ctx)
	return Sample{Label: label, Elapsed: time.Since(start)}, err
}

// A Summary aggregates the samples of one label.
type Summary struct {
	Label    string
	Elements int
	Repeats  int
	Mean     time.Duration
	StdDev   time.Duration
	Median   time.Duration
	Min      time.Duration
	Max      time.Duration
}

// Throughput returns the number of elements processed per second, based on
// the mean duration.
func (s Summary) Throughput() float64 {
	if s.Mean <= 0 {
		return 0
	}
	return float64(s.Elements) / s.Mean.Seconds()
}

// Summarize computes the statistics of a set of durations. The standard
// deviation is zero for a single sample.
func Summarize(label string, elements int, durations []time.Duration) Summary {
	summary := Summary{Label: label, Elements: elements, Repeats: len(durations)}
	if len(durations) == 0 {
		return summary
	}
	xs := make([]float64, len(durations))
	for i, d := range durations {
		xs[i] = float64(d)
	}
	slices.Sort(xs)
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		std = 0
	}
	summary.Mean = time.Duration(mean)
	summary.StdDev = time.Duration(std)
	summary.Median = time.Duration(stat.Quantile(0.5, stat.Empirical, xs, nil))
	summary.Min = time.Duration(xs[0])
	summary.Max = time.Duration(xs[len(xs)-1])
	return summary
}

// A Run collects the summaries of one benchmark session. A Run is safe for
// concurrent use.
type Run struct {
	ID        ulid.ULID
	Started   time.Time
	mutex     sync.Mutex
	summaries []Summary
}

// NewRun starts a new benchmark session with a fresh identifier.
func NewRun() *Run {
	return &Run{ID: ulid.Make(), Started: time.Now()}
}

// Bench calls fn repeats times, measuring each call, and records the
// summary under label. The first error of fn stops the benchmark and is
// returned.
func (r *Run) Bench(
	ctx context.Context,
	label string,
	elements, repeats int,
	fn func(context.Context) error,
) (Summary, error) {
	if repeats <= 0 {
		return Summary{}, fmt.Errorf("%w: %d", ErrNoRepeats, repeats)
	}
	durations := make([]time.Duration, 0, repeats)
	for n := 0; n < repeats; n++ {
		sample, err := Time(ctx, label, fn)
		if err != nil {
			return Summary{}, fmt.Errorf("%s: %w", label, err)
		}
		durations = append(durations, sample.Elapsed)
	}
	summary := Summarize(label, elements, durations)
	r.mutex.Lock()
	r.summaries = append(r.summaries, summary)
	r.mutex.Unlock()
	return summary, nil
}

// Summaries returns the recorded summaries in recording order.
func (r *Run) Summaries() []Summary {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return slices.Clone(r.summaries)
}
