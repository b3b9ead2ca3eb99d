// Package parmap provides the shared vocabulary for mapping a pure function
// over an ordered batch of inputs with interchangeable execution strategies.
// Go's goroutines make it easy to turn a sequential loop into a parallel one,
// and this library packages the common ways of doing so behind a single
// operation, so that programs can compare them without changing call sites.
//
// Parmap provides the following subpackages:
//
// parmap/batch provides the Map operation, which selects one of the
// strategies below from a set of options, validates the configuration
// before any work starts, and reports fallbacks explicitly.
//
// parmap/sequential provides the explicit loop that serves as the baseline
// for all other strategies.
//
// parmap/parallel provides the multithread strategy, with a static schedule
// based on recursive range halving and a dynamic schedule based on a bounded
// goroutine pool.
//
// parmap/process provides the multiprocess strategy, which re-executes the
// running binary as a set of worker processes.
//
// parmap/vectorized provides the vectorized strategy, which applies a
// whole-slice form of a transform in one call.
//
// parmap/kernels provides the primality transforms and the dependent
// recurrence used as a cautionary fixture.
//
// parmap/stopwatch measures and summarizes the wall-clock time of batch
// calls.
//
// All concurrent strategies rely on the transform being pure: it must not
// read or write state shared with other invocations, and it must not depend
// on the order or the results of other invocations. A transform that reads
// the output of a previous element, such as the recurrence x[n] = x[n-1] + 1,
// produces undefined results under any concurrent strategy, and no strategy
// detects this.
package parmap
