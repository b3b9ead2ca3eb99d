// Package process provides the multiprocess strategy: it applies a
// registered transform to the elements of a batch in worker processes and
// reassembles the results by index.
//
// A Go program cannot fork itself, so workers are started by re-executing
// the running binary with the WorkerEnv environment variable set. The worker
// side is entered through MaybeServe, and transforms are looked up by the
// name under which they were passed to Register. Inputs and outputs cross
// the process boundary as JSON, one message per line.
//
// Like the multithread strategy, the multiprocess strategy is only correct
// for pure transforms. Each worker process has its own copy of all global
// state, so a transform that communicates through shared variables silently
// sees different values in each worker.
package process

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/internal"
)

var errProtocol = errors.New("worker protocol violation")

const nestedWorkerReason = "called inside a worker process; MaybeServe was not called first"

// Supported reports whether worker processes can be started on this host.
// If not, it also returns the reason.
func Supported() (bool, string) {
	if IsWorker() {
		return false, nestedWorkerReason
	}
	switch runtime.GOOS {
	case "js", "wasip1", "ios":
		return false, "no subprocess support on " + runtime.GOOS
	}
	if _, err := os.Executable(); err != nil {
		return false, fmt.Sprintf("cannot locate executable: %v", err)
	}
	return true, ""
}

// Map applies the transform registered under name to each element of inputs
// in worker processes and returns the results in input order.
//
// Map starts at most workers processes, and never more than there are
// inputs. Indices are handed out to whichever worker is free, one at a
// time. Map returns only when all worker processes have exited.
//
// Under the FailFast policy, no further indices are handed out after the
// first failure, and Map returns the *parmap.TransformError with the lowest
// failing index observed and a nil slice. Under the CollectErrors policy,
// all elements are evaluated and the results are returned together with a
// *parmap.PartialError if any element failed. Transform errors reported by
// workers are of type *RemoteError. Cancelling ctx kills all workers, and
// Map returns ctx.Err().
//
// Map returns a *parmap.ConfigurationError if workers <= 0, and a
// *parmap.UnsupportedStrategyError if name is not registered, if workers
// cannot be started on this host, or if Map is called inside a worker
// process. The latter happens when a program does not call MaybeServe, and
// would otherwise start workers recursively.
func Map[T, U any](
	ctx context.Context,
	name string,
	inputs []T,
	workers int,
	policy parmap.ErrorPolicy,
) ([]U, error) {
	if IsWorker() {
		return nil, &parmap.UnsupportedStrategyError{Strategy: parmap.Process, Reason: nestedWorkerReason}
	}
	if workers <= 0 {
		return nil, &parmap.ConfigurationError{Field: "workers", Value: workers, Reason: "must be positive"}
	}
	if !Registered(name) {
		return nil, &parmap.UnsupportedStrategyError{
			Strategy: parmap.Process,
			Reason:   fmt.Sprintf("transform %q is not registered", name),
		}
	}
	if ok, reason := Supported(); !ok {
		return nil, &parmap.UnsupportedStrategyError{Strategy: parmap.Process, Reason: reason}
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, &parmap.UnsupportedStrategyError{Strategy: parmap.Process, Reason: err.Error()}
	}
	results := make([]U, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}

	collector := internal.NewCollector(policy)
	stop := context.AfterFunc(ctx, collector.Stop)
	defer stop()

	logger := zerolog.Ctx(ctx)
	workers = min(workers, len(inputs))
	indices := make(chan int)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(indices)
		for i := range inputs {
			if collector.Stopped() {
				return nil
			}
			select {
			case indices <- i:
			case <-gCtx.Done():
				return nil
			}
		}
		return nil
	})
	for n := 0; n < workers; n++ {
		g.Go(func() error {
			w := &worker[T, U]{
				name:      name,
				inputs:    inputs,
				results:   results,
				collector: collector,
			}
			return w.run(gCtx, exe, indices, logger)
		})
	}
	err = g.Wait()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return internal.Finish(ctx, results, collector)
}

type worker[T, U any] struct {
	name      string
	inputs    []T
	results   []U
	collector *internal.Collector
}

func (w *worker[T, U]) run(ctx context.Context, exe string, indices <-chan int, logger *zerolog.Logger) error {
	cmd := exec.CommandContext(ctx, exe)
	cmd.Env = append(os.Environ(), WorkerEnv+"=1")
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("worker stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("worker stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	logger.Debug().Int("pid", cmd.Process.Pid).Str("transform", w.name).Msg("worker started")

	err = w.serve(json.NewEncoder(stdin), json.NewDecoder(stdout), indices)
	_ = stdin.Close()
	waitErr := cmd.Wait()
	logger.Debug().Int("pid", cmd.Process.Pid).Msg("worker exited")
	if err != nil {
		return err
	}
	if waitErr != nil && ctx.Err() == nil {
		return fmt.Errorf("worker %d: %w", cmd.Process.Pid, waitErr)
	}
	return nil
}

func (w *worker[T, U]) serve(enc *json.Encoder, dec *json.Decoder, indices <-chan int) error {
	for i := range indices {
		if w.collector.Stopped() {
			continue
		}
		in, err := json.Marshal(w.inputs[i])
		if err != nil {
			w.collector.Fail(i, fmt.Errorf("encode input: %w", err))
			continue
		}
		if err := enc.Encode(&request{Seq: i, Fn: w.name, In: in}); err != nil {
			return fmt.Errorf("send request: %w", err)
		}
		var resp response
		if err := dec.Decode(&resp); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("read response: worker exited without answering, check that it calls process.MaybeServe: %w", err)
			}
			return fmt.Errorf("read response: %w", err)
		}
		if resp.Seq != i {
			return fmt.Errorf("%w: response %d for request %d", errProtocol, resp.Seq, i)
		}
		if resp.Err != "" {
			w.collector.Fail(i, &RemoteError{Message: resp.Err})
			continue
		}
		var y U
		if err := json.Unmarshal(resp.Out, &y); err != nil {
			w.collector.Fail(i, fmt.Errorf("decode output: %w", err))
			continue
		}
		w.results[i] = y
	}
	return nil
}
