package process

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// WorkerEnv is the environment variable that marks a process as a worker.
const WorkerEnv = "PARMAP_PROCESS_WORKER"

// IsWorker reports whether the current process was started as a worker.
func IsWorker() bool {
	return os.Getenv(WorkerEnv) == "1"
}

// MaybeServe turns the current process into a worker if it was started as
// one: it serves requests from standard input until end of file and then
// exits. Otherwise MaybeServe returns immediately.
//
// Programs that use the multiprocess strategy must call MaybeServe at the
// start of main, and test binaries at the start of TestMain, after all
// transforms have been registered.
func MaybeServe() {
	if !IsWorker() {
		return
	}
	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("component", "process-worker").
		Int("pid", os.Getpid()).
		Logger()
	if err := Serve(os.Stdin, os.Stdout); err != nil {
		logger.Error().Err(err).Msg("worker stopped")
		os.Exit(1)
	}
	os.Exit(0)
}

// Serve reads requests from r and writes one response per request to w,
// until r reaches end of file.
//
// A failing transform, an unknown transform name, or an undecodable input is
// reported in the response, and Serve continues with the next request.
// Serve returns an error only if r or w fail.
func Serve(r io.Reader, w io.Writer) error {
	dec := json.NewDecoder(bufio.NewReader(r))
	enc := json.NewEncoder(w)
	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read request: %w", err)
		}
		resp := response{Seq: req.Seq}
		if h, ok := lookup(req.Fn); !ok {
			resp.Err = fmt.Sprintf("unknown transform %q", req.Fn)
		} else if out, err := h(req.In); err != nil {
			resp.Err = err.Error()
		} else {
			resp.Out = out
		}
		if err := enc.Encode(&resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
}
