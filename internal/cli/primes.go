package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/batch"
	"github.com/exascience/parmap/kernels"
)

func newPrimesCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "primes N...",
		Short: "Test integers for primality",
		Long: `Tests each argument for primality with the selected strategy and prints
one line per argument, in argument order. Arguments that are not integers
fail the whole batch under the fail-fast policy, or are reported per line
under the collect policy.`,
		Example: `  parmap primes 2 3 4 6 17
  parmap primes --strategy multiprocess --workers 2 2 3 4 6 17
  parmap primes --policy collect 1 2 bad 4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.runPrimes(cmd, args)
		},
	}
	addStrategyFlags(cmd)
	return cmd
}

func (st *state) runPrimes(cmd *cobra.Command, args []string) error {
	opts, err := st.batchOptions(cmd)
	if err != nil {
		return err
	}
	opts = append(opts, batch.WithFallbackHandler(func(e batch.FallbackEvent) {
		cmd.PrintErrf("Warning: %v unavailable (%s), using %v\n", e.Requested, e.Reason, e.Used)
	}))

	results, err := batch.Map(cmd.Context(), args, kernels.ParsePrimes(), opts...)
	failed := make(map[int]error)
	var partial *parmap.PartialError
	switch {
	case errors.As(err, &partial):
		for _, e := range partial.Errors {
			failed[e.Index] = e.Err
		}
	case err != nil:
		return err
	}

	out := cmd.OutOrStdout()
	for i, arg := range args {
		if e, ok := failed[i]; ok {
			fmt.Fprintf(out, "%s: error: %v\n", arg, e)
			continue
		}
		fmt.Fprintf(out, "%s: %t\n", arg, results[i])
	}
	if partial != nil {
		return partial
	}
	return nil
}
