package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/batch"
	"github.com/exascience/parmap/kernels"
	"github.com/exascience/parmap/stopwatch"
)

type benchCase struct {
	label string
	opts  []batch.Option
}

func newBenchCmd(st *state) *cobra.Command {
	var n, repeats int
	var plain bool
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time every strategy on the primality test",
		Long: `Tests the integers 1..N for primality with every strategy available on
this host, checks that each strategy returns exactly the sequential result,
and prints the timing of each strategy relative to the sequential one.`,
		Example: `  parmap bench --n 100000 --repeat 5 --workers 8`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.runBench(cmd, n, repeats, !plain && isTerminal(os.Stdout))
		},
	}
	cmd.Flags().IntVar(&n, "n", 100000, "test the integers 1..n")
	cmd.Flags().IntVar(&repeats, "repeat", 3, "number of timed runs per strategy")
	cmd.Flags().Int("workers", 0, "number of workers for concurrent strategies (default: hardware parallelism)")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable styled output")
	return cmd
}

func (st *state) runBench(cmd *cobra.Command, n, repeats int, styled bool) error {
	if n < 0 {
		return &parmap.ConfigurationError{Field: "n", Value: n, Reason: "must not be negative"}
	}
	ctx := cmd.Context()
	inputs := make([]int, n)
	for i := range inputs {
		inputs[i] = i + 1
	}
	kernel := kernels.Primes()

	var common []batch.Option
	if cmd.Flags().Changed("workers") {
		w, _ := cmd.Flags().GetInt("workers")
		common = append(common, batch.WithWorkers(w))
	} else if st.cfg.Workers != nil {
		common = append(common, batch.WithWorkers(*st.cfg.Workers))
	}

	baseline, err := batch.Map(ctx, inputs, kernel, common...)
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}

	cases := []benchCase{
		{"sequential", []batch.Option{batch.WithStrategy(parmap.Sequential)}},
		{"multiprocess", []batch.Option{batch.WithStrategy(parmap.Process)}},
		{"multithread/static", []batch.Option{batch.WithStrategy(parmap.Thread), batch.WithSchedule(parmap.Static)}},
		{"multithread/dynamic", []batch.Option{batch.WithStrategy(parmap.Thread), batch.WithSchedule(parmap.Dynamic)}},
		{"vectorized", []batch.Option{batch.WithStrategy(parmap.Vectorized)}},
	}

	run := stopwatch.NewRun()
	st.logger.Info().Str("run", run.ID.String()).Int("elements", n).Int("repeats", repeats).Msg("benchmark started")
	if err := st.benchCases(ctx, run, inputs, kernel, baseline, common, cases, repeats); err != nil {
		return err
	}
	return stopwatch.Render(cmd.OutOrStdout(), run, styled)
}

// benchCases times each case into run. Strategies that are unavailable on
// this host or for this kernel are skipped; any other failure ends the
// benchmark.
func (st *state) benchCases(
	ctx context.Context,
	run *stopwatch.Run,
	inputs []int,
	kernel batch.Kernel[int, bool],
	baseline []bool,
	common []batch.Option,
	cases []benchCase,
	repeats int,
) error {
	for _, c := range cases {
		opts := append(slices.Clone(common), c.opts...)
		results, err := batch.Map(ctx, inputs, kernel, opts...)
		if errors.Is(err, parmap.ErrUnsupportedStrategy) {
			st.logger.Warn().Err(err).Str("strategy", c.label).Msg("skipping strategy")
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", c.label, err)
		}
		if !slices.Equal(results, baseline) {
			return fmt.Errorf("%s: result differs from the sequential result", c.label)
		}
		_, err = run.Bench(ctx, c.label, len(inputs), repeats, func(ctx context.Context) error {
			_, err := batch.Map(ctx, inputs, kernel, opts...)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}
