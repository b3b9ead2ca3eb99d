package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/batch"
	"github.com/exascience/parmap/kernels"
)

func newRecurrenceCmd(st *state) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "recurrence",
		Short: "Show what happens when a dependent recurrence runs concurrently",
		Long: `Evaluates x[0] = 0, x[i] = x[i-1] + 1 for i = 1..N by mapping a step
function that reads the previous slot over the indices 1..N. The sequential
result is always correct. Under a concurrent strategy, steps run before
their predecessors, and the result is wrong and differs from run to run.
Unset slots are printed as _.`,
		Example: `  parmap recurrence --n 10 --strategy multithread --workers 4`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.runRecurrence(cmd, n)
		},
	}
	cmd.Flags().IntVar(&n, "n", 5, "number of steps")
	addStrategyFlags(cmd)
	return cmd
}

func (st *state) runRecurrence(cmd *cobra.Command, n int) error {
	if n < 0 {
		return &parmap.ConfigurationError{Field: "n", Value: n, Reason: "must not be negative"}
	}
	opts, err := st.batchOptions(cmd)
	if err != nil {
		return err
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i + 1
	}
	r := kernels.NewRecurrence(n)
	if _, err := batch.Map(cmd.Context(), indices, batch.Func[int, int](r.Step), opts...); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "expected: %s\n", formatSlots(kernels.RecurrenceValues(n)))
	fmt.Fprintf(out, "computed: %s\n", formatSlots(r.Values()))
	cmd.PrintErrf("Note: %s\n", batch.IndependenceRequirement)
	return nil
}

func formatSlots(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if v == kernels.Unset {
			parts[i] = "_"
			continue
		}
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
