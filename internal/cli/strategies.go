package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/exascience/parmap"
	"github.com/exascience/parmap/kernels"
)

func newStrategiesCmd(_ *state) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List execution strategies and their availability on this host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kernel := kernels.Primes()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "STRATEGY\tCONCURRENT\tAVAILABLE\tNOTE")
			for _, s := range parmap.Strategies() {
				ok, reason := kernel.Supports(s)
				fmt.Fprintf(tw, "%s\t%t\t%t\t%s\n", s, s.Concurrent(), ok, reason)
			}
			fmt.Fprintf(tw, "\nhardware parallelism: %d\n", parmap.HardwareParallelism())
			return tw.Flush()
		},
	}
}
