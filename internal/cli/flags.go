package cli

import (
	"github.com/spf13/cobra"

	"github.com/exascience/parmap/batch"
)

// addStrategyFlags registers the flags that override the batch options of
// the configuration.
func addStrategyFlags(cmd *cobra.Command) {
	cmd.Flags().String("strategy", "", "execution strategy: sequential, multiprocess, multithread, or vectorized")
	cmd.Flags().Int("workers", 0, "number of workers for concurrent strategies (default: hardware parallelism)")
	cmd.Flags().String("schedule", "", "multithread schedule: static or dynamic")
	cmd.Flags().String("policy", "", "error policy: fail-fast or collect")
	cmd.Flags().Bool("fallback", false, "fall back to sequential execution when the strategy is unavailable")
	cmd.Flags().Bool("prefer-vector", false, "use the vector form whenever the transform has one")
}

// batchOptions applies the flags that were set on top of the configuration
// and returns the resulting batch options.
func (st *state) batchOptions(cmd *cobra.Command) ([]batch.Option, error) {
	cfg := st.cfg
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Strategy, _ = flags.GetString("strategy")
	}
	if flags.Changed("workers") {
		n, _ := flags.GetInt("workers")
		cfg.Workers = &n
	}
	if flags.Changed("schedule") {
		cfg.Schedule, _ = flags.GetString("schedule")
	}
	if flags.Changed("policy") {
		cfg.Policy, _ = flags.GetString("policy")
	}
	if flags.Changed("fallback") {
		cfg.Fallback, _ = flags.GetBool("fallback")
	}
	if flags.Changed("prefer-vector") {
		cfg.PreferVector, _ = flags.GetBool("prefer-vector")
	}
	return cfg.Options()
}
