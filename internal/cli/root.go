// Package cli implements the parmap command.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/exascience/parmap/config"
	"github.com/exascience/parmap/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// state is shared by the root command and its subcommands. It is filled in
// by the persistent pre-run hook.
type state struct {
	cfg    config.Config
	logger zerolog.Logger
	lookup func(string) (string, bool)
}

// NewRootCmd creates the root command of the parmap CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit environment
// lookup, for tests.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	st := &state{lookup: lookupEnv}
	cmd := &cobra.Command{
		Use:          "parmap",
		Short:        "Compare sequential, parallel, and vectorized batch mapping",
		Long:         "parmap maps a pure function over a batch of inputs with interchangeable execution strategies and compares their wall-clock time.",
		Version:      ver,
		Example:      rootCmdExample,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.setup(cmd)
		},
	}

	cmd.PersistentFlags().String("config", "", "configuration file (default "+config.DefaultFile+" if present)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("log-format", "", "log format: console or json (default console on a terminal)")
	cmd.AddCommand(
		newPrimesCmd(st),
		newBenchCmd(st),
		newRecurrenceCmd(st),
		newStrategiesCmd(st),
	)

	return cmd
}

const rootCmdExample = `  # Test numbers for primality with worker goroutines
  parmap primes --strategy multithread 2 3 4 6 17

  # Compare all strategies on the numbers 1..200000
  parmap bench --n 200000 --repeat 5

  # See why a dependent recurrence must not run concurrently
  parmap recurrence --n 10 --strategy multithread`

func (st *state) setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(st.lookup); err != nil {
		return err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Logging.Level = "debug"
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Logging.Format = format
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = logging.FormatJSON
		if isTerminal(os.Stderr) {
			cfg.Logging.Format = logging.FormatConsole
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	st.cfg = cfg
	st.logger = logging.Component(logging.New(cmd.ErrOrStderr(), cfg.Logging), "cli")
	ctx := st.logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)
	st.logger.Debug().Str("command", cmd.Name()).Msg("command started")
	return nil
}
