package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/kornysietsma/progress-logger/cmd/lib"
	"github.com/spf13/cobra"
)

func ProgressLoggerCmd() *cobra.Command {
	var settings lib.Settings
	var echo bool
	var errLog logr.Logger

	rootCmd := &cobra.Command{
		Use:   "progress-logger",
		Short: "Report progress while counting lines read from stdin",
		Long: `Counts the lines read from stdin and reports progress every --step lines
and/or every --seconds/--minutes/--hours, with rates and, given --max, an
estimated time to completion. A summary is reported at end of input.

  zcat big.csv.gz | progress-logger --step 100000 --max 2500000 --echo | import`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(c *cobra.Command, args []string) error {
			errLog = lib.NewLogger(c.ErrOrStderr(), 0)
			if err := settings.Validate(); err != nil {
				errLog.Error(err, "failed to validate flags")
				return err
			}
			return nil
		},
		RunE: func(c *cobra.Command, args []string) error {
			log := lib.NewLogger(c.ErrOrStderr(), settings.LogLevel)

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// The session outlives an interrupt so the summary still gets out.
			session, err := settings.Open(context.Background(), log, c.OutOrStdout(), c.ErrOrStderr())
			if err != nil {
				errLog.Error(err, "unable to set up progress reporting")
				return err
			}
			defer session.Close()

			var out io.Writer
			if echo {
				out = c.OutOrStdout()
			}
			n, err := lib.CountLines(ctx, c.InOrStdin(), out, session.Trigger)
			log.V(2).Info("input finished", "lines", n)
			if err != nil && !errors.Is(err, context.Canceled) {
				errLog.Error(err, "failed reading input", "lines", n)
				return err
			}
			return nil
		},
	}

	settings.AddFlags(rootCmd)
	rootCmd.Flags().BoolVar(&echo, "echo", false, "copy input lines to stdout")

	return rootCmd
}

func main() {
	if err := ProgressLoggerCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
