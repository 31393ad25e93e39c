package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/kornysietsma/progress-logger/cmd/lib"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	// EXIT_ON_START_ERROR is returned when the command cannot be run at all.
	EXIT_ON_START_ERROR = 127
)

// exitError carries the child's exit status back to main.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func ProgressExecCmd() *cobra.Command {
	var settings lib.Settings
	var count string
	var errLog logr.Logger

	rootCmd := &cobra.Command{
		Use:   "progress-exec [flags] -- command [args...]",
		Short: "Run a command and report progress on the lines it writes",
		Long: `Runs a command, passing its output through unchanged, and reports
progress on stderr each time the criteria are met, counting one trigger per
output line. The command's exit code is returned.

  progress-exec --step 1000 --max 52000 -- ./migrate --verbose`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(c *cobra.Command, args []string) error {
			errLog = lib.NewLogger(c.ErrOrStderr(), 0)
			switch count {
			case "stdout", "stderr", "both":
			default:
				err := fmt.Errorf("unsupported --count %q: use stdout, stderr or both", count)
				errLog.Error(err, "failed to validate flags")
				return err
			}
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

			session, err := settings.Open(context.Background(), log, c.OutOrStdout(), c.ErrOrStderr())
			if err != nil {
				errLog.Error(err, "unable to set up progress reporting")
				return err
			}
			defer session.Close()

			err = run(ctx, log, session, count, args, c.InOrStdin(), c.OutOrStdout(), c.ErrOrStderr())
			var childErr *exec.ExitError
			if err != nil && !errors.As(err, &childErr) {
				errLog.Error(err, "command failed", "command", args[0])
			}
			return err
		},
	}

	settings.AddFlags(rootCmd)
	rootCmd.Flags().StringVar(&count, "count", "stdout", "which output of the command to count lines on (stdout, stderr, both)")
	// Everything after the command name belongs to the command.
	rootCmd.Flags().SetInterspersed(false)

	return rootCmd
}

func run(ctx context.Context, log logr.Logger, session *lib.Session, count string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	child := exec.CommandContext(runCtx, args[0], args[1:]...)
	child.Stdin = stdin

	type stream struct {
		name string
		r    io.Reader
		w    io.Writer
	}
	var streams []stream
	if count == "stdout" || count == "both" {
		pipe, err := child.StdoutPipe()
		if err != nil {
			return &exitError{code: EXIT_ON_START_ERROR, err: err}
		}
		streams = append(streams, stream{name: "stdout", r: pipe, w: stdout})
	} else {
		child.Stdout = stdout
	}
	if count == "stderr" || count == "both" {
		pipe, err := child.StderrPipe()
		if err != nil {
			return &exitError{code: EXIT_ON_START_ERROR, err: err}
		}
		streams = append(streams, stream{name: "stderr", r: pipe, w: stderr})
	} else {
		child.Stderr = stderr
	}

	if err := child.Start(); err != nil {
		return &exitError{code: EXIT_ON_START_ERROR, err: fmt.Errorf("unable to start %s: %w", args[0], err)}
	}
	log.V(2).Info("started command", "command", args[0], "pid", child.Process.Pid)

	// Pipes must be read to the end before Wait.
	g, gctx := errgroup.WithContext(runCtx)
	for _, s := range streams {
		s := s
		g.Go(func() error {
			n, err := lib.CountLines(gctx, s.r, s.w, session.Trigger)
			log.V(3).Info("stream finished", "stream", s.name, "lines", n)
			if err != nil {
				// Stops the command so the other streams reach EOF.
				cancel()
				return fmt.Errorf("%s: %w", s.name, err)
			}
			return nil
		})
	}
	pumpErr := g.Wait()
	waitErr := child.Wait()

	if pumpErr != nil && !errors.Is(pumpErr, context.Canceled) {
		return &exitError{code: 1, err: pumpErr}
	}
	if waitErr != nil {
		var ee *exec.ExitError
		if errors.As(waitErr, &ee) && ee.ExitCode() > 0 {
			return &exitError{code: ee.ExitCode(), err: waitErr}
		}
		return &exitError{code: 1, err: waitErr}
	}
	return nil
}

func main() {
	err := ProgressExecCmd().Execute()
	if err == nil {
		return
	}
	var ee *exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	os.Exit(1)
}
