package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/roach88/ppc/internal/hostinfo"
	"github.com/roach88/ppc/internal/perf"
	"github.com/roach88/ppc/internal/store"
	"github.com/roach88/ppc/internal/tasks"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	NoColor bool

	// The fields below are filled with production defaults by
	// NewRootCommand and replaced in tests.
	Registry *tasks.Registry
	Timer    perf.Timer
	Host     func(ctx context.Context) (*hostinfo.Info, error)
	IDs      store.IDGenerator
	Now      func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ppc CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	if opts.Registry == nil {
		opts.Registry = tasks.Default()
	}
	if opts.Timer == nil {
		opts.Timer = perf.WallTimer()
	}
	if opts.Host == nil {
		opts.Host = hostinfo.Collect
	}
	if opts.IDs == nil {
		opts.IDs = store.UUIDv7Generator{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cmd := &cobra.Command{
		Use:   "ppc",
		Short: "ppc - parallel task lifecycle and benchmarking harness",
		Long: `Run reference parallel tasks through the validate, pre-process, run and
post-process lifecycle, and measure them in pipeline or task_run mode.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			color.NoColor = opts.NoColor || opts.Format == "json" || !isTerminal(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable coloured output")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewBenchCommand(opts))
	cmd.AddCommand(NewSuiteCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newLogger writes structured logs to w: warnings and errors by default,
// everything under --verbose.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func openStore(opts *RootOptions, path string) (*store.Store, error) {
	s, err := store.Open(path, store.WithIDGenerator(opts.IDs), store.WithClock(opts.Now))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open history database", err).WithCode(ErrCodeDatabase)
	}
	return s, nil
}
