package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ppc/internal/suite"
)

// SuiteOptions holds flags for the suite command.
type SuiteOptions struct {
	*RootOptions
	Database        string
	MetricsTextfile string
}

// SuiteResult is the JSON payload of the suite command.
type SuiteResult struct {
	Name    string        `json:"name"`
	Reports []BenchReport `json:"reports"`
	Passed  int           `json:"passed"`
	Failed  int           `json:"failed"`
	Total   int           `json:"total"`
}

// NewSuiteCommand creates the suite command.
func NewSuiteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SuiteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "suite <file.yaml|file.cue>",
		Short: "Run a benchmark suite file",
		Long: `Run every benchmark listed in a YAML or CUE suite file.

Exit codes:
  0 - All runs passed
  1 - One or more runs failed
  2 - Command error (unreadable suite, unknown task, database error, etc.)

Examples:
  ppc suite ./bench/nightly.yaml
  ppc suite ./bench/nightly.cue --db ./ppc.db
  ppc suite ./bench/nightly.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newFormatter(opts.RootOptions, cmd).Fail(runSuite(opts, args[0], cmd))
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record runs in this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file")

	return cmd
}

func runSuite(opts *SuiteOptions, path string, cmd *cobra.Command) error {
	s, err := suite.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load suite", err)
	}

	ctx := cmd.Context()
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	out := newFormatter(opts.RootOptions, cmd)
	w := cmd.OutOrStdout()

	runner, err := newBenchRunner(ctx, opts.RootOptions, logger, w)
	if err != nil {
		return err
	}
	defer runner.close()
	runner.suiteName = s.Name

	if opts.Database != "" {
		if err := runner.attachStore(opts.Database); err != nil {
			return err
		}
	}

	if !out.JSON() {
		fmt.Fprintf(w, "suite %s (%d benchmarks)\n", s.Name, len(s.Benchmarks))
	}
	out.VerboseLog("host: %s", runner.host)

	result := SuiteResult{Name: s.Name, Reports: []BenchReport{}}
	for _, b := range s.Benchmarks {
		if err := ctx.Err(); err != nil {
			return WrapExitError(ExitCommandError, "suite interrupted", err)
		}
		reports, err := runner.run(ctx, b, s.TimeLimit())
		result.Reports = append(result.Reports, reports...)
		if err != nil {
			return err
		}
	}
	if err := runner.writeMetrics(opts.MetricsTextfile); err != nil {
		return err
	}

	result.Total = len(result.Reports)
	result.Failed = countFailed(result.Reports)
	result.Passed = result.Total - result.Failed

	if !out.JSON() {
		fmt.Fprintf(w, "%d passed, %d failed\n", result.Passed, result.Failed)
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d benchmark runs failed", result.Failed, result.Total)).
			WithCode(ErrCodeBenchFailed).
			WithDetails(result)
	}
	if out.JSON() {
		return out.Success(result)
	}
	return nil
}
