package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ppc/internal/perf"
	"github.com/roach88/ppc/internal/suite"
)

// BenchOptions holds flags for the bench command.
type BenchOptions struct {
	*RootOptions
	Mode            string
	Runs            int
	Size            int
	Seed            uint64
	MaxTime         float64
	Database        string
	MetricsTextfile string
}

// BenchResult is the JSON payload of the bench command.
type BenchResult struct {
	Reports []BenchReport `json:"reports"`
	Passed  int           `json:"passed"`
	Failed  int           `json:"failed"`
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bench <task>",
		Short: "Benchmark one registered task",
		Long: `Benchmark one registered task in pipeline mode, task_run mode, or both.

Pipeline mode times the whole validate, pre-process, run, post-process
sequence per repetition. Task_run mode validates and pre-processes once,
times only the repeated runs, then post-processes once. After each run
the outputs are checked against a reference result.

Exit codes:
  0 - All runs passed
  1 - A run failed, its output check failed, or it exceeded the time limit
  2 - Command error (unknown task, database error, etc.)

Examples:
  ppc bench sorting_seq
  ppc bench sorting_threads --mode task_run --runs 20 --size 1000000
  ppc bench integration_threads --db ./ppc.db --metrics-textfile ./ppc.prom
  ppc bench integration_seq --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newFormatter(opts.RootOptions, cmd).Fail(runBench(opts, args[0], cmd))
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", suite.ModeBoth, "measurement mode (pipeline|task_run|both)")
	cmd.Flags().IntVar(&opts.Runs, "runs", suite.DefaultRuns, "number of timed repetitions")
	cmd.Flags().IntVar(&opts.Size, "size", 0, "problem size (0 selects the task default)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", suite.DefaultSeed, "seed for generated inputs")
	cmd.Flags().Float64Var(&opts.MaxTime, "max-time", perf.DefaultMaxTime, "per-repetition time limit in seconds (0 disables)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record runs in this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file")

	return cmd
}

func runBench(opts *BenchOptions, taskName string, cmd *cobra.Command) error {
	b := suite.Benchmark{
		Task: taskName,
		Mode: opts.Mode,
		Runs: opts.Runs,
		Size: opts.Size,
		Seed: &opts.Seed,
	}
	if err := (&suite.Suite{Name: "bench", MaxTime: &opts.MaxTime, Benchmarks: []suite.Benchmark{b}}).Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}

	ctx := cmd.Context()
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	out := newFormatter(opts.RootOptions, cmd)

	runner, err := newBenchRunner(ctx, opts.RootOptions, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer runner.close()

	if opts.Database != "" {
		if err := runner.attachStore(opts.Database); err != nil {
			return err
		}
	}

	reports, err := runner.run(ctx, b, opts.MaxTime)
	if err != nil {
		return err
	}
	if err := runner.writeMetrics(opts.MetricsTextfile); err != nil {
		return err
	}

	failed := countFailed(reports)
	result := BenchResult{
		Reports: reports,
		Passed:  len(reports) - failed,
		Failed:  failed,
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d benchmark runs failed", failed, len(reports))).
			WithCode(ErrCodeBenchFailed).
			WithDetails(result)
	}
	if out.JSON() {
		return out.Success(result)
	}
	return nil
}
