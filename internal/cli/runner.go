package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/ppc/internal/core"
	"github.com/roach88/ppc/internal/hostinfo"
	"github.com/roach88/ppc/internal/metrics"
	"github.com/roach88/ppc/internal/perf"
	"github.com/roach88/ppc/internal/store"
	"github.com/roach88/ppc/internal/suite"
)

// BenchReport is the outcome of one perf run as printed by bench and suite.
type BenchReport struct {
	Task           string    `json:"task"`
	Mode           perf.Mode `json:"mode"`
	Runs           int       `json:"runs"`
	Size           int       `json:"size"`
	Seed           uint64    `json:"seed"`
	TimeSec        float64   `json:"time_sec"`
	MeanSec        float64   `json:"mean_sec"`
	StdevSec       float64   `json:"stdev_sec"`
	MinSec         float64   `json:"min_sec"`
	MaxSec         float64   `json:"max_sec"`
	Failures       int       `json:"failures"`
	OutputsWritten bool      `json:"outputs_written"`
	CheckError     string    `json:"check_error,omitempty"`
	Exceeded       bool      `json:"time_limit_exceeded,omitempty"`
	Pass           bool      `json:"pass"`
	RunID          string    `json:"run_id,omitempty"`
}

// benchRunner executes benchmarks and fans results out to the printer,
// the history store and the metrics registry.
type benchRunner struct {
	opts      *RootOptions
	logger    *slog.Logger
	out       io.Writer
	text      bool
	suiteName string

	store     *store.Store
	registry  *prometheus.Registry
	collector *metrics.Collector
	host      *hostinfo.Info
}

func newBenchRunner(ctx context.Context, opts *RootOptions, logger *slog.Logger, out io.Writer) (*benchRunner, error) {
	reg := prometheus.NewRegistry()
	collector, err := metrics.New(reg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to set up metrics", err).WithCode(ErrCodeMetrics)
	}

	host, err := opts.Host(ctx)
	if err != nil {
		logger.Debug("host probe incomplete", "error", err)
	}

	return &benchRunner{
		opts:      opts,
		logger:    logger,
		out:       out,
		text:      opts.Format != "json",
		registry:  reg,
		collector: collector,
		host:      host,
	}, nil
}

// attachStore enables history recording to the database at path.
func (r *benchRunner) attachStore(path string) error {
	s, err := openStore(r.opts, path)
	if err != nil {
		return err
	}
	r.store = s
	return nil
}

func (r *benchRunner) close() {
	if r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.logger.Error("error closing database", "error", err)
	}
}

// writeMetrics exports the registry when path is set.
func (r *benchRunner) writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(path, r.registry); err != nil {
		return WrapExitError(ExitCommandError, "failed to write metrics", err).WithCode(ErrCodeMetrics)
	}
	return nil
}

// run measures one benchmark in each of its modes. A fresh instance is built
// per mode so that one mode's outputs never leak into the next check.
//
// Failed runs are reported, not returned; the error is reserved for
// problems that stop the command.
func (r *benchRunner) run(ctx context.Context, b suite.Benchmark, maxTime float64) ([]BenchReport, error) {
	entry, err := r.opts.Registry.Lookup(b.Task)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "unknown task", err)
	}
	size := b.Size
	if size == 0 {
		size = entry.DefaultSize
	}

	var reports []BenchReport
	for _, mode := range b.Modes() {
		inst, err := entry.New(size, b.InputSeed())
		if err != nil {
			return reports, WrapExitError(ExitCommandError, "failed to build task", err)
		}

		task := core.New(inst.Data, inst.Algorithm,
			core.WithName(entry.Name),
			core.WithLogger(r.logger),
		)
		p := perf.New(task,
			perf.WithLogger(r.logger),
			perf.WithMaxTime(maxTime),
		)

		attr := perf.Attr{NumRunning: b.Runs, CurrentTimer: r.opts.Timer}
		var results perf.Results
		switch mode {
		case perf.ModePipeline:
			err = p.PipelineRun(attr, &results)
		default:
			err = p.TaskRun(attr, &results)
		}
		if err != nil && !errors.Is(err, perf.ErrSetupFailed) {
			return reports, WrapExitError(ExitCommandError, "benchmark could not start", err)
		}
		if err != nil {
			r.logger.Warn("task setup failed", "task", entry.Name, "mode", mode, "error", err)
		}

		report := newReport(&results, size, b.InputSeed())
		if results.OutputsWritten {
			if checkErr := inst.Check(); checkErr != nil {
				report.CheckError = checkErr.Error()
				report.Pass = false
			}
		}
		// Metrics and history record the verdict after the output check.
		results.Pass = report.Pass
		r.collector.ObserveResults(&results)

		if r.store != nil {
			run := &store.Run{
				Suite:   r.suiteName,
				Size:    size,
				Seed:    b.InputSeed(),
				Results: results,
				Host:    r.host,
			}
			if err := r.store.WriteRun(ctx, run); err != nil {
				return reports, WrapExitError(ExitCommandError, "failed to record run", err).WithCode(ErrCodeDatabase)
			}
			report.RunID = run.ID
		}

		if r.text {
			if err := r.print(&results, report); err != nil {
				return reports, err
			}
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func newReport(results *perf.Results, size int, seed uint64) BenchReport {
	st := results.Stats()
	return BenchReport{
		Task:           results.Name,
		Mode:           results.Mode,
		Runs:           results.NumRunning,
		Size:           size,
		Seed:           seed,
		TimeSec:        results.TimeSec,
		MeanSec:        st.Mean,
		StdevSec:       st.Stdev,
		MinSec:         st.Min,
		MaxSec:         st.Max,
		Failures:       results.Failures,
		OutputsWritten: results.OutputsWritten,
		Exceeded:       results.Exceeded(),
		Pass:           results.Pass,
	}
}

func (r *benchRunner) print(results *perf.Results, report BenchReport) error {
	err := perf.PrintPerfStatistic(r.out, results)
	if err != nil && !errors.Is(err, perf.ErrTimeLimitExceeded) {
		return WrapExitError(ExitCommandError, "failed to print statistic", err)
	}
	if err != nil {
		fmt.Fprintf(r.out, "  time limit exceeded: mean %s > %s\n",
			perf.FormatSeconds(report.MeanSec), perf.FormatSeconds(results.MaxTime))
	}
	if !report.OutputsWritten {
		fmt.Fprintln(r.out, "  outputs not written")
	}
	if report.CheckError != "" {
		fmt.Fprintf(r.out, "  check failed: %s\n", report.CheckError)
	}
	return nil
}

func countFailed(reports []BenchReport) int {
	n := 0
	for _, rep := range reports {
		if !rep.Pass {
			n++
		}
	}
	return n
}
