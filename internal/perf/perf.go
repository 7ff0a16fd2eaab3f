// Package perf measures the lifecycle of a core.Task.
//
// Two scopes are offered. PipelineRun times the full
// Validate → PreProcess → Run → PostProcess sequence, repeated
// Attr.NumRunning times, which is what a caller pays for re-submitting the
// same request. TaskRun validates and pre-processes once, times only the
// repeated kernel runs, then post-processes once, which isolates the kernel
// from one-time data marshalling when comparing parallel strategies.
//
// The analyzer is single-threaded and measures local wall-clock time only.
// Any synchronization a distributed task needs around the timed region is
// the task's responsibility. There is no cancellation: once repetitions
// start they run to completion.
package perf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ppc/internal/core"
)

var (
	ErrInvalidAttr      = errors.New("invalid perf attributes")
	ErrNilResults       = errors.New("nil perf results")
	ErrResultsPopulated = errors.New("perf results already populated")
	ErrSetupFailed      = errors.New("task setup failed")
)

// Observer is notified once per completed run.
type Observer interface {
	ObserveResults(r *Results)
}

// Perf runs benchmarks over one task.
type Perf struct {
	task      *core.Task
	logger    *slog.Logger
	observers []Observer
	maxTime   float64
}

// Option configures a Perf.
type Option func(*Perf)

// WithLogger sets the logger for run summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Perf) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithObserver adds an observer notified after every run.
func WithObserver(o Observer) Option {
	return func(p *Perf) {
		if o != nil {
			p.observers = append(p.observers, o)
		}
	}
}

// WithMaxTime sets the per-repetition time limit copied into results.
// A value of 0 disables the limit.
func WithMaxTime(sec float64) Option {
	return func(p *Perf) {
		p.maxTime = sec
	}
}

// New creates an analyzer for task.
func New(task *core.Task, opts ...Option) *Perf {
	p := &Perf{
		task:    task,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxTime: DefaultMaxTime,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task returns the measured task.
func (p *Perf) Task() *core.Task { return p.task }

// PipelineRun repeats the four-stage sequence attr.NumRunning times and
// times the whole span.
//
// A stage returning false ends that repetition; it still counts toward
// NumRunning and is recorded in Failures.
func (p *Perf) PipelineRun(attr Attr, results *Results) error {
	if err := checkRun(attr, results); err != nil {
		return err
	}

	samples := make([]float64, 0, attr.NumRunning)
	failures := 0
	written := false

	begin := attr.CurrentTimer()
	prev := begin
	for i := 0; i < attr.NumRunning; i++ {
		written = p.task.Execute()
		if !written {
			failures++
		}
		now := attr.CurrentTimer()
		samples = append(samples, now-prev)
		prev = now
	}

	p.populate(results, ModePipeline, attr.NumRunning, prev-begin, samples, failures, written)
	return nil
}

// TaskRun validates and pre-processes once, times attr.NumRunning kernel
// runs, then post-processes once if the last run succeeded.
//
// If validation or pre-processing fails, results are populated as a failed
// run with no samples and an error wrapping ErrSetupFailed is returned.
func (p *Perf) TaskRun(attr Attr, results *Results) error {
	if err := checkRun(attr, results); err != nil {
		return err
	}

	v, ok := p.task.Validate()
	if !ok {
		p.populate(results, ModeTaskRun, attr.NumRunning, 0, nil, attr.NumRunning, false)
		return fmt.Errorf("%w: %s: validation returned false", ErrSetupFailed, p.task.Name())
	}
	pre, ok := v.PreProcess()
	if !ok {
		p.populate(results, ModeTaskRun, attr.NumRunning, 0, nil, attr.NumRunning, false)
		return fmt.Errorf("%w: %s: pre-processing returned false", ErrSetupFailed, p.task.Name())
	}

	samples := make([]float64, 0, attr.NumRunning)
	failures := 0
	var runner core.Runner = pre
	// last is the token of the latest run, nil when that run failed.
	var last *core.Ran

	begin := attr.CurrentTimer()
	prev := begin
	for i := 0; i < attr.NumRunning; i++ {
		if r, ok := runner.Run(); ok {
			runner = r
			last = r
		} else {
			last = nil
			failures++
		}
		now := attr.CurrentTimer()
		samples = append(samples, now-prev)
		prev = now
	}

	written := false
	if last != nil {
		_, written = last.PostProcess()
	}

	p.populate(results, ModeTaskRun, attr.NumRunning, prev-begin, samples, failures, written)
	return nil
}

func checkRun(attr Attr, results *Results) error {
	if results == nil {
		return ErrNilResults
	}
	if results.Populated() {
		return ErrResultsPopulated
	}
	return attr.Validate()
}

func (p *Perf) populate(results *Results, mode Mode, n int, elapsed float64, samples []float64, failures int, written bool) {
	*results = Results{
		Name:           p.task.Name(),
		Mode:           mode,
		NumRunning:     n,
		TimeSec:        elapsed,
		Samples:        samples,
		Failures:       failures,
		OutputsWritten: written,
		MaxTime:        p.maxTime,
	}
	results.Pass = failures == 0 && written && !results.Exceeded()

	p.logger.Info("perf run finished",
		"task", results.Name,
		"mode", results.Mode,
		"num_running", results.NumRunning,
		"time_sec", results.TimeSec,
		"failures", results.Failures,
		"pass", results.Pass,
	)
	for _, o := range p.observers {
		o.ObserveResults(results)
	}
}
