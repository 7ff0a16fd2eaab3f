// Package metrics exports perf results as Prometheus metrics.
//
// A Collector is a perf.Observer: attach it with perf.WithObserver and every
// finished run updates the counters. The CLI writes the registry to a
// node_exporter textfile once a command finishes.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/ppc/internal/perf"
)

const namespace = "ppc"

// Collector records perf results.
type Collector struct {
	runs        *prometheus.CounterVec
	repetitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	repetition  *prometheus.HistogramVec
	mean        *prometheus.GaugeVec
}

// New creates a Collector and registers it with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	labels := []string{"task", "mode"}
	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "perf",
			Name:      "runs_total",
			Help:      "Completed perf runs by outcome.",
		}, []string{"task", "mode", "pass"}),
		repetitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "perf",
			Name:      "repetitions_total",
			Help:      "Timed repetitions.",
		}, labels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "perf",
			Name:      "failed_repetitions_total",
			Help:      "Repetitions in which a stage returned false.",
		}, labels),
		repetition: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "perf",
			Name:      "repetition_seconds",
			Help:      "Wall-clock time of one repetition.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 8),
		}, labels),
		mean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "perf",
			Name:      "mean_seconds",
			Help:      "Mean repetition time of the latest run.",
		}, labels),
	}

	for _, col := range []prometheus.Collector{c.runs, c.repetitions, c.failures, c.repetition, c.mean} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

// ObserveResults implements perf.Observer.
func (c *Collector) ObserveResults(r *perf.Results) {
	if r == nil || !r.Populated() {
		return
	}
	mode := string(r.Mode)

	c.runs.WithLabelValues(r.Name, mode, strconv.FormatBool(r.Pass)).Inc()
	c.repetitions.WithLabelValues(r.Name, mode).Add(float64(r.NumRunning))
	c.failures.WithLabelValues(r.Name, mode).Add(float64(r.Failures))
	c.mean.WithLabelValues(r.Name, mode).Set(r.Mean())

	hist := c.repetition.WithLabelValues(r.Name, mode)
	for _, sec := range r.Samples {
		hist.Observe(sec)
	}
}

// WriteTextfile writes every metric in g to path in the text exposition
// format, replacing the file atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
