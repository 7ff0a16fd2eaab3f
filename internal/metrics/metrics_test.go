package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ppc/internal/core"
	"github.com/roach88/ppc/internal/perf"
	ppctestutil "github.com/roach88/ppc/internal/testutil"
)

func newCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)
	return c, reg
}

func TestObserveResults_Counters(t *testing.T) {
	c, _ := newCollector(t)

	c.ObserveResults(&perf.Results{
		Name:       "sorting_seq",
		Mode:       perf.ModePipeline,
		NumRunning: 4,
		TimeSec:    2,
		Samples:    []float64{0.5, 0.5, 0.5, 0.5},
		Failures:   1,
	})
	c.ObserveResults(&perf.Results{
		Name:       "sorting_seq",
		Mode:       perf.ModePipeline,
		NumRunning: 2,
		TimeSec:    0.5,
		Samples:    []float64{0.25, 0.25},
		Pass:       true,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("sorting_seq", "pipeline", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("sorting_seq", "pipeline", "true")))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.repetitions.WithLabelValues("sorting_seq", "pipeline")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("sorting_seq", "pipeline")))
	assert.Equal(t, 0.25, testutil.ToFloat64(c.mean.WithLabelValues("sorting_seq", "pipeline")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.repetition))
}

func TestObserveResults_IgnoresEmpty(t *testing.T) {
	c, _ := newCollector(t)

	c.ObserveResults(nil)
	c.ObserveResults(&perf.Results{})

	assert.Equal(t, 0, testutil.CollectAndCount(c.runs))
}

func TestObserveResults_Exposition(t *testing.T) {
	c, reg := newCollector(t)
	c.ObserveResults(&perf.Results{
		Name:       "integration_seq",
		Mode:       perf.ModeTaskRun,
		NumRunning: 2,
		TimeSec:    1,
		Samples:    []float64{0.5, 0.5},
		Pass:       true,
	})

	expected := `
# HELP ppc_perf_mean_seconds Mean repetition time of the latest run.
# TYPE ppc_perf_mean_seconds gauge
ppc_perf_mean_seconds{mode="task_run",task="integration_seq"} 0.5
# HELP ppc_perf_runs_total Completed perf runs by outcome.
# TYPE ppc_perf_runs_total counter
ppc_perf_runs_total{mode="task_run",pass="true",task="integration_seq"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"ppc_perf_mean_seconds", "ppc_perf_runs_total")
	assert.NoError(t, err)
}

func TestNew_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestCollector_AsPerfObserver(t *testing.T) {
	c, _ := newCollector(t)

	clock := ppctestutil.NewFakeTimer()
	algo := ppctestutil.NewCountingAlgorithm(clock)
	algo.Cost.Run = 0.5
	td, _ := ppctestutil.ReverseTaskData([]int{1, 2, 3}, 3)
	task := core.New(td, algo, core.WithName("reverse"))

	var results perf.Results
	err := perf.New(task, perf.WithObserver(c)).TaskRun(perf.Attr{NumRunning: 3, CurrentTimer: clock.Now}, &results)
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.repetitions.WithLabelValues("reverse", "task_run")))
	assert.Equal(t, 0.5, testutil.ToFloat64(c.mean.WithLabelValues("reverse", "task_run")))
}

func TestWriteTextfile(t *testing.T) {
	c, reg := newCollector(t)
	c.ObserveResults(&perf.Results{
		Name:       "sorting_threads",
		Mode:       perf.ModePipeline,
		NumRunning: 1,
		TimeSec:    0.1,
		Samples:    []float64{0.1},
		Pass:       true,
	})

	path := filepath.Join(t.TempDir(), "ppc.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ppc_perf_runs_total{mode="pipeline",pass="true",task="sorting_threads"} 1`)
	assert.Contains(t, string(data), "ppc_perf_repetition_seconds_bucket")
}

func TestWriteTextfile_BadPath(t *testing.T) {
	_, reg := newCollector(t)
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "ppc.prom"), reg)
	assert.Error(t, err)
}
