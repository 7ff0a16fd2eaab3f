package perf

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ppc/internal/core"
	"github.com/roach88/ppc/internal/testutil"
)

// quarterCost makes each stage take 1/16 s, so a full pipeline
// repetition takes exactly 0.25 s on the fake clock.
var quarterCost = testutil.StageCost{
	Validation:     0.0625,
	PreProcessing:  0.0625,
	Run:            0.0625,
	PostProcessing: 0.0625,
}

type fixture struct {
	clock *testutil.FakeTimer
	algo  *testutil.CountingAlgorithm
	task  *core.Task
	dst   []int
}

func newFixture(t *testing.T, src []int) *fixture {
	t.Helper()
	clock := testutil.NewFakeTimer()
	algo := testutil.NewCountingAlgorithm(clock)
	algo.Cost = quarterCost
	td, dst := testutil.ReverseTaskData(src, len(src))
	return &fixture{
		clock: clock,
		algo:  algo,
		task:  core.New(td, algo, core.WithName("reverse")),
		dst:   dst,
	}
}

func (f *fixture) attr(n int) Attr {
	return Attr{NumRunning: n, CurrentTimer: f.clock.Now}
}

type recordingObserver struct {
	seen []*Results
}

func (o *recordingObserver) ObserveResults(r *Results) {
	o.seen = append(o.seen, r)
}

func TestPipelineRun_RunsFullSequenceNTimes(t *testing.T) {
	f := newFixture(t, []int{5, 3, 1})
	p := New(f.task)

	var results Results
	require.NoError(t, p.PipelineRun(f.attr(5), &results))

	assert.Equal(t, 5, f.algo.ValidationCalls)
	assert.Equal(t, 5, f.algo.PreProcessingCalls)
	assert.Equal(t, 5, f.algo.RunCalls)
	assert.Equal(t, 5, f.algo.PostProcessingCalls)
	assert.Equal(t, 4*5, f.algo.TotalCalls())
	assert.Equal(t, 4*5, f.task.Counts().Total())

	assert.Equal(t, ModePipeline, results.Mode)
	assert.Equal(t, "reverse", results.Name)
	assert.Equal(t, 5, results.NumRunning)
	assert.Equal(t, 1.25, results.TimeSec)
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25, 0.25}, results.Samples)
	assert.Equal(t, 0.25, results.Mean())
	assert.True(t, results.OutputsWritten)
	assert.True(t, results.Pass)
	assert.Equal(t, 6, f.clock.Reads(), "timer sampled before the first and after every repetition")

	assert.Equal(t, []int{1, 3, 5}, f.dst)
}

func TestTaskRun_RunsKernelNTimes(t *testing.T) {
	f := newFixture(t, []int{5, 3, 1})
	p := New(f.task)

	var results Results
	require.NoError(t, p.TaskRun(f.attr(7), &results))

	assert.Equal(t, 1, f.algo.ValidationCalls)
	assert.Equal(t, 1, f.algo.PreProcessingCalls)
	assert.Equal(t, 7, f.algo.RunCalls)
	assert.Equal(t, 1, f.algo.PostProcessingCalls)

	assert.Equal(t, ModeTaskRun, results.Mode)
	assert.Equal(t, 7*0.0625, results.TimeSec)
	assert.Len(t, results.Samples, 7)
	assert.Equal(t, 0.0625, results.Mean())
	assert.True(t, results.Pass)

	assert.Equal(t, []int{1, 3, 5}, f.dst)
	assert.Equal(t, core.StatePostProcessed, f.task.State())
}

func TestTaskRun_ExcludesSetupCost(t *testing.T) {
	pipe := newFixture(t, []int{4, 2, 9})
	var pipeResults Results
	require.NoError(t, New(pipe.task).PipelineRun(pipe.attr(1), &pipeResults))

	kernel := newFixture(t, []int{4, 2, 9})
	var kernelResults Results
	require.NoError(t, New(kernel.task).TaskRun(kernel.attr(1), &kernelResults))

	assert.LessOrEqual(t, kernelResults.TimeSec, pipeResults.TimeSec)
	assert.Equal(t, 0.0625, kernelResults.TimeSec)
	assert.Equal(t, 0.25, pipeResults.TimeSec)
}

func TestRuns_DeterministicOutputs(t *testing.T) {
	f := newFixture(t, []int{7, 1, 4, 4, 0})
	p := New(f.task)

	var first Results
	require.NoError(t, p.PipelineRun(f.attr(3), &first))
	afterPipeline := append([]int(nil), f.dst...)

	var second Results
	require.NoError(t, p.PipelineRun(f.attr(3), &second))
	assert.Equal(t, afterPipeline, f.dst)

	var third Results
	require.NoError(t, p.TaskRun(f.attr(3), &third))
	assert.Equal(t, afterPipeline, f.dst)

	var fourth Results
	require.NoError(t, p.TaskRun(f.attr(3), &fourth))
	assert.Equal(t, []int{0, 4, 4, 1, 7}, f.dst)
}

func TestPipelineRun_FailedRepetitionStillCounts(t *testing.T) {
	f := newFixture(t, []int{1, 2})
	f.algo.FailRunOn[2] = true
	p := New(f.task)

	var results Results
	require.NoError(t, p.PipelineRun(f.attr(3), &results))

	assert.Equal(t, 3, f.algo.ValidationCalls)
	assert.Equal(t, 3, f.algo.RunCalls)
	assert.Equal(t, 2, f.algo.PostProcessingCalls, "failed repetition skips post-processing")
	assert.Equal(t, 1, results.Failures)
	assert.Len(t, results.Samples, 3)
	// 0.25 + 0.1875 + 0.25
	assert.Equal(t, 0.6875, results.TimeSec)
	assert.True(t, results.OutputsWritten)
	assert.False(t, results.Pass)
}

func TestPipelineRun_ValidationFailure(t *testing.T) {
	f := newFixture(t, []int{1, 2})
	f.algo.FailValidation = true

	var results Results
	require.NoError(t, New(f.task).PipelineRun(f.attr(4), &results))

	assert.Equal(t, 4, results.Failures)
	assert.Equal(t, 0, f.algo.PreProcessingCalls)
	assert.False(t, results.OutputsWritten)
	assert.False(t, results.Pass)
	assert.Equal(t, []int{0, 0}, f.dst)
}

func TestTaskRun_FailedLastRunSkipsPostProcess(t *testing.T) {
	f := newFixture(t, []int{1, 2})
	f.algo.FailRunOn[3] = true

	var results Results
	require.NoError(t, New(f.task).TaskRun(f.attr(3), &results))

	assert.Equal(t, 3, f.algo.RunCalls)
	assert.Equal(t, 0, f.algo.PostProcessingCalls)
	assert.Equal(t, 1, results.Failures)
	assert.False(t, results.OutputsWritten)
	assert.False(t, results.Pass)
	assert.Equal(t, []int{0, 0}, f.dst)
}

func TestTaskRun_FailedLastRunLeavesTokensAlone(t *testing.T) {
	var logs bytes.Buffer
	clock := testutil.NewFakeTimer()
	algo := testutil.NewCountingAlgorithm(clock)
	algo.FailRunOn[2] = true
	td, _ := testutil.ReverseTaskData([]int{1, 2}, 2)
	task := core.New(td, algo, core.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	var results Results
	require.NoError(t, New(task).TaskRun(Attr{NumRunning: 2, CurrentTimer: clock.Now}, &results))

	assert.Equal(t, core.StateRunFailed, task.State())
	assert.Equal(t, 0, algo.PostProcessingCalls)
	assert.NotContains(t, logs.String(), "rejected")
}

func TestTaskRun_FailedMiddleRunRecovers(t *testing.T) {
	f := newFixture(t, []int{1, 2})
	f.algo.FailRunOn[2] = true

	var results Results
	require.NoError(t, New(f.task).TaskRun(f.attr(3), &results))

	assert.Equal(t, 3, f.algo.RunCalls)
	assert.Equal(t, 1, f.algo.PostProcessingCalls)
	assert.Equal(t, 1, results.Failures)
	assert.True(t, results.OutputsWritten)
	assert.Equal(t, []int{2, 1}, f.dst)
}

func TestTaskRun_SetupFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(a *testutil.CountingAlgorithm)
	}{
		{"validation", func(a *testutil.CountingAlgorithm) { a.FailValidation = true }},
		{"pre-processing", func(a *testutil.CountingAlgorithm) { a.FailPreProcessing = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, []int{1})
			tt.setup(f.algo)

			var results Results
			err := New(f.task).TaskRun(f.attr(2), &results)
			require.ErrorIs(t, err, ErrSetupFailed)
			assert.Contains(t, err.Error(), tt.name)

			assert.Equal(t, ModeTaskRun, results.Mode)
			assert.False(t, results.Pass)
			assert.Empty(t, results.Samples)
			assert.Equal(t, 0, f.algo.RunCalls)
			assert.Equal(t, 0, f.clock.Reads())
		})
	}
}

func TestRun_RejectsBadArguments(t *testing.T) {
	f := newFixture(t, []int{1})
	p := New(f.task)

	var results Results
	assert.ErrorIs(t, p.PipelineRun(Attr{NumRunning: 0, CurrentTimer: f.clock.Now}, &results), ErrInvalidAttr)
	assert.ErrorIs(t, p.TaskRun(Attr{NumRunning: 1}, &results), ErrInvalidAttr)
	assert.ErrorIs(t, p.PipelineRun(f.attr(1), nil), ErrNilResults)
	assert.False(t, results.Populated())
	assert.Equal(t, 0, f.algo.TotalCalls())

	require.NoError(t, p.PipelineRun(f.attr(1), &results))
	assert.ErrorIs(t, p.TaskRun(f.attr(1), &results), ErrResultsPopulated)
	assert.Equal(t, ModePipeline, results.Mode, "populated results must not be overwritten")
}

func TestRun_NotifiesObserversAndLogs(t *testing.T) {
	f := newFixture(t, []int{3, 1})
	obs := &recordingObserver{}
	var logs bytes.Buffer
	p := New(f.task,
		WithObserver(obs),
		WithObserver(nil),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)

	var pipeline, kernel Results
	require.NoError(t, p.PipelineRun(f.attr(2), &pipeline))
	require.NoError(t, p.TaskRun(f.attr(2), &kernel))

	require.Len(t, obs.seen, 2)
	assert.Same(t, &pipeline, obs.seen[0])
	assert.Same(t, &kernel, obs.seen[1])
	assert.Contains(t, logs.String(), "perf run finished")
	assert.Contains(t, logs.String(), "mode=task_run")
}

func TestRun_MaxTime(t *testing.T) {
	f := newFixture(t, []int{1})
	p := New(f.task, WithMaxTime(0.1))

	var results Results
	require.NoError(t, p.PipelineRun(f.attr(2), &results))

	assert.Equal(t, 0.1, results.MaxTime)
	assert.True(t, results.Exceeded())
	assert.False(t, results.Pass)

	var disabled Results
	require.NoError(t, New(f.task, WithMaxTime(0)).PipelineRun(f.attr(2), &disabled))
	assert.False(t, disabled.Exceeded())
	assert.True(t, disabled.Pass)
}

func TestNew_DefaultMaxTime(t *testing.T) {
	f := newFixture(t, []int{1})
	p := New(f.task)
	assert.Same(t, f.task, p.Task())

	var results Results
	require.NoError(t, p.TaskRun(f.attr(1), &results))
	assert.Equal(t, DefaultMaxTime, results.MaxTime)
}

func TestAttr_Validate(t *testing.T) {
	assert.NoError(t, NewAttr(1).Validate())
	assert.ErrorIs(t, NewAttr(0).Validate(), ErrInvalidAttr)
	assert.ErrorIs(t, NewAttr(-3).Validate(), ErrInvalidAttr)
	assert.ErrorIs(t, Attr{NumRunning: 2}.Validate(), ErrInvalidAttr)
}

func TestWallTimer_Monotonic(t *testing.T) {
	timer := WallTimer()
	first := timer()
	time.Sleep(2 * time.Millisecond)
	second := timer()

	assert.GreaterOrEqual(t, first, 0.0)
	assert.Greater(t, second, first)
}

func TestWallTimer_OnRealTask(t *testing.T) {
	f := newFixture(t, []int{3, 2, 1})
	var results Results
	require.NoError(t, New(f.task).PipelineRun(NewAttr(3), &results))

	assert.GreaterOrEqual(t, results.TimeSec, 0.0)
	assert.Len(t, results.Samples, 3)
	assert.Equal(t, []int{1, 2, 3}, f.dst)
}
