package core

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ppc/internal/taskdata"
)

// Algorithm is the extension point implemented by every concrete algorithm.
//
// Validate inspects the descriptor and must not change anything; it may be
// called any number of times. PreProcess builds private working state from
// the inputs. Run executes the kernel over that private state and may use
// any concurrency internally. PostProcess copies results into the outputs,
// writing at most OutputsCount[i] elements into Outputs[i]; it is the only
// hook allowed to mutate the descriptor.
type Algorithm interface {
	Validate(td *taskdata.TaskData) bool
	PreProcess(td *taskdata.TaskData) bool
	Run() bool
	PostProcess(td *taskdata.TaskData) bool
}

// Task binds one Algorithm to one descriptor and enforces stage order.
//
// A Task is not safe for concurrent use.
type Task struct {
	name   string
	data   *taskdata.TaskData
	algo   Algorithm
	state  State
	cycle  uint64
	counts StageCounts
	logger *slog.Logger
}

// Option configures a Task.
type Option func(*Task)

// WithName sets the name reported in logs and performance results.
func WithName(name string) Option {
	return func(t *Task) {
		t.name = name
	}
}

// WithLogger sets the logger used for stage transitions.
// By default a Task logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Task) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates a Task in the CREATED state.
// The name defaults to the algorithm's dynamic type.
func New(data *taskdata.TaskData, algo Algorithm, opts ...Option) *Task {
	t := &Task{
		name:   fmt.Sprintf("%T", algo),
		data:   data,
		algo:   algo,
		state:  StateCreated,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Data returns the descriptor the task is bound to.
func (t *Task) Data() *taskdata.TaskData { return t.data }

// State returns the current lifecycle state.
func (t *Task) State() State { return t.state }

// Cycle returns the number of times Validate has been entered.
func (t *Task) Cycle() uint64 { return t.cycle }

// Counts returns how many times each hook has been invoked.
func (t *Task) Counts() StageCounts { return t.counts }

// Validate starts a new cycle and runs the validation hook.
// On success it returns the token needed for PreProcess.
func (t *Task) Validate() (*Validated, bool) {
	t.cycle++
	if !t.enter(StageValidation, t.cycle) {
		return nil, false
	}
	if !t.finish(StageValidation, t.algo.Validate(t.data)) {
		return nil, false
	}
	return &Validated{task: t, cycle: t.cycle}, true
}

// Execute runs the four stages once, stopping at the first failure.
func (t *Task) Execute() bool {
	v, ok := t.Validate()
	if !ok {
		return false
	}
	p, ok := v.PreProcess()
	if !ok {
		return false
	}
	r, ok := p.Run()
	if !ok {
		return false
	}
	_, ok = r.PostProcess()
	return ok
}

// enter checks that stage may run now for a token issued in cycle.
func (t *Task) enter(stage Stage, cycle uint64) bool {
	if cycle != t.cycle {
		t.logger.Warn("stale stage token rejected",
			"task", t.name,
			"stage", stage,
			"token_cycle", cycle,
			"cycle", t.cycle,
		)
		return false
	}
	if !canEnter(stage, t.state) {
		t.logger.Warn("stage out of order rejected",
			"task", t.name,
			"stage", stage,
			"state", t.state,
		)
		return false
	}
	return true
}

// finish records a hook invocation and moves to the resulting state.
func (t *Task) finish(stage Stage, ok bool) bool {
	t.counts.add(stage)
	from := t.state
	t.state = outcome(stage, ok)
	t.logger.Debug("stage finished",
		"task", t.name,
		"stage", stage,
		"ok", ok,
		"from", from,
		"to", t.state,
		"cycle", t.cycle,
	)
	return ok
}

// Validated is held after a successful Validate.
type Validated struct {
	task  *Task
	cycle uint64
}

// PreProcess runs the pre-processing hook.
func (v *Validated) PreProcess() (*PreProcessed, bool) {
	t := v.task
	if !t.enter(StagePreProcessing, v.cycle) {
		return nil, false
	}
	if !t.finish(StagePreProcessing, t.algo.PreProcess(t.data)) {
		return nil, false
	}
	return &PreProcessed{task: t, cycle: v.cycle}, true
}

// Runner is satisfied by both stage tokens that allow running the kernel.
type Runner interface {
	Run() (*Ran, bool)
}

// PreProcessed is held after a successful PreProcess.
type PreProcessed struct {
	task  *Task
	cycle uint64
}

// Run runs the kernel. A failed run leaves the token usable for a retry.
func (p *PreProcessed) Run() (*Ran, bool) {
	return runKernel(p.task, p.cycle)
}

// Ran is held after a successful Run.
type Ran struct {
	task  *Task
	cycle uint64
}

// Run runs the kernel again over the same preprocessed state.
func (r *Ran) Run() (*Ran, bool) {
	return runKernel(r.task, r.cycle)
}

// PostProcess runs the post-processing hook. It is refused if the most
// recent Run failed.
func (r *Ran) PostProcess() (*PostProcessed, bool) {
	t := r.task
	if !t.enter(StagePostProcessing, r.cycle) {
		return nil, false
	}
	if !t.finish(StagePostProcessing, t.algo.PostProcess(t.data)) {
		return nil, false
	}
	return &PostProcessed{task: t, cycle: r.cycle}, true
}

func runKernel(t *Task, cycle uint64) (*Ran, bool) {
	if !t.enter(StageRun, cycle) {
		return nil, false
	}
	if !t.finish(StageRun, t.algo.Run()) {
		return nil, false
	}
	return &Ran{task: t, cycle: cycle}, true
}

// PostProcessed marks a completed cycle.
type PostProcessed struct {
	task  *Task
	cycle uint64
}

// Task returns the task whose cycle completed.
func (p *PostProcessed) Task() *Task { return p.task }

// Cycle returns the cycle that completed.
func (p *PostProcessed) Cycle() uint64 { return p.cycle }
