package testutil

import "github.com/roach88/ppc/internal/taskdata"

// StageCost is the simulated duration, in seconds, of each hook.
type StageCost struct {
	Validation     float64
	PreProcessing  float64
	Run            float64
	PostProcessing float64
}

// CountingAlgorithm is an instrumented algorithm for lifecycle tests.
//
// It reverses one []int input into one []int output, records every hook
// call in order, advances Clock by the configured cost of each hook, and can
// be told to fail specific hooks.
type CountingAlgorithm struct {
	Clock *FakeTimer
	Cost  StageCost

	FailValidation     bool
	FailPreProcessing  bool
	FailPostProcessing bool
	// FailRunOn lists 1-based Run call numbers that return false.
	FailRunOn map[int]bool

	Calls []string

	ValidationCalls     int
	PreProcessingCalls  int
	RunCalls            int
	PostProcessingCalls int

	input  []int
	result []int
}

// NewCountingAlgorithm creates an algorithm that advances clock (may be nil).
func NewCountingAlgorithm(clock *FakeTimer) *CountingAlgorithm {
	return &CountingAlgorithm{Clock: clock, FailRunOn: map[int]bool{}}
}

// ReverseTaskData builds a descriptor with src as input and an output
// buffer of outCount elements.
func ReverseTaskData(src []int, outCount int) (*taskdata.TaskData, []int) {
	dst := make([]int, outCount)
	td := taskdata.New().
		AddInput(taskdata.Of(src), len(src)).
		AddOutput(taskdata.Of(dst), outCount)
	return td, dst
}

func (a *CountingAlgorithm) Validate(td *taskdata.TaskData) bool {
	a.ValidationCalls++
	a.record("validation", a.Cost.Validation)
	if a.FailValidation {
		return false
	}
	if err := td.CheckShape(); err != nil {
		return false
	}
	if len(td.Inputs) != 1 || len(td.Outputs) != 1 {
		return false
	}
	if _, err := taskdata.Input[int](td, 0); err != nil {
		return false
	}
	_, err := taskdata.Output[int](td, 0)
	return err == nil
}

func (a *CountingAlgorithm) PreProcess(td *taskdata.TaskData) bool {
	a.PreProcessingCalls++
	a.record("pre_processing", a.Cost.PreProcessing)
	if a.FailPreProcessing {
		return false
	}
	in, err := taskdata.Input[int](td, 0)
	if err != nil {
		return false
	}
	a.input = append([]int(nil), in...)
	a.result = nil
	return true
}

func (a *CountingAlgorithm) Run() bool {
	a.RunCalls++
	a.record("run", a.Cost.Run)
	if a.FailRunOn[a.RunCalls] {
		return false
	}
	a.result = make([]int, len(a.input))
	for i, v := range a.input {
		a.result[len(a.input)-1-i] = v
	}
	return true
}

func (a *CountingAlgorithm) PostProcess(td *taskdata.TaskData) bool {
	a.PostProcessingCalls++
	a.record("post_processing", a.Cost.PostProcessing)
	if a.FailPostProcessing {
		return false
	}
	out, err := taskdata.Output[int](td, 0)
	if err != nil {
		return false
	}
	copy(out, a.result)
	return true
}

// TotalCalls is the number of hook invocations so far.
func (a *CountingAlgorithm) TotalCalls() int {
	return a.ValidationCalls + a.PreProcessingCalls + a.RunCalls + a.PostProcessingCalls
}

func (a *CountingAlgorithm) record(stage string, cost float64) {
	a.Calls = append(a.Calls, stage)
	if a.Clock != nil {
		a.Clock.Advance(cost)
	}
}
