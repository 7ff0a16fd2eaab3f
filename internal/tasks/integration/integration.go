// Package integration provides reference algorithms for the midpoint
// rectangle rule.
//
// Inputs are a float64 buffer holding the bounds {a, b} and an int buffer
// holding the step count {n}. The single float64 output receives the
// integral.
package integration

import (
	"runtime"
	"sync"

	"github.com/roach88/ppc/internal/taskdata"
)

// Func is a one-dimensional integrand.
type Func func(x float64) float64

type problem struct {
	a, b float64
	n    int
}

// Validate reports whether td describes a well-formed integration problem.
func Validate(td *taskdata.TaskData) bool {
	if err := td.CheckShape(); err != nil {
		return false
	}
	if len(td.Inputs) != 2 || len(td.Outputs) != 1 {
		return false
	}
	if td.InputsCount[0] != 2 || td.InputsCount[1] != 1 || td.OutputsCount[0] != 1 {
		return false
	}
	_, err := load(td)
	if err != nil {
		return false
	}
	_, err = taskdata.Output[float64](td, 0)
	return err == nil
}

func load(td *taskdata.TaskData) (problem, error) {
	bounds, err := taskdata.Input[float64](td, 0)
	if err != nil {
		return problem{}, err
	}
	steps, err := taskdata.Input[int](td, 1)
	if err != nil {
		return problem{}, err
	}
	return problem{a: bounds[0], b: bounds[1], n: steps[0]}, nil
}

func (p problem) ok() bool {
	return p.n > 0 && p.a <= p.b
}

// midpoint sums steps [begin, end) of the rule for p.
func midpoint(f Func, p problem, begin, end int) float64 {
	h := (p.b - p.a) / float64(p.n)
	var sum float64
	for i := begin; i < end; i++ {
		sum += f(p.a + (float64(i)+0.5)*h)
	}
	return sum * h
}

// Sequential evaluates every step on the calling goroutine.
type Sequential struct {
	Integrand Func

	p      problem
	result float64
}

func (s *Sequential) Validate(td *taskdata.TaskData) bool {
	if s.Integrand == nil || !Validate(td) {
		return false
	}
	p, _ := load(td)
	return p.ok()
}

func (s *Sequential) PreProcess(td *taskdata.TaskData) bool {
	p, err := load(td)
	if err != nil {
		return false
	}
	s.p = p
	s.result = 0
	return true
}

func (s *Sequential) Run() bool {
	s.result = midpoint(s.Integrand, s.p, 0, s.p.n)
	return true
}

func (s *Sequential) PostProcess(td *taskdata.TaskData) bool {
	return writeResult(td, s.result)
}

// Threads splits the steps into contiguous ranges, one goroutine each.
// Partial sums are added in range order so results are reproducible.
type Threads struct {
	Integrand Func
	// Workers caps the number of goroutines; 0 means GOMAXPROCS.
	Workers int

	p      problem
	result float64
}

func (t *Threads) Validate(td *taskdata.TaskData) bool {
	if t.Integrand == nil || t.Workers < 0 || !Validate(td) {
		return false
	}
	p, _ := load(td)
	return p.ok()
}

func (t *Threads) PreProcess(td *taskdata.TaskData) bool {
	p, err := load(td)
	if err != nil {
		return false
	}
	t.p = p
	t.result = 0
	return true
}

func (t *Threads) Run() bool {
	workers := t.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > t.p.n {
		workers = t.p.n
	}
	if workers < 1 {
		return false
	}

	partial := make([]float64, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			begin := t.p.n * w / workers
			end := t.p.n * (w + 1) / workers
			partial[w] = midpoint(t.Integrand, t.p, begin, end)
		}(w)
	}
	wg.Wait()

	var sum float64
	for _, v := range partial {
		sum += v
	}
	t.result = sum
	return true
}

func (t *Threads) PostProcess(td *taskdata.TaskData) bool {
	return writeResult(td, t.result)
}

func writeResult(td *taskdata.TaskData, v float64) bool {
	out, err := taskdata.Output[float64](td, 0)
	if err != nil || len(out) != 1 {
		return false
	}
	out[0] = v
	return true
}

// NewTaskData builds a descriptor for integrating over [a, b] with n steps.
// The returned slice is the output buffer.
func NewTaskData(a, b float64, n int) (*taskdata.TaskData, []float64) {
	out := make([]float64, 1)
	td := taskdata.New().
		AddInput(taskdata.Of([]float64{a, b}), 2).
		AddInput(taskdata.Of([]int{n}), 1).
		AddOutput(taskdata.Of(out), 1)
	return td, out
}
