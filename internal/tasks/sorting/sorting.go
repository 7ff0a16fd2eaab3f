// Package sorting provides reference algorithms that sort one []int input
// into one []int output of the same count.
package sorting

import (
	"runtime"
	"slices"
	"sync"

	"github.com/roach88/ppc/internal/taskdata"
)

// Validate reports whether td carries exactly one int input and one int
// output with equal counts.
func Validate(td *taskdata.TaskData) bool {
	if err := td.CheckShape(); err != nil {
		return false
	}
	if len(td.Inputs) != 1 || len(td.Outputs) != 1 {
		return false
	}
	if td.Inputs[0].Kind() != taskdata.KindInt || td.Outputs[0].Kind() != taskdata.KindInt {
		return false
	}
	return td.InputsCount[0] == td.OutputsCount[0]
}

// Sequential sorts on the calling goroutine.
type Sequential struct {
	input  []int
	result []int
}

func (s *Sequential) Validate(td *taskdata.TaskData) bool { return Validate(td) }

func (s *Sequential) PreProcess(td *taskdata.TaskData) bool {
	in, err := taskdata.Input[int](td, 0)
	if err != nil {
		return false
	}
	s.input = slices.Clone(in)
	s.result = nil
	return true
}

func (s *Sequential) Run() bool {
	s.result = slices.Clone(s.input)
	slices.Sort(s.result)
	return true
}

func (s *Sequential) PostProcess(td *taskdata.TaskData) bool {
	return writeOutput(td, s.result)
}

// Threads sorts contiguous chunks on separate goroutines, then merges them.
type Threads struct {
	// Workers caps the number of goroutines; 0 means GOMAXPROCS.
	Workers int

	input  []int
	result []int
}

func (t *Threads) Validate(td *taskdata.TaskData) bool {
	return t.Workers >= 0 && Validate(td)
}

func (t *Threads) PreProcess(td *taskdata.TaskData) bool {
	in, err := taskdata.Input[int](td, 0)
	if err != nil {
		return false
	}
	t.input = slices.Clone(in)
	t.result = nil
	return true
}

func (t *Threads) Run() bool {
	data := slices.Clone(t.input)
	chunks := split(len(data), t.workers())

	var wg sync.WaitGroup
	for _, c := range chunks {
		wg.Add(1)
		go func(c chunk) {
			defer wg.Done()
			slices.Sort(data[c.begin:c.end])
		}(c)
	}
	wg.Wait()

	t.result = mergeChunks(data, chunks)
	return true
}

func (t *Threads) PostProcess(td *taskdata.TaskData) bool {
	return writeOutput(td, t.result)
}

func (t *Threads) workers() int {
	if t.Workers > 0 {
		return t.Workers
	}
	return runtime.GOMAXPROCS(0)
}

type chunk struct {
	begin, end int
}

// split divides n items into at most workers non-empty contiguous chunks.
func split(n, workers int) []chunk {
	if workers > n {
		workers = n
	}
	if workers < 1 {
		return nil
	}
	chunks := make([]chunk, 0, workers)
	for i := 0; i < workers; i++ {
		chunks = append(chunks, chunk{begin: n * i / workers, end: n * (i + 1) / workers})
	}
	return chunks
}

// mergeChunks merges sorted adjacent chunks pairwise until one remains.
func mergeChunks(data []int, chunks []chunk) []int {
	buf := make([]int, len(data))
	for len(chunks) > 1 {
		next := make([]chunk, 0, (len(chunks)+1)/2)
		for i := 0; i < len(chunks); i += 2 {
			if i+1 == len(chunks) {
				c := chunks[i]
				copy(buf[c.begin:c.end], data[c.begin:c.end])
				next = append(next, c)
				continue
			}
			l, r := chunks[i], chunks[i+1]
			merge(buf[l.begin:r.end], data[l.begin:l.end], data[r.begin:r.end])
			next = append(next, chunk{begin: l.begin, end: r.end})
		}
		data, buf = buf, data
		chunks = next
	}
	return data
}

func merge(dst, a, b []int) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if b[j] < a[i] {
			dst[k] = b[j]
			j++
		} else {
			dst[k] = a[i]
			i++
		}
		k++
	}
	k += copy(dst[k:], a[i:])
	copy(dst[k:], b[j:])
}

func writeOutput(td *taskdata.TaskData, result []int) bool {
	out, err := taskdata.Output[int](td, 0)
	if err != nil || len(result) != len(out) {
		return false
	}
	copy(out, result)
	return true
}
