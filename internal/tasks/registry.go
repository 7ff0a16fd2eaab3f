// Package tasks registers the reference algorithms that the ppc driver can
// benchmark.
//
// Each entry builds a fresh descriptor and algorithm from a problem size and
// a seed, and knows how to check the outputs the algorithm wrote.
package tasks

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/ppc/internal/core"
	"github.com/roach88/ppc/internal/taskdata"
	"github.com/roach88/ppc/internal/tasks/integration"
	"github.com/roach88/ppc/internal/tasks/sorting"
)

var (
	ErrUnknownTask   = errors.New("unknown task")
	ErrDuplicateTask = errors.New("task already registered")
	ErrInvalidSize   = errors.New("invalid problem size")
	ErrCheckFailed   = errors.New("output check failed")
)

// Instance is one ready-to-run problem.
type Instance struct {
	Data      *taskdata.TaskData
	Algorithm core.Algorithm

	// Check verifies the outputs after a run. It returns an error wrapping
	// ErrCheckFailed when they are wrong.
	Check func() error
}

// Factory builds an Instance of the given size. The same size and seed
// always produce the same inputs.
type Factory func(size int, seed uint64) (*Instance, error)

// Entry describes a registered task.
type Entry struct {
	Name        string
	Description string
	DefaultSize int
	New         Factory
}

// Registry maps normalized names to entries.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Normalize canonicalizes a task name: trimmed, case-folded, NFC.
func Normalize(name string) string {
	folded := cases.Fold().String(strings.TrimSpace(name))
	return norm.NFC.String(folded)
}

// Register adds e under its normalized name.
func (r *Registry) Register(e Entry) error {
	key := Normalize(e.Name)
	if key == "" {
		return errors.New("empty task name")
	}
	if e.New == nil {
		return fmt.Errorf("task %q: nil factory", e.Name)
	}
	if _, ok := r.entries[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, key)
	}
	e.Name = key
	r.entries[key] = e
	return nil
}

// Lookup finds an entry by name.
func (r *Registry) Lookup(name string) (Entry, error) {
	e, ok := r.entries[Normalize(name)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}
	return e, nil
}

// Entries returns all entries sorted by name.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Default returns a registry holding the built-in reference tasks.
func Default() *Registry {
	r := NewRegistry()
	for _, e := range []Entry{
		{
			Name:        "sorting_seq",
			Description: "sort random ints on one goroutine",
			DefaultSize: 1 << 16,
			New:         newSorting(func() core.Algorithm { return &sorting.Sequential{} }),
		},
		{
			Name:        "sorting_threads",
			Description: "sort random ints in parallel chunks, then merge",
			DefaultSize: 1 << 16,
			New:         newSorting(func() core.Algorithm { return &sorting.Threads{} }),
		},
		{
			Name:        "integration_seq",
			Description: "midpoint rule for sin(x) on one goroutine",
			DefaultSize: 1 << 20,
			New: newIntegration(func(f integration.Func) core.Algorithm {
				return &integration.Sequential{Integrand: f}
			}),
		},
		{
			Name:        "integration_threads",
			Description: "midpoint rule for sin(x) split across goroutines",
			DefaultSize: 1 << 20,
			New: newIntegration(func(f integration.Func) core.Algorithm {
				return &integration.Threads{Integrand: f}
			}),
		},
	} {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
	return r
}

func newSorting(algo func() core.Algorithm) Factory {
	return func(size int, seed uint64) (*Instance, error) {
		if size < 1 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
		}
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		src := make([]int, size)
		for i := range src {
			src[i] = rng.IntN(size * 4)
		}
		dst := make([]int, size)
		td := taskdata.New().
			AddInput(taskdata.Of(src), size).
			AddOutput(taskdata.Of(dst), size)

		want := slices.Clone(src)
		slices.Sort(want)
		return &Instance{
			Data:      td,
			Algorithm: algo(),
			Check: func() error {
				if !slices.Equal(dst, want) {
					return fmt.Errorf("%w: output is not the sorted input", ErrCheckFailed)
				}
				return nil
			},
		}, nil
	}
}

func newIntegration(algo func(integration.Func) core.Algorithm) Factory {
	return func(size int, seed uint64) (*Instance, error) {
		if size < 1 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
		}
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		b := math.Pi * (0.5 + rng.Float64()/2)
		td, out := integration.NewTaskData(0, b, size)

		exact := 1 - math.Cos(b)
		// Midpoint error bound for |f''| <= 1, plus room for summation order.
		h := b / float64(size)
		tol := b*h*h/24 + 1e-9
		return &Instance{
			Data:      td,
			Algorithm: algo(math.Sin),
			Check: func() error {
				if diff := math.Abs(out[0] - exact); diff > tol {
					return fmt.Errorf("%w: got %g, want %g (±%g)", ErrCheckFailed, out[0], exact, tol)
				}
				return nil
			},
		}, nil
	}
}
