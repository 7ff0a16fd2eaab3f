// Package suite loads benchmark suites: named lists of tasks to measure,
// with their modes, repetition counts and problem sizes.
//
// Suites are written in YAML or CUE. Both formats decode into the same
// Suite and go through the same defaults and validation.
package suite

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ppc/internal/perf"
)

// ModeBoth runs a benchmark in pipeline mode and then in task_run mode.
const ModeBoth = "both"

// DefaultRuns is the repetition count used when a benchmark leaves runs unset.
const DefaultRuns = 5

// DefaultSeed is the input seed used when neither the suite nor the
// benchmark sets one. It matches the bench command's --seed default.
const DefaultSeed uint64 = 1

// Suite is a named collection of benchmarks.
type Suite struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Seed feeds every benchmark that does not set its own. Unset means
	// DefaultSeed.
	Seed *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`

	// MaxTime is the per-repetition limit in seconds. Unset means
	// perf.DefaultMaxTime; 0 disables the limit, as with bench --max-time 0.
	MaxTime *float64 `yaml:"max_time,omitempty" json:"max_time,omitempty"`

	Benchmarks []Benchmark `yaml:"benchmarks" json:"benchmarks"`
}

// Benchmark selects one registered task and how to measure it.
type Benchmark struct {
	Task string `yaml:"task" json:"task"`

	// Mode is "pipeline", "task_run" or "both" (the default).
	Mode string `yaml:"mode,omitempty" json:"mode,omitempty"`

	Runs int `yaml:"runs,omitempty" json:"runs,omitempty"`

	// Size of the generated problem; 0 selects the task's default.
	Size int `yaml:"size,omitempty" json:"size,omitempty"`

	// Seed overrides the suite seed, including an explicit 0.
	Seed *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// InputSeed is the seed used to generate the benchmark's inputs.
func (b Benchmark) InputSeed() uint64 {
	if b.Seed == nil {
		return DefaultSeed
	}
	return *b.Seed
}

// TimeLimit is the per-repetition limit in seconds, 0 when disabled.
func (s *Suite) TimeLimit() float64 {
	if s.MaxTime == nil {
		return perf.DefaultMaxTime
	}
	return *s.MaxTime
}

// Modes expands b.Mode into the analyzer modes to run, in order.
func (b Benchmark) Modes() []perf.Mode {
	switch b.Mode {
	case string(perf.ModePipeline):
		return []perf.Mode{perf.ModePipeline}
	case string(perf.ModeTaskRun):
		return []perf.Mode{perf.ModeTaskRun}
	default:
		return []perf.Mode{perf.ModePipeline, perf.ModeTaskRun}
	}
}

// Error codes carried by LoadError.
const (
	CodeReadFailed  = "read_failed"
	CodeParseFailed = "parse_failed"
	CodeSchema      = "schema_violation"
	CodeInvalid     = "invalid_suite"
	CodeUnsupported = "unsupported_format"
)

// LoadError describes why a suite file could not be loaded.
type LoadError struct {
	Path    string
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid suite")

// Load reads a suite from path, choosing the format by file extension.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Code: CodeReadFailed, Message: err.Error(), Err: err}
	}

	var s *Suite
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err = ParseYAML(data)
	case ".cue":
		s, err = ParseCUE(data, path)
	default:
		return nil, &LoadError{
			Path:    path,
			Code:    CodeUnsupported,
			Message: fmt.Sprintf("unsupported suite extension %q (want .yaml, .yml or .cue)", filepath.Ext(path)),
		}
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Path == "" {
			le.Path = path
		}
		return nil, err
	}
	return s, nil
}

// ParseYAML decodes a suite from YAML. Unknown fields are rejected.
func ParseYAML(data []byte) (*Suite, error) {
	var s Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, &LoadError{Code: CodeParseFailed, Message: err.Error(), Err: err}
	}
	return finish(&s)
}

func finish(s *Suite) (*Suite, error) {
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, &LoadError{Code: CodeInvalid, Message: err.Error(), Err: err}
	}
	return s, nil
}

func (s *Suite) applyDefaults() {
	if s.Seed == nil {
		s.Seed = ptr(DefaultSeed)
	}
	if s.MaxTime == nil {
		s.MaxTime = ptr(perf.DefaultMaxTime)
	}
	for i := range s.Benchmarks {
		b := &s.Benchmarks[i]
		if b.Mode == "" {
			b.Mode = ModeBoth
		}
		if b.Runs == 0 {
			b.Runs = DefaultRuns
		}
		if b.Seed == nil {
			b.Seed = ptr(*s.Seed)
		}
	}
}

func ptr[T any](v T) *T { return &v }

// Validate checks required fields and value ranges.
func (s *Suite) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if s.TimeLimit() < 0 {
		return fmt.Errorf("%w: max_time must not be negative", ErrInvalid)
	}
	if len(s.Benchmarks) == 0 {
		return fmt.Errorf("%w: benchmarks list is required and must be non-empty", ErrInvalid)
	}
	for i, b := range s.Benchmarks {
		if b.Task == "" {
			return fmt.Errorf("%w: benchmarks[%d]: task is required", ErrInvalid, i)
		}
		switch b.Mode {
		case ModeBoth, string(perf.ModePipeline), string(perf.ModeTaskRun):
		default:
			return fmt.Errorf("%w: benchmarks[%d]: unknown mode %q", ErrInvalid, i, b.Mode)
		}
		if b.Runs < 1 {
			return fmt.Errorf("%w: benchmarks[%d]: runs must be at least 1", ErrInvalid, i)
		}
		if b.Size < 0 {
			return fmt.Errorf("%w: benchmarks[%d]: size must not be negative", ErrInvalid, i)
		}
	}
	return nil
}
