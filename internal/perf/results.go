package perf

import "math"

// Mode tags which region a run measured.
type Mode string

const (
	ModeNone     Mode = "none"
	ModePipeline Mode = "pipeline"
	ModeTaskRun  Mode = "task_run"
)

// DefaultMaxTime is the per-repetition time limit, in seconds, applied
// unless the analyzer is configured otherwise.
const DefaultMaxTime = 10.0

// Results is the outcome of one benchmark run.
//
// A zero Results is empty; an analyzer fills it exactly once.
type Results struct {
	Name       string
	Mode       Mode
	NumRunning int

	// TimeSec is the span between the first and the last timer sample.
	TimeSec float64

	// Samples holds the span of each repetition; they add up to TimeSec.
	Samples []float64

	// Failures counts repetitions in which a stage returned false.
	Failures int

	// OutputsWritten reports whether the final post-processing succeeded.
	OutputsWritten bool

	// MaxTime is the per-repetition limit in seconds; 0 disables it.
	MaxTime float64

	Pass bool
}

// Populated reports whether a run has filled r.
func (r *Results) Populated() bool {
	return r.Mode != "" && r.Mode != ModeNone
}

// Mean is the average time per repetition.
func (r *Results) Mean() float64 {
	if r.NumRunning < 1 {
		return 0
	}
	return r.TimeSec / float64(r.NumRunning)
}

// Exceeded reports whether the mean repetition is over MaxTime.
func (r *Results) Exceeded() bool {
	return r.MaxTime > 0 && r.Mean() > r.MaxTime
}

// Stats summarizes the per-repetition samples.
type Stats struct {
	Mean  float64
	Stdev float64
	Min   float64
	Max   float64
}

// Stats computes the summary. Mean is derived from TimeSec so that it agrees
// with Mean(); Stdev is the sample standard deviation (0 for fewer than two
// samples).
func (r *Results) Stats() Stats {
	s := Stats{Mean: r.Mean()}
	if len(r.Samples) == 0 {
		return s
	}
	s.Min = math.Inf(1)
	s.Max = math.Inf(-1)
	for _, v := range r.Samples {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Stdev = stdev(r.Samples, s.Mean)
	return s
}

func stdev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var numerator float64
	for _, v := range values {
		delta := v - mean
		numerator += delta * delta
	}
	return math.Sqrt(numerator / float64(len(values)-1))
}
