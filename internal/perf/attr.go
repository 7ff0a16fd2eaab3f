package perf

import (
	"fmt"
	"time"
)

// Timer returns elapsed seconds since an epoch chosen by its creator.
// Readings must not decrease within one benchmark invocation.
type Timer func() float64

// WallTimer returns a Timer measuring wall-clock seconds since the call.
// Wall time, not CPU time, so that parallel speedup inside a task is visible.
func WallTimer() Timer {
	start := time.Now()
	return func() float64 {
		return time.Since(start).Seconds()
	}
}

// Attr configures one benchmark invocation.
type Attr struct {
	// NumRunning is the number of repetitions, at least 1.
	NumRunning int

	// CurrentTimer is sampled around the measured region.
	CurrentTimer Timer
}

// NewAttr returns attributes for n repetitions timed by a fresh WallTimer.
func NewAttr(n int) Attr {
	return Attr{NumRunning: n, CurrentTimer: WallTimer()}
}

// Validate reports whether the attributes can drive a run.
func (a Attr) Validate() error {
	if a.NumRunning < 1 {
		return fmt.Errorf("%w: num_running must be >= 1, got %d", ErrInvalidAttr, a.NumRunning)
	}
	if a.CurrentTimer == nil {
		return fmt.Errorf("%w: current_timer is required", ErrInvalidAttr)
	}
	return nil
}
