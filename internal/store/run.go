package store

import (
	"errors"
	"time"

	"github.com/roach88/ppc/internal/hostinfo"
	"github.com/roach88/ppc/internal/perf"
)

// ErrNotFound is returned when no run matches a lookup.
var ErrNotFound = errors.New("run not found")

// Run is one stored benchmark run.
type Run struct {
	// ID, Seq and RecordedAt are assigned by WriteRun.
	ID         string
	Seq        int64
	RecordedAt time.Time

	// Suite is empty for runs started outside a suite.
	Suite string
	Size  int
	Seed  uint64

	Results perf.Results
	Host    *hostinfo.Info
}

// Filter narrows ListRuns. Zero fields match everything.
type Filter struct {
	Task  string
	Mode  perf.Mode
	Suite string

	// Limit caps the number of runs returned; 0 means no limit.
	Limit int
}
