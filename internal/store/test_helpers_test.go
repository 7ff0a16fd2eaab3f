package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/ppc/internal/perf"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// createTestStore opens a store in a temp dir with deterministic IDs and clock.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(NewFixedGenerator(ids...)),
		WithClock(func() time.Time { return fixedTime }),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun builds a populated, passing run whose repetitions all take sec.
func createTestRun(task string, mode perf.Mode, n int, sec float64) *Run {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = sec
	}
	return &Run{
		Size: 100,
		Seed: 1,
		Results: perf.Results{
			Name:           task,
			Mode:           mode,
			NumRunning:     n,
			TimeSec:        sec * float64(n),
			Samples:        samples,
			OutputsWritten: true,
			MaxTime:        perf.DefaultMaxTime,
			Pass:           true,
		},
	}
}
