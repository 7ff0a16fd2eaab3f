package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/ppc/internal/perf"
)

const runColumns = `
	id, seq, suite, task, mode, num_running, size, seed,
	time_sec, failures, outputs_written, pass, max_time, host, recorded_at`

// ListRuns returns runs matching f, newest first (ORDER BY seq DESC).
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListRuns(ctx context.Context, f Filter) ([]Run, error) {
	var where []string
	var args []any
	if f.Task != "" {
		where = append(where, "task = ?")
		args = append(args, f.Task)
	}
	if f.Mode != "" {
		where = append(where, "mode = ?")
		args = append(args, string(f.Mode))
	}
	if f.Suite != "" {
		where = append(where, "suite = ?")
		args = append(args, f.Suite)
	}

	query := "SELECT" + runColumns + " FROM runs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		if err := s.loadSamples(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// GetRun returns the run with the given ID, or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT"+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}
	if err := s.loadSamples(ctx, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Best returns the passing run of task in mode with the lowest mean
// repetition time. Ties go to the earlier run.
func (s *Store) Best(ctx context.Context, task string, mode perf.Mode) (Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT"+runColumns+`
		FROM runs
		WHERE task = ? AND mode = ? AND pass = 1
		ORDER BY mean_sec ASC, seq ASC
		LIMIT 1
	`, task, string(mode))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: no passing %s run for %s", ErrNotFound, mode, task)
	}
	if err != nil {
		return Run{}, err
	}
	if err := s.loadSamples(ctx, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run        Run
		mode       string
		seed       int64
		hostJSON   string
		recordedAt string
	)
	err := sc.Scan(
		&run.ID,
		&run.Seq,
		&run.Suite,
		&run.Results.Name,
		&mode,
		&run.Results.NumRunning,
		&run.Size,
		&seed,
		&run.Results.TimeSec,
		&run.Results.Failures,
		&run.Results.OutputsWritten,
		&run.Results.Pass,
		&run.Results.MaxTime,
		&hostJSON,
		&recordedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.Results.Mode = perf.Mode(mode)
	run.Seed = uint64(seed)
	if run.Host, err = unmarshalHost(hostJSON); err != nil {
		return Run{}, fmt.Errorf("scan run %s: %w", run.ID, err)
	}
	if run.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
		return Run{}, fmt.Errorf("scan run %s: recorded_at: %w", run.ID, err)
	}
	return run, nil
}

func (s *Store) loadSamples(ctx context.Context, run *Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sec FROM samples WHERE run_id = ? ORDER BY idx ASC`, run.ID)
	if err != nil {
		return fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sec float64
		if err := rows.Scan(&sec); err != nil {
			return fmt.Errorf("scan sample: %w", err)
		}
		run.Results.Samples = append(run.Results.Samples, sec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate samples: %w", err)
	}
	return nil
}
