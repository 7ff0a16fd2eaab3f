package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// WriteRun inserts run and its samples in one transaction.
// It assigns run.ID, run.Seq and run.RecordedAt.
//
// Only populated results can be stored.
func (s *Store) WriteRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("write run: nil run")
	}
	if !run.Results.Populated() {
		return fmt.Errorf("write run: results not populated")
	}

	hostJSON, err := marshalHost(run.Host)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return fmt.Errorf("write run: next seq: %w", err)
	}

	id := s.ids.Generate()
	recordedAt := s.clock().UTC()
	r := run.Results
	st := r.Stats()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, suite, task, mode, num_running, size, seed,
		 time_sec, mean_sec, stdev_sec, min_sec, max_sec,
		 failures, outputs_written, pass, max_time, host, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		seq,
		run.Suite,
		r.Name,
		string(r.Mode),
		r.NumRunning,
		run.Size,
		int64(run.Seed),
		r.TimeSec,
		st.Mean,
		st.Stdev,
		st.Min,
		st.Max,
		r.Failures,
		r.OutputsWritten,
		r.Pass,
		r.MaxTime,
		hostJSON,
		recordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	for i, sec := range r.Samples {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO samples (run_id, idx, sec) VALUES (?, ?, ?)`,
			id, i, sec,
		); err != nil {
			return fmt.Errorf("write run: sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}

	run.ID = id
	run.Seq = seq
	run.RecordedAt = recordedAt
	return nil
}
