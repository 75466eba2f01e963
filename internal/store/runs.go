package store

import (
	"context"
	"fmt"
	"time"
)

// RunRecord is one scan run's history row.
type RunRecord struct {
	ID           string
	GeneratedAt  string
	CompDBDir    string
	OutputPath   string
	UnitsTotal   int
	UnitsScanned int
	UnitsSkipped int
	UnitsFailed  int
	Publishers   int
	Subscribers  int
	Registrars   int
	DirectCalls  int
	Duration     time.Duration
}

// RecordRun inserts a run into the history.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate run ids
// are silently ignored.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scan_runs
		(id, generated_at, compdb_dir, output_path,
		 units_total, units_scanned, units_skipped, units_failed,
		 publishers, subscribers, registrars, direct_calls, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.GeneratedAt,
		rec.CompDBDir,
		rec.OutputPath,
		rec.UnitsTotal,
		rec.UnitsScanned,
		rec.UnitsSkipped,
		rec.UnitsFailed,
		rec.Publishers,
		rec.Subscribers,
		rec.Registrars,
		rec.DirectCalls,
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	return nil
}

// ListRuns returns the most recent runs, newest first. Ordering is
// deterministic: generated_at DESC, then id ASC COLLATE BINARY for
// runs stamped in the same second. limit <= 0 applies a default of 20.
//
// Returns an empty slice (not nil) when the history is empty.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, generated_at, compdb_dir, output_path,
		       units_total, units_scanned, units_skipped, units_failed,
		       publishers, subscribers, registrars, direct_calls, duration_ms
		FROM scan_runs
		ORDER BY generated_at DESC, id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var durationMS int64
		err := rows.Scan(
			&rec.ID,
			&rec.GeneratedAt,
			&rec.CompDBDir,
			&rec.OutputPath,
			&rec.UnitsTotal,
			&rec.UnitsScanned,
			&rec.UnitsSkipped,
			&rec.UnitsFailed,
			&rec.Publishers,
			&rec.Subscribers,
			&rec.Registrars,
			&rec.DirectCalls,
			&durationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if runs == nil {
		runs = []RunRecord{}
	}

	return runs, nil
}
