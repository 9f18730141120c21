package db

import (
	"fmt"
	"time"
)

// Run is one recorded aggregation stage.
type Run struct {
	RunID        int64
	StartedAt    time.Time
	Strategy     string
	Input        string
	OutputPath   string
	SampleBound  int
	RecordsRead  int
	Sampled      int
	ValidRecords int
	DistinctKeys int
	DurationMS   int64
}

// InsertRun records a completed run and returns its ID.
func (db *DB) InsertRun(r Run) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO runs (strategy, input, output_path, sample_bound,
			records_read, sampled, valid_records, distinct_keys, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Strategy, r.Input, r.OutputPath, r.SampleBound,
		r.RecordsRead, r.Sampled, r.ValidRecords, r.DistinctKeys, r.DurationMS)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT run_id, started_at, strategy, input, output_path, sample_bound,
			records_read, sampled, valid_records, distinct_keys, duration_ms
		FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.Strategy, &r.Input,
			&r.OutputPath, &r.SampleBound, &r.RecordsRead, &r.Sampled,
			&r.ValidRecords, &r.DistinctKeys, &r.DurationMS); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run by ID.
func (db *DB) GetRun(runID int64) (*Run, error) {
	var r Run
	err := db.QueryRow(`
		SELECT run_id, started_at, strategy, input, output_path, sample_bound,
			records_read, sampled, valid_records, distinct_keys, duration_ms
		FROM runs WHERE run_id = ?`, runID).
		Scan(&r.RunID, &r.StartedAt, &r.Strategy, &r.Input,
			&r.OutputPath, &r.SampleBound, &r.RecordsRead, &r.Sampled,
			&r.ValidRecords, &r.DistinctKeys, &r.DurationMS)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", runID, err)
	}
	return &r, nil
}
