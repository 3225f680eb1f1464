package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run statuses
const (
	StatusOK      = "ok"
	StatusStalled = "stalled"
	StatusFailed  = "failed"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// Run is one generation attempt as recorded in the history.
type Run struct {
	ID        int64
	Seed      int64
	RoomCount int // requested
	Placed    int // rooms actually placed
	Attempts  int
	Status    string
	Error     string
	Source    string // "cli", "server" ...
	CreatedAt time.Time
}

// RunStats summarizes the history.
type RunStats struct {
	Total   int
	ByState map[string]int
}

// RecordRun inserts run and returns its id. A zero CreatedAt is set to now.
func (d *Database) RecordRun(ctx context.Context, run *Run) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.Status == "" {
		return 0, fmt.Errorf("run has no status")
	}

	query := d.qb.BuildWithReturning(
		`INSERT INTO runs (seed, room_count, placed, attempts, status, error, source, created_unix)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, "id")
	args := []any{run.Seed, run.RoomCount, run.Placed, run.Attempts, run.Status, run.Error, run.Source, run.CreatedAt.UnixNano()}

	var id int64
	if d.dialect.SupportsLastInsertID() {
		result, err := d.db.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to get run ID: %w", err)
		}
	} else {
		if err := d.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
	}

	run.ID = id
	return id, nil
}

const runColumns = "id, seed, room_count, placed, attempts, status, error, source, created_unix"

// GetRun loads a single run by id.
func (d *Database) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := d.db.QueryRowContext(ctx, d.qb.Build("SELECT "+runColumns+" FROM runs WHERE id = ?"), id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. status filters when
// non-empty; limit <= 0 means 20.
func (d *Database) ListRuns(ctx context.Context, status string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := "SELECT " + runColumns + " FROM runs"
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_unix DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, d.qb.Build(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Stats counts runs per status.
func (d *Database) Stats(ctx context.Context) (*RunStats, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM runs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to query run stats: %w", err)
	}
	defer rows.Close()

	stats := &RunStats{ByState: make(map[string]int)}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan run stats: %w", err)
		}
		stats.ByState[status] = count
		stats.Total += count
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var created int64
	if err := s.Scan(&run.ID, &run.Seed, &run.RoomCount, &run.Placed, &run.Attempts,
		&run.Status, &run.Error, &run.Source, &created); err != nil {
		return nil, err
	}
	run.CreatedAt = time.Unix(0, created)
	return &run, nil
}
