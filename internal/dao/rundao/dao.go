// Package rundao provides data access for pipeline run records in Postgres.
// One record is written per run; the record follows the run through the
// PENDING -> IN_PROGRESS -> {SUCCESS | FAILED} lifecycle.
package rundao

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
)

// RunStatus represents the current status of a pipeline run.
type RunStatus string

const (
	RunStatusPending    RunStatus = "PENDING"
	RunStatusInProgress RunStatus = "IN_PROGRESS"
	RunStatusSuccess    RunStatus = "SUCCESS"
	RunStatusFailed     RunStatus = "FAILED"
)

// Trigger identifies what started a run.
type Trigger string

const (
	TriggerCron   Trigger = "cron"
	TriggerManual Trigger = "manual"
)

// NewID generates a new run ID. KSUIDs sort chronologically, so run history
// listings come back in creation order without a secondary sort key.
func NewID() string {
	return ksuid.New().String()
}

// Record represents one pipeline run.
type Record struct {
	ID            string
	Trigger       Trigger
	Status        RunStatus
	ErrorMsg      *string
	JobsInserted  int
	PostsInserted int
	PostsAnalyzed int
	CreatedAt     int64  // Unix epoch
	FinishedAt    *int64 // Unix epoch, nil while running
	UpdatedAt     int64  // Unix epoch
}

// Counters are the per-run totals reported by the task suite.
type Counters struct {
	JobsInserted  int
	PostsInserted int
	PostsAnalyzed int
}

// DAO provides data access operations for run records.
type DAO struct {
	db *sql.DB
}

// New creates a new DAO instance.
func New(db *sql.DB) *DAO {
	return &DAO{db: db}
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
    id             TEXT PRIMARY KEY,
    trigger        TEXT NOT NULL,
    status         TEXT NOT NULL,
    error_msg      TEXT,
    jobs_inserted  INTEGER NOT NULL DEFAULT 0,
    posts_inserted INTEGER NOT NULL DEFAULT 0,
    posts_analyzed INTEGER NOT NULL DEFAULT 0,
    created_at     BIGINT NOT NULL,
    finished_at    BIGINT,
    updated_at     BIGINT NOT NULL
)`

// EnsureSchema creates the pipeline_runs table if it does not exist.
func (d *DAO) EnsureSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to ensure pipeline_runs table: %w", err)
	}
	return nil
}

// Create writes a new run record with initial status PENDING.
func (d *DAO) Create(ctx context.Context, id string, trigger Trigger) (Record, error) {
	now := time.Now().Unix()
	record := Record{
		ID:        id,
		Trigger:   trigger,
		Status:    RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, trigger, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		record.ID, record.Trigger, record.Status, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return Record{}, fmt.Errorf("failed to create run record: %w", err)
	}
	return record, nil
}

// Start marks a run as IN_PROGRESS.
func (d *DAO) Start(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE pipeline_runs SET status = $1, updated_at = $2 WHERE id = $3`,
		RunStatusInProgress, time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to start run %s: %w", id, err)
	}
	return nil
}

// Finish records the terminal status, error message, and counters for a run.
func (d *DAO) Finish(ctx context.Context, id string, status RunStatus, errMsg *string, counters Counters) error {
	if status != RunStatusSuccess && status != RunStatusFailed {
		return fmt.Errorf("invalid terminal status: %s", status)
	}

	now := time.Now().Unix()
	_, err := d.db.ExecContext(ctx,
		`UPDATE pipeline_runs
		    SET status = $1, error_msg = $2, jobs_inserted = $3, posts_inserted = $4,
		        posts_analyzed = $5, finished_at = $6, updated_at = $6
		  WHERE id = $7`,
		status, errMsg, counters.JobsInserted, counters.PostsInserted,
		counters.PostsAnalyzed, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (d *DAO) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, trigger, status, error_msg, jobs_inserted, posts_inserted,
		        posts_analyzed, created_at, finished_at, updated_at
		   FROM pipeline_runs ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Trigger, &r.Status, &r.ErrorMsg,
			&r.JobsInserted, &r.PostsInserted, &r.PostsAnalyzed,
			&r.CreatedAt, &r.FinishedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
