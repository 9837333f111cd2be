// Package jobdao provides data access for job postings in Postgres.
package jobdao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/web3data/pipeline/internal/models"
)

// DAO provides data access operations for the job_postings table.
type DAO struct {
	db *sql.DB
}

// New creates a new DAO instance backed by the given database handle.
func New(db *sql.DB) *DAO {
	return &DAO{db: db}
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS job_postings (
    id                SERIAL PRIMARY KEY,
    title             TEXT NOT NULL,
    company_name      TEXT,
    location          TEXT,
    salary_range      TEXT,
    tags              TEXT[],
    source            TEXT NOT NULL,
    job_url           TEXT NOT NULL UNIQUE,
    description       TEXT,
    external_id       TEXT,
    is_remote         BOOLEAN,
    date_posted_epoch BIGINT,
    raw_api_response  JSONB,
    collected_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the job_postings table if it does not exist.
func (d *DAO) EnsureSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to ensure job_postings table: %w", err)
	}
	return nil
}

const insertSQL = `
INSERT INTO job_postings (
    title, company_name, location, salary_range, tags, source,
    job_url, description, external_id, is_remote, date_posted_epoch,
    raw_api_response, collected_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (job_url) DO NOTHING`

// Insert writes a single job posting. It returns false when the posting was
// skipped because a row with the same job_url already exists.
func (d *DAO) Insert(ctx context.Context, job models.JobPosting) (bool, error) {
	var raw any
	if job.RawResponse != "" {
		raw = job.RawResponse
	}

	result, err := d.db.ExecContext(ctx, insertSQL,
		job.Title,
		nullable(job.CompanyName),
		nullable(job.Location),
		nullable(job.SalaryRange),
		pq.Array(job.Tags),
		job.Source,
		job.URL,
		nullable(job.Description),
		nullable(job.ExternalID),
		job.IsRemote,
		nullableInt(job.PostedEpoch),
		raw,
		job.CollectedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert job posting %s: %w", job.URL, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return rows > 0, nil
}

// CountBySource returns the number of stored postings per source.
func (d *DAO) CountBySource(ctx context.Context) (map[string]int64, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM job_postings GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to count job postings: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var source string
		var n int64
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("failed to scan job posting count: %w", err)
		}
		counts[source] = n
	}
	return counts, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}
