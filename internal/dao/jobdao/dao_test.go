package jobdao

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web3data/pipeline/internal/models"
)

func testJob() models.JobPosting {
	return models.JobPosting{
		Title:       "Senior Solidity Engineer",
		CompanyName: "ChainCo",
		Location:    "Remote",
		Tags:        []string{"solidity", "remote"},
		Source:      "Web3.Career",
		URL:         "https://web3.career/jobs/123",
		ExternalID:  "123",
		IsRemote:    true,
		CollectedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestInsertNewPosting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO job_postings").
		WillReturnResult(sqlmock.NewResult(0, 1))

	dao := New(db)
	inserted, err := dao.Insert(context.Background(), testJob())

	assert.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDuplicateIsSkipped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// ON CONFLICT DO NOTHING reports zero rows affected for duplicates.
	mock.ExpectExec("INSERT INTO job_postings").
		WillReturnResult(sqlmock.NewResult(0, 0))

	dao := New(db)
	inserted, err := dao.Insert(context.Background(), testJob())

	assert.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS job_postings").
		WillReturnResult(sqlmock.NewResult(0, 0))

	dao := New(db)
	assert.NoError(t, dao.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountBySource(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"source", "count"}).
		AddRow("Web3.Career", 120).
		AddRow("CryptoJobsList", 45)
	mock.ExpectQuery("SELECT source, COUNT").WillReturnRows(rows)

	dao := New(db)
	counts, err := dao.CountBySource(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(120), counts["Web3.Career"])
	assert.Equal(t, int64(45), counts["CryptoJobsList"])
}
