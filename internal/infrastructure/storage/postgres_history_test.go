package storage

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CardioSense/internal/domain"
)

var createdAt = time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC)

func sampleEntry() domain.HistoryEntry {
	return domain.HistoryEntry{
		AttemptID:   "0a1b2c3d-0000-4000-8000-000000000001",
		Selection:   domain.SelectBoth,
		RiskTier:    domain.TierHigh,
		Probability: 0.71,
		Delivered:   false,
		CreatedAt:   createdAt,
	}
}

func TestSaveEntryUpserts(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	entry := sampleEntry()
	mock.ExpectExec(`INSERT INTO prediction_history .+ON CONFLICT \(attempt_id\) DO UPDATE`).
		WithArgs(entry.AttemptID, "compare", "High Risk", entry.Probability, false, entry.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresHistory(db)
	require.NoError(t, repo.SaveEntry(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveEntryPropagatesExecError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO prediction_history`).
		WillReturnError(assert.AnError)

	repo := NewPostgresHistory(db)
	err = repo.SaveEntry(context.Background(), sampleEntry())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRecentEntries(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"attempt_id", "model_selection", "risk_level", "probability", "delivered", "created_at"}).
		AddRow("attempt-2", "compare", "High Risk", 0.71, true, createdAt).
		AddRow("attempt-1", "logistic", "Low Risk", 0.12, false, createdAt.Add(-time.Hour))

	mock.ExpectQuery(`SELECT .+ FROM prediction_history ORDER BY created_at DESC LIMIT 2`).
		WillReturnRows(rows)

	repo := NewPostgresHistory(db)
	entries, err := repo.RecentEntries(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "attempt-2", entries[0].AttemptID)
	assert.Equal(t, domain.SelectBoth, entries[0].Selection)
	assert.Equal(t, domain.TierHigh, entries[0].RiskTier)
	assert.True(t, entries[0].Delivered)
	assert.Equal(t, domain.TierLow, entries[1].RiskTier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNilDatabaseIsNoOp(t *testing.T) {
	repo := NewPostgresHistory(nil)

	require.NoError(t, repo.SaveEntry(context.Background(), sampleEntry()))

	entries, err := repo.RecentEntries(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, entries)
}
