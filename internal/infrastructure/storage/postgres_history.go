package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"CardioSense/internal/domain"
	"CardioSense/internal/ports"
)

// PostgresHistory persists prediction audit entries into Postgres. It is
// entirely optional bookkeeping: a nil db makes every call a no-op.
type PostgresHistory struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.HistoryRepository = (*PostgresHistory)(nil)

// NewPostgresHistory wires a sql.DB implementation.
func NewPostgresHistory(db *sql.DB) *PostgresHistory {
	return &PostgresHistory{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveEntry upserts the audit snapshot keyed by attempt ID, so the delivery
// follow-up for the same attempt updates the original row.
func (r *PostgresHistory) SaveEntry(ctx context.Context, entry domain.HistoryEntry) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("prediction_history").
		Columns("attempt_id", "model_selection", "risk_level", "probability", "delivered", "created_at").
		Values(entry.AttemptID, string(entry.Selection), entry.RiskTier.String(), entry.Probability, entry.Delivered, entry.CreatedAt).
		Suffix(`ON CONFLICT (attempt_id) DO UPDATE
		        SET delivered = EXCLUDED.delivered`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert history entry: %w", err)
	}
	return nil
}

// RecentEntries returns the newest audit entries, newest first.
func (r *PostgresHistory) RecentEntries(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if r.db == nil || limit <= 0 {
		return nil, nil
	}

	query, args, err := r.builder.
		Select("attempt_id", "model_selection", "risk_level", "probability", "delivered", "created_at").
		From("prediction_history").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var (
			entry     domain.HistoryEntry
			selection string
			riskLabel string
		)
		if err := rows.Scan(&entry.AttemptID, &selection, &riskLabel, &entry.Probability, &entry.Delivered, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entry.Selection = domain.ModelSelection(selection)
		if tier, ok := domain.ParseRiskTier(riskLabel); ok {
			entry.RiskTier = tier
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return entries, nil
}
