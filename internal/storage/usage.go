package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"htsflow/internal/model"
)

// GetUsage returns the persisted usage counter.
func (s *SQLiteStorage) GetUsage(ctx context.Context) (model.Usage, error) {
	var usage model.Usage
	var lastUsed sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT used, last_used_at FROM usage_counter WHERE id = 1`).
		Scan(&usage.Used, &lastUsed)
	if err != nil {
		return model.Usage{}, fmt.Errorf("failed to read usage counter: %w", err)
	}

	if lastUsed.Valid {
		usage.LastUsedAt = lastUsed.Time
	}
	return usage, nil
}

// IncrementUsage bumps the counter by one in a single guarded UPDATE so
// concurrent classifiers never lose a tick, and returns the new state.
func (s *SQLiteStorage) IncrementUsage(ctx context.Context) (model.Usage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Usage{}, fmt.Errorf("failed to begin usage transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE usage_counter SET used = used + 1, last_used_at = ? WHERE id = 1`, now); err != nil {
		return model.Usage{}, fmt.Errorf("failed to increment usage counter: %w", err)
	}

	var usage model.Usage
	if err := tx.QueryRowContext(ctx,
		`SELECT used FROM usage_counter WHERE id = 1`).Scan(&usage.Used); err != nil {
		return model.Usage{}, fmt.Errorf("failed to read usage counter: %w", err)
	}
	usage.LastUsedAt = now

	if err := tx.Commit(); err != nil {
		return model.Usage{}, fmt.Errorf("failed to commit usage increment: %w", err)
	}
	return usage, nil
}

// ResetUsage restores the counter to zero and clears the last-used time.
func (s *SQLiteStorage) ResetUsage(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE usage_counter SET used = 0, last_used_at = NULL WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to reset usage counter: %w", err)
	}
	return nil
}
