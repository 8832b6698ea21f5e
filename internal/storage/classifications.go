package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"htsflow/internal/common"
	"htsflow/internal/model"
)

// WriteClassification upserts the classification metadata for a product.
func (s *SQLiteStorage) WriteClassification(ctx context.Context, productID int64, record model.ClassificationRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO classifications (product_id, hts_code, confidence, rationale, country, source, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(product_id) DO UPDATE SET
			hts_code = excluded.hts_code,
			confidence = excluded.confidence,
			rationale = excluded.rationale,
			country = excluded.country,
			source = excluded.source,
			updated_at = excluded.updated_at`,
		productID, record.HTSCode, record.Confidence, record.Rationale,
		record.Country, string(record.Source), record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to write classification for product %d: %w", productID, err)
	}
	return nil
}

// ReadClassification returns the stored classification for a product, or
// common.ErrNotFound when the product has never been classified.
func (s *SQLiteStorage) ReadClassification(ctx context.Context, productID int64) (model.ClassificationRecord, error) {
	var record model.ClassificationRecord
	var rationale, country sql.NullString
	var source string

	err := s.db.QueryRowContext(ctx,
		`SELECT hts_code, confidence, rationale, country, source, updated_at
		 FROM classifications WHERE product_id = ?`, productID).
		Scan(&record.HTSCode, &record.Confidence, &rationale, &country, &source, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ClassificationRecord{}, common.ErrNotFound
	}
	if err != nil {
		return model.ClassificationRecord{}, fmt.Errorf("failed to read classification for product %d: %w", productID, err)
	}

	record.Rationale = rationale.String
	record.Country = country.String
	record.Source = model.ClassificationSource(source)
	return record, nil
}

// WriteErrorRecord upserts the error record attached to a product. Each
// product carries at most one; a newer failure supersedes the older one.
func (s *SQLiteStorage) WriteErrorRecord(ctx context.Context, productID int64, record model.ErrorRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO error_records (product_id, kind, message, context, attempt_id, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(product_id) DO UPDATE SET
			kind = excluded.kind,
			message = excluded.message,
			context = excluded.context,
			attempt_id = excluded.attempt_id,
			occurred_at = excluded.occurred_at`,
		productID, record.Kind, record.Message, record.Context, record.AttemptID, record.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to write error record for product %d: %w", productID, err)
	}
	return nil
}

// ClearErrorRecord removes the error record for a product, if any.
func (s *SQLiteStorage) ClearErrorRecord(ctx context.Context, productID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM error_records WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("failed to clear error record for product %d: %w", productID, err)
	}
	return nil
}

// GetErrorRecord returns the error record for a product, or
// common.ErrNotFound when none is attached.
func (s *SQLiteStorage) GetErrorRecord(ctx context.Context, productID int64) (model.ErrorRecord, error) {
	var record model.ErrorRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT kind, message, context, attempt_id, occurred_at
		 FROM error_records WHERE product_id = ?`, productID).
		Scan(&record.Kind, &record.Message, &record.Context, &record.AttemptID, &record.OccurredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrorRecord{}, common.ErrNotFound
	}
	if err != nil {
		return model.ErrorRecord{}, fmt.Errorf("failed to read error record for product %d: %w", productID, err)
	}
	return record, nil
}
