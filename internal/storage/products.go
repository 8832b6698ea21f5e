package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"htsflow/internal/common"
	"htsflow/internal/model"
)

// AddProduct stores a new product and returns its assigned ID.
func (s *SQLiteStorage) AddProduct(ctx context.Context, snapshot model.ProductSnapshot) (int64, error) {
	if snapshot.Name == "" {
		return 0, fmt.Errorf("product name must not be empty")
	}

	categories, err := encodeStrings(snapshot.Categories)
	if err != nil {
		return 0, err
	}
	tags, err := encodeStrings(snapshot.Tags)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (name, description, short_description, sku, categories, tags, price, weight)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snapshot.Name, snapshot.Description, snapshot.ShortDescription, snapshot.SKU,
		categories, tags, snapshot.Price, snapshot.Weight)
	if err != nil {
		return 0, fmt.Errorf("failed to insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read product id: %w", err)
	}
	return id, nil
}

// GetProductSnapshot assembles the read-only view the classifier consumes.
func (s *SQLiteStorage) GetProductSnapshot(ctx context.Context, productID int64) (model.ProductSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, short_description, sku, categories, tags, price, weight
		 FROM products WHERE id = ?`, productID)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProductSnapshot{}, common.ErrProductNotFound
	}
	if err != nil {
		return model.ProductSnapshot{}, fmt.Errorf("failed to load product %d: %w", productID, err)
	}
	return snapshot, nil
}

// ListProducts returns all products in insertion order.
func (s *SQLiteStorage) ListProducts(ctx context.Context) ([]model.ProductSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, short_description, sku, categories, tags, price, weight
		 FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []model.ProductSnapshot
	for rows.Next() {
		snapshot, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan product: %w", scanErr)
		}
		products = append(products, snapshot)
	}
	return products, rows.Err()
}

// ListUnclassifiedIDs returns product IDs with no stored HTS code, oldest
// first, capped at limit when limit is positive.
func (s *SQLiteStorage) ListUnclassifiedIDs(ctx context.Context, limit int) ([]int64, error) {
	query := `SELECT p.id FROM products p
		LEFT JOIN classifications c ON c.product_id = p.id
		WHERE c.product_id IS NULL OR c.hts_code = ''
		ORDER BY p.id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list unclassified products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("failed to scan product id: %w", scanErr)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (model.ProductSnapshot, error) {
	var snapshot model.ProductSnapshot
	var description, shortDescription, sku, categories, tags sql.NullString

	if err := row.Scan(&snapshot.ID, &snapshot.Name, &description, &shortDescription,
		&sku, &categories, &tags, &snapshot.Price, &snapshot.Weight); err != nil {
		return model.ProductSnapshot{}, err
	}

	snapshot.Description = description.String
	snapshot.ShortDescription = shortDescription.String
	snapshot.SKU = sku.String

	var err error
	if snapshot.Categories, err = decodeStrings(categories.String); err != nil {
		return model.ProductSnapshot{}, err
	}
	if snapshot.Tags, err = decodeStrings(tags.String); err != nil {
		return model.ProductSnapshot{}, err
	}
	return snapshot, nil
}

func encodeStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(encoded), nil
}

func decodeStrings(encoded string) ([]string, error) {
	if encoded == "" || encoded == "[]" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(encoded), &values); err != nil {
		return nil, fmt.Errorf("failed to decode string list: %w", err)
	}
	return values, nil
}
