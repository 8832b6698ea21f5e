package engine

import (
	"context"

	"htsflow/internal/model"
)

// Catalog is the product store the engine classifies against. Snapshot
// lookups return common.ErrProductNotFound for unknown products;
// ReadClassification returns common.ErrNotFound for unclassified ones.
type Catalog interface {
	GetProductSnapshot(ctx context.Context, productID int64) (model.ProductSnapshot, error)
	WriteClassification(ctx context.Context, productID int64, record model.ClassificationRecord) error
	ReadClassification(ctx context.Context, productID int64) (model.ClassificationRecord, error)
	WriteErrorRecord(ctx context.Context, productID int64, record model.ErrorRecord) error
	ClearErrorRecord(ctx context.Context, productID int64) error
}

// Notifier receives low-confidence alerts. Implementations must not block
// the classification flow on delivery failures.
type Notifier interface {
	LowConfidence(ctx context.Context, snapshot model.ProductSnapshot, result model.ClassificationResult)
}
