package engine

import (
	"context"
	"fmt"
	"log/slog"

	"htsflow/internal/model"
)

// LogNotifier surfaces low-confidence classifications through the
// structured log, composing the same summary the admin alert carries.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// LowConfidence logs an operator alert for a result below the confidence
// threshold.
func (n *LogNotifier) LowConfidence(_ context.Context, snapshot model.ProductSnapshot, result model.ClassificationResult) {
	n.logger.Warn("product classified with low confidence",
		"product_id", snapshot.ID,
		"product", snapshot.Name,
		"sku", snapshot.SKU,
		"hts_code", result.HTSCode,
		"confidence", fmt.Sprintf("%.0f%%", result.Confidence*100),
		"suggestion", "review and correct the code manually if needed")
}
