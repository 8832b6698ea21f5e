// Package engine sequences the classification pipeline: quota gate, prompt
// build, provider call, validation, persistence, and confidence policy.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"htsflow/internal/common"
	"htsflow/internal/llm"
	"htsflow/internal/model"
	"htsflow/internal/prompt"
	"htsflow/internal/quota"
)

// DefaultConfidenceThreshold triggers an admin notification when a result
// scores below it.
const DefaultConfidenceThreshold = 0.60

// Config holds orchestration policy settings.
type Config struct {
	Country             string
	ConfidenceThreshold float64
	Plan                quota.Plan
}

// Engine is the classification orchestrator.
type Engine struct {
	catalog   Catalog
	tracker   *quota.Tracker
	client    llm.Client
	notifier  Notifier
	logger    *slog.Logger
	country   string
	threshold float64
	metered   bool
	now       func() time.Time
}

// New creates a classification engine.
func New(catalog Catalog, tracker *quota.Tracker, client llm.Client, notifier Notifier, cfg Config, logger *slog.Logger) *Engine {
	threshold := cfg.ConfidenceThreshold
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}

	country := cfg.Country
	if country == "" {
		country = model.DefaultCountryOfOrigin
	}

	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}

	return &Engine{
		catalog:   catalog,
		tracker:   tracker,
		client:    client,
		notifier:  notifier,
		logger:    logger,
		country:   country,
		threshold: threshold,
		metered:   cfg.Plan.Metered,
		now:       time.Now,
	}
}

// ClassifyProduct runs one classification attempt for a product. The attempt
// is atomic from the caller's perspective: nothing is persisted or counted
// unless the full pipeline succeeds. Unexpected faults are normalized to a
// ClassificationFailed outcome instead of escaping as panics.
func (e *Engine) ClassifyProduct(ctx context.Context, productID int64) (outcome Outcome) {
	attemptID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("classification panic recovered",
				"product_id", productID,
				"attempt_id", attemptID,
				"panic", r)
			outcome = e.fail(ctx, productID, attemptID, fmt.Errorf("%w: internal fault: %v", common.ErrClassificationFailed, r))
		}
	}()

	snapshot, err := e.catalog.GetProductSnapshot(ctx, productID)
	if err != nil {
		if !errors.Is(err, common.ErrProductNotFound) {
			err = fmt.Errorf("%w: %v", common.ErrProductNotFound, err)
		}
		return e.fail(ctx, productID, attemptID, err)
	}

	decision, err := e.tracker.CanClassify(ctx)
	if err != nil {
		return e.fail(ctx, productID, attemptID, err)
	}
	if !decision.Allowed {
		e.logger.Info("classification denied by usage limit",
			"product_id", productID,
			"attempt_id", attemptID,
			"used", decision.Used,
			"limit", decision.Limit)
		return Outcome{Status: StatusDenied, AttemptID: attemptID, ProductID: productID, Denied: decision}
	}

	p, err := prompt.Build(snapshot)
	if err != nil {
		return e.fail(ctx, productID, attemptID, err)
	}

	raw, err := e.client.Classify(ctx, p)
	if err != nil {
		return e.fail(ctx, productID, attemptID, err)
	}

	result, err := llm.ParseReply(raw)
	if err != nil {
		return e.fail(ctx, productID, attemptID, err)
	}

	record := model.ClassificationRecord{
		HTSCode:    result.HTSCode,
		Confidence: result.Confidence,
		Rationale:  result.Rationale,
		UpdatedAt:  e.now(),
		Country:    e.country,
		Source:     model.SourceAI,
	}
	if err := e.catalog.WriteClassification(ctx, productID, record); err != nil {
		return e.fail(ctx, productID, attemptID, fmt.Errorf("%w: failed to persist result: %v", common.ErrClassificationFailed, err))
	}

	if e.metered {
		count, incErr := e.tracker.Increment(ctx)
		if incErr != nil {
			// The classification is already persisted; losing one counter
			// tick overshoots the soft limit at worst.
			e.logger.Warn("failed to record usage after classification",
				"product_id", productID,
				"attempt_id", attemptID,
				"error", incErr)
		} else {
			e.logger.Debug("usage recorded", "used", count)
		}
	}

	if clearErr := e.catalog.ClearErrorRecord(ctx, productID); clearErr != nil {
		e.logger.Warn("failed to clear error record",
			"product_id", productID,
			"error", clearErr)
	}

	if result.Confidence < e.threshold {
		e.notifier.LowConfidence(ctx, snapshot, result)
	}

	e.logger.Info("product classified",
		"product_id", productID,
		"attempt_id", attemptID,
		"hts_code", result.HTSCode,
		"confidence", result.Confidence)

	return Outcome{Status: StatusSuccess, AttemptID: attemptID, ProductID: productID, Result: result}
}

// fail builds a failure outcome and leaves an error record for operators.
// Denied is not a failure and never reaches here.
func (e *Engine) fail(ctx context.Context, productID int64, attemptID string, err error) Outcome {
	kind := common.KindOf(err)
	message, _ := kind.UserMessage()

	e.logger.Error("classification attempt failed",
		"product_id", productID,
		"attempt_id", attemptID,
		"kind", string(kind),
		"error", err)

	if kind != common.KindProductNotFound {
		record := model.ErrorRecord{
			Kind:       string(kind),
			Message:    message,
			Context:    err.Error(),
			AttemptID:  attemptID,
			OccurredAt: e.now(),
		}
		if recErr := e.catalog.WriteErrorRecord(ctx, productID, record); recErr != nil {
			e.logger.Warn("failed to write error record",
				"product_id", productID,
				"error", recErr)
		}
	}

	return Outcome{
		Status:    StatusFailed,
		AttemptID: attemptID,
		ProductID: productID,
		Failure:   Failure{Kind: kind, Message: message, Context: err.Error()},
	}
}

// NeedsClassification reports whether a product has no stored HTS code yet.
func (e *Engine) NeedsClassification(ctx context.Context, productID int64) (bool, error) {
	record, err := e.catalog.ReadClassification(ctx, productID)
	if errors.Is(err, common.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return record.HTSCode == "", nil
}

// ClassifyBatch runs the per-item pipeline for each product with a bounded
// worker pool. Items are fully independent: one failure neither aborts nor
// rolls back the others. Outcomes are returned in input order.
func (e *Engine) ClassifyBatch(ctx context.Context, productIDs []int64, workers int) []Outcome {
	if workers <= 0 {
		workers = 1
	}

	outcomes := make([]Outcome, len(productIDs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, id := range productIDs {
		wg.Add(1)
		go func(idx int, productID int64) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				outcomes[idx] = Outcome{
					Status:    StatusFailed,
					ProductID: productID,
					Failure: Failure{
						Kind:    common.KindClassificationFailed,
						Message: "classification canceled",
						Context: ctx.Err().Error(),
					},
				}
				return
			}

			outcomes[idx] = e.ClassifyProduct(ctx, productID)
		}(i, id)
	}

	wg.Wait()
	return outcomes
}
