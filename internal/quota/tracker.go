// Package quota gates classification attempts against the tenant's plan limit.
package quota

import (
	"context"
	"fmt"
	"time"

	"htsflow/internal/model"
)

// DefaultMeteredLimit is the classification allowance on a metered plan.
const DefaultMeteredLimit = 25

// Store persists the usage counter. Implementations decide their own
// concurrency guarantees; IncrementUsage should be atomic where the backing
// store can provide it.
type Store interface {
	GetUsage(ctx context.Context) (model.Usage, error)
	IncrementUsage(ctx context.Context) (model.Usage, error)
	ResetUsage(ctx context.Context) error
}

// Plan describes the tenant's classification tier.
type Plan struct {
	Metered bool
	Limit   int
}

// EffectiveLimit returns the plan's limit, or the unlimited sentinel on an
// unmetered plan.
func (p Plan) EffectiveLimit() int {
	if !p.Metered {
		return model.UnlimitedClassifications
	}
	if p.Limit <= 0 {
		return DefaultMeteredLimit
	}
	return p.Limit
}

// Decision is the outcome of a quota check. A denied decision carries the
// usage numbers so callers can render a precise message.
type Decision struct {
	Allowed bool
	Used    int
	Limit   int
}

// Stats is a reporting view of the usage counter.
type Stats struct {
	LastUsedAt  time.Time
	Used        int
	Limit       int
	Remaining   int
	PercentUsed float64
	Metered     bool
}

// Tracker enforces the plan limit over an injected Store.
type Tracker struct {
	store Store
	plan  Plan
}

// NewTracker creates a quota tracker for the given plan.
func NewTracker(store Store, plan Plan) *Tracker {
	return &Tracker{store: store, plan: plan}
}

// CanClassify reports whether another classification is allowed. Unmetered
// plans are always allowed; metered plans are denied once the counter
// reaches the limit.
func (t *Tracker) CanClassify(ctx context.Context) (Decision, error) {
	limit := t.plan.EffectiveLimit()
	if limit == model.UnlimitedClassifications {
		return Decision{Allowed: true, Limit: limit}, nil
	}

	usage, err := t.store.GetUsage(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to read usage: %w", err)
	}

	if usage.Used >= limit {
		return Decision{Allowed: false, Used: usage.Used, Limit: limit}, nil
	}
	return Decision{Allowed: true, Used: usage.Used, Limit: limit}, nil
}

// Increment records one consumed classification and returns the new count.
// The orchestrator calls this exactly once per confirmed success on a
// metered plan, never on failed attempts.
func (t *Tracker) Increment(ctx context.Context) (int, error) {
	usage, err := t.store.IncrementUsage(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}
	return usage.Used, nil
}

// Reset restores the counter to zero and clears the last-used timestamp.
// Reserved for administrative use.
func (t *Tracker) Reset(ctx context.Context) error {
	return t.store.ResetUsage(ctx)
}

// Stats returns the current usage statistics for reporting.
func (t *Tracker) Stats(ctx context.Context) (Stats, error) {
	usage, err := t.store.GetUsage(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read usage: %w", err)
	}

	limit := t.plan.EffectiveLimit()
	stats := Stats{
		Used:       usage.Used,
		Limit:      limit,
		Remaining:  model.UnlimitedClassifications,
		LastUsedAt: usage.LastUsedAt,
		Metered:    limit != model.UnlimitedClassifications,
	}
	if stats.Metered {
		stats.Remaining = limit - usage.Used
		if stats.Remaining < 0 {
			stats.Remaining = 0
		}
		stats.PercentUsed = float64(usage.Used) / float64(limit) * 100
	}
	return stats, nil
}
