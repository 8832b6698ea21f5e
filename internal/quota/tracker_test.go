package quota

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htsflow/internal/model"
)

func TestCanClassifyUnmetered(t *testing.T) {
	store := NewMemoryStore()
	store.SetUsed(1000)
	tracker := NewTracker(store, Plan{Metered: false})

	decision, err := tracker.CanClassify(context.Background())
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, model.UnlimitedClassifications, decision.Limit)
}

func TestCanClassifyMetered(t *testing.T) {
	tests := []struct {
		name        string
		used        int
		limit       int
		wantAllowed bool
	}{
		{name: "fresh counter", used: 0, limit: 25, wantAllowed: true},
		{name: "one remaining", used: 24, limit: 25, wantAllowed: true},
		{name: "at limit", used: 25, limit: 25, wantAllowed: false},
		{name: "past limit", used: 30, limit: 25, wantAllowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			store.SetUsed(tt.used)
			tracker := NewTracker(store, Plan{Metered: true, Limit: tt.limit})

			decision, err := tracker.CanClassify(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, decision.Allowed)
			assert.Equal(t, tt.used, decision.Used)
			assert.Equal(t, tt.limit, decision.Limit)
		})
	}
}

func TestDeniedCarriesUsageNumbers(t *testing.T) {
	store := NewMemoryStore()
	store.SetUsed(25)
	tracker := NewTracker(store, Plan{Metered: true, Limit: 25})

	decision, err := tracker.CanClassify(context.Background())
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 25, decision.Used)
	assert.Equal(t, 25, decision.Limit)
}

func TestIncrement(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tracker := NewTracker(store, Plan{Metered: true, Limit: 25})

	count, err := tracker.Increment(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = tracker.Increment(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	usage, err := store.GetUsage(ctx)
	require.NoError(t, err)
	assert.False(t, usage.LastUsedAt.IsZero())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tracker := NewTracker(store, Plan{Metered: true, Limit: 25})

	_, err := tracker.Increment(ctx)
	require.NoError(t, err)
	require.NoError(t, tracker.Reset(ctx))

	usage, err := store.GetUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Used)
	assert.True(t, usage.LastUsedAt.IsZero())

	decision, err := tracker.CanClassify(ctx)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestDefaultMeteredLimit(t *testing.T) {
	assert.Equal(t, 25, Plan{Metered: true}.EffectiveLimit())
	assert.Equal(t, 10, Plan{Metered: true, Limit: 10}.EffectiveLimit())
	assert.Equal(t, model.UnlimitedClassifications, Plan{Metered: false, Limit: 10}.EffectiveLimit())
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.SetUsed(20)
	tracker := NewTracker(store, Plan{Metered: true, Limit: 25})

	stats, err := tracker.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.Used)
	assert.Equal(t, 25, stats.Limit)
	assert.Equal(t, 5, stats.Remaining)
	assert.InDelta(t, 80.0, stats.PercentUsed, 0.01)
	assert.True(t, stats.Metered)

	unmetered := NewTracker(store, Plan{})
	stats, err = unmetered.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, stats.Metered)
	assert.Equal(t, model.UnlimitedClassifications, stats.Remaining)
}
