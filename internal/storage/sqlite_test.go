package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htsflow/internal/common"
	"htsflow/internal/model"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestProductRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	id, err := s.AddProduct(ctx, model.ProductSnapshot{
		Name:             "Wool Scarf",
		Description:      "100% wool scarf",
		ShortDescription: "Warm scarf",
		SKU:              "SCARF-01",
		Categories:       []string{"Accessories", "Winter"},
		Tags:             []string{"wool"},
		Price:            29.99,
		Weight:           0.2,
	})
	require.NoError(t, err)
	require.Positive(t, id)

	snapshot, err := s.GetProductSnapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, snapshot.ID)
	assert.Equal(t, "Wool Scarf", snapshot.Name)
	assert.Equal(t, "SCARF-01", snapshot.SKU)
	assert.Equal(t, []string{"Accessories", "Winter"}, snapshot.Categories)
	assert.Equal(t, []string{"wool"}, snapshot.Tags)
	assert.InDelta(t, 29.99, snapshot.Price, 0.001)
}

func TestAddProductRequiresName(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.AddProduct(context.Background(), model.ProductSnapshot{})
	require.Error(t, err)
}

func TestGetProductSnapshotNotFound(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.GetProductSnapshot(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrProductNotFound)
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	for _, name := range []string{"Wool Scarf", "Ceramic Mug", "Oak Desk"} {
		_, err := s.AddProduct(ctx, model.ProductSnapshot{Name: name})
		require.NoError(t, err)
	}

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Wool Scarf", products[0].Name)
	assert.Equal(t, "Oak Desk", products[2].Name)
}

func TestListUnclassifiedIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	var ids []int64
	for _, name := range []string{"Wool Scarf", "Ceramic Mug", "Oak Desk"} {
		id, err := s.AddProduct(ctx, model.ProductSnapshot{Name: name})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, s.WriteClassification(ctx, ids[1], model.ClassificationRecord{
		HTSCode:   "6912.00.4810",
		Source:    model.SourceAI,
		UpdatedAt: time.Now(),
	}))

	unclassified, err := s.ListUnclassifiedIDs(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], ids[2]}, unclassified)

	limited, err := s.ListUnclassifiedIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0]}, limited)
}

func TestClassificationUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	id, err := s.AddProduct(ctx, model.ProductSnapshot{Name: "Wool Scarf"})
	require.NoError(t, err)

	_, err = s.ReadClassification(ctx, id)
	assert.ErrorIs(t, err, common.ErrNotFound)

	first := model.ClassificationRecord{
		HTSCode:    "6117.10.2000",
		Confidence: 0.92,
		Rationale:  "Knit wool accessory",
		Country:    "CA",
		Source:     model.SourceAI,
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.WriteClassification(ctx, id, first))

	record, err := s.ReadClassification(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.HTSCode, record.HTSCode)
	assert.InDelta(t, first.Confidence, record.Confidence, 0.001)
	assert.Equal(t, first.Rationale, record.Rationale)
	assert.Equal(t, "CA", record.Country)
	assert.Equal(t, model.SourceAI, record.Source)

	second := first
	second.HTSCode = "6214.20.0000"
	second.Source = model.SourceManual
	require.NoError(t, s.WriteClassification(ctx, id, second))

	record, err = s.ReadClassification(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "6214.20.0000", record.HTSCode)
	assert.Equal(t, model.SourceManual, record.Source)
}

func TestErrorRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	id, err := s.AddProduct(ctx, model.ProductSnapshot{Name: "Wool Scarf"})
	require.NoError(t, err)

	_, err = s.GetErrorRecord(ctx, id)
	assert.ErrorIs(t, err, common.ErrNotFound)

	first := model.ErrorRecord{
		Kind:       string(common.KindRateLimited),
		Message:    "Too many requests",
		Context:    "status 429",
		AttemptID:  "attempt-1",
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, s.WriteErrorRecord(ctx, id, first))

	record, err := s.GetErrorRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.Kind, record.Kind)
	assert.Equal(t, "attempt-1", record.AttemptID)

	// A newer failure replaces the old record rather than stacking.
	second := first
	second.Kind = string(common.KindNetworkError)
	second.AttemptID = "attempt-2"
	require.NoError(t, s.WriteErrorRecord(ctx, id, second))

	record, err = s.GetErrorRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(common.KindNetworkError), record.Kind)
	assert.Equal(t, "attempt-2", record.AttemptID)

	require.NoError(t, s.ClearErrorRecord(ctx, id))
	_, err = s.GetErrorRecord(ctx, id)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Clearing an absent record is not an error.
	require.NoError(t, s.ClearErrorRecord(ctx, id))
}

func TestUsageCounter(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	usage, err := s.GetUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Used)
	assert.True(t, usage.LastUsedAt.IsZero())

	usage, err = s.IncrementUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, usage.Used)
	assert.False(t, usage.LastUsedAt.IsZero())

	usage, err = s.IncrementUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Used)

	require.NoError(t, s.ResetUsage(ctx))
	usage, err = s.GetUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Used)
	assert.True(t, usage.LastUsedAt.IsZero())
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))

	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}
