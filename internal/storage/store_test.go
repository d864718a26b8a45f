package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGetItem(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item := &Item{
		ID:          uuid.NewString(),
		Name:        "iPhone 13",
		Description: "iPhone 13 128GB, minor scratches",
		Condition:   "Good",
		Issues:      "screen scratch",
	}
	require.NoError(t, store.CreateItem(ctx, item))
	assert.False(t, item.CreatedAt.IsZero())

	got, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, "iPhone 13", got.Name)
	assert.Equal(t, "Good", got.Condition)
	assert.Empty(t, got.Price)
}

func TestGetItemMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetItem(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetItemPrice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item := &Item{ID: uuid.NewString(), Description: "leather sofa"}
	require.NoError(t, store.CreateItem(ctx, item))

	require.NoError(t, store.SetItemPrice(ctx, item.ID, "$150", "ebay"))

	got, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "$150", got.Price)
	assert.Equal(t, "ebay", got.PriceSource)

	// Idempotent upsert: writing again just overwrites.
	require.NoError(t, store.SetItemPrice(ctx, item.ID, "$140", "algorithm"))
	got, err = store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "$140", got.Price)
	assert.Equal(t, "algorithm", got.PriceSource)
}

func TestSetItemPriceMissingItem(t *testing.T) {
	store := newTestStore(t)
	err := store.SetItemPrice(context.Background(), "nope", "$50", "default")
	assert.Error(t, err)
}
