package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
	"github.com/DefoxxAnalytics/versatex-analytics/internal/storage"
)

func newTestPresetStore(t *testing.T) *storage.PresetStore {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	return storage.NewPresetStore(store)
}

func TestFindPreset(t *testing.T) {
	ctx := context.Background()
	store := newTestPresetStore(t)

	q1, err := store.SavePreset(ctx, "Q1 Review", model.NewFilters())
	require.NoError(t, err)
	_, err = store.SavePreset(ctx, "Q2 Review", model.NewFilters())
	require.NoError(t, err)

	t.Run("by exact id", func(t *testing.T) {
		found, err := findPreset(ctx, store, q1.ID)
		require.NoError(t, err)
		assert.Equal(t, q1.ID, found.ID)
	})

	t.Run("by id prefix", func(t *testing.T) {
		found, err := findPreset(ctx, store, q1.ID[:8])
		require.NoError(t, err)
		assert.Equal(t, q1.ID, found.ID)
	})

	t.Run("by name case-insensitive", func(t *testing.T) {
		found, err := findPreset(ctx, store, "q1 review")
		require.NoError(t, err)
		assert.Equal(t, q1.ID, found.ID)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := findPreset(ctx, store, "Q9 Review")
		assert.ErrorContains(t, err, "no preset matches")
	})

	t.Run("ambiguous name", func(t *testing.T) {
		_, err := store.SavePreset(ctx, "Q1 REVIEW", model.NewFilters())
		require.NoError(t, err)

		_, err = findPreset(ctx, store, "Q1 Review")
		assert.ErrorContains(t, err, "matches 2 presets")
	})
}

func TestDescribeMapping(t *testing.T) {
	mapping := model.ColumnMapping{
		"Vendor Name": "Supplier",
		"Total":       "Amount",
		"Notes":       model.IgnoredField,
	}
	assert.Equal(t, "Total→Amount, Vendor Name→Supplier", describeMapping(mapping))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", shortID("1234567890abcdef"))
	assert.Equal(t, "abc", shortID("abc"))
}
