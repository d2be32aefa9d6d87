// Package storagetest holds the behaviour every storage.Store driver must
// share.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ScentGo/internal/storage"
)

// Run exercises s against the storage.Store contract. s must start empty.
func Run(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("set get overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "favorite-perfumes-storage", `{"kind":"identifier-set","members":[]}`))
		require.NoError(t, s.Set(ctx, "favorite-perfumes-storage", `{"kind":"identifier-set","members":["x"]}`))

		v, err := s.Get(ctx, "favorite-perfumes-storage")
		require.NoError(t, err)
		assert.Equal(t, `{"kind":"identifier-set","members":["x"]}`, v)
	})

	t.Run("keys by prefix", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "@reviews_2", "[]"))
		require.NoError(t, s.Set(ctx, "@reviews_1", "[]"))
		require.NoError(t, s.Set(ctx, "@reviewsX1", "[]"))

		keys, err := s.Keys(ctx, "@reviews_")
		require.NoError(t, err)
		assert.Equal(t, []string{"@reviews_1", "@reviews_2"}, keys)

		none, err := s.Keys(ctx, "@nothing_")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("multi get skips missing", func(t *testing.T) {
		got, err := s.MultiGet(ctx, []string{"@reviews_1", "missing", "@reviews_2"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"@reviews_1": "[]", "@reviews_2": "[]"}, got)

		empty, err := s.MultiGet(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "@reviews_1"))
		require.NoError(t, s.Delete(ctx, "@reviews_1"))
		_, err := s.Get(ctx, "@reviews_1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}
