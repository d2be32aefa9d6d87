package review

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ScentGo/internal/domain"
	"github.com/utafrali/ScentGo/internal/storage/memory"
	"github.com/utafrali/ScentGo/pkg/logger"
)

func TestCache_LoadMissingIsEmpty(t *testing.T) {
	c := NewCache(memory.New(), logger.Discard())
	got, err := c.Load(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCache_AppendAndAll(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	c := NewCache(kv, logger.Discard())

	_, err := c.Append(ctx, domain.Review{ID: "local_1", PerfumeID: "p1"})
	require.NoError(t, err)
	list, err := c.Append(ctx, domain.Review{ID: "local_2", PerfumeID: "p1"})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	_, err = c.Append(ctx, domain.Review{ID: "local_3", PerfumeID: "p2"})
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "favorite-perfumes-storage", "{}"))

	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"local_1", "local_2", "local_3"}, ids(all))

	keys, err := kv.Keys(ctx, CacheKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"@reviews_p1", "@reviews_p2"}, keys)
}

func TestCache_AllSkipsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Set(ctx, Key("bad"), "not json"))
	require.NoError(t, kv.Set(ctx, Key("good"), `[{"id":"local_1","perfume_id":"good"}]`))

	var buf bytes.Buffer
	c := NewCache(kv, logger.NewWithWriter("test", "warn", &buf))
	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"local_1"}, ids(all))
	assert.Contains(t, buf.String(), "skipping corrupt review cache")

	_, err = c.Load(ctx, "bad")
	assert.Error(t, err)
}
