package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/ScentGo/internal/domain"
	"github.com/utafrali/ScentGo/internal/storage"
)

// CacheKeyPrefix namespaces per-perfume review lists in local storage.
const CacheKeyPrefix = "@reviews_"

// Cache keeps locally drafted reviews, one JSON list per perfume.
type Cache struct {
	kv     storage.Store
	logger *slog.Logger
}

// NewCache creates a review cache over kv.
func NewCache(kv storage.Store, logger *slog.Logger) *Cache {
	return &Cache{kv: kv, logger: logger}
}

// Key returns the storage key of a perfume's review list.
func Key(perfumeID string) string {
	return CacheKeyPrefix + perfumeID
}

// Load returns the cached reviews of one perfume. A missing key is an empty list.
func (c *Cache) Load(ctx context.Context, perfumeID string) ([]domain.Review, error) {
	raw, err := c.kv.Get(ctx, Key(perfumeID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []domain.Review{}, nil
		}
		return nil, fmt.Errorf("load cached reviews for %s: %w", perfumeID, err)
	}
	reviews, err := decodeList(raw)
	if err != nil {
		return nil, fmt.Errorf("load cached reviews for %s: %w", perfumeID, err)
	}
	return reviews, nil
}

// Save replaces the cached list of one perfume.
func (c *Cache) Save(ctx context.Context, perfumeID string, reviews []domain.Review) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("encode cached reviews: %w", err)
	}
	if err := c.kv.Set(ctx, Key(perfumeID), string(data)); err != nil {
		return fmt.Errorf("save cached reviews for %s: %w", perfumeID, err)
	}
	return nil
}

// Append adds rv to the cached list of its perfume and returns the new list.
func (c *Cache) Append(ctx context.Context, rv domain.Review) ([]domain.Review, error) {
	reviews, err := c.Load(ctx, rv.PerfumeID)
	if err != nil {
		return nil, err
	}
	reviews = append(reviews, rv)
	if err := c.Save(ctx, rv.PerfumeID, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// All returns the cached reviews of every perfume. Unreadable lists are
// logged and skipped.
func (c *Cache) All(ctx context.Context) ([]domain.Review, error) {
	keys, err := c.kv.Keys(ctx, CacheKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list review cache keys: %w", err)
	}
	if len(keys) == 0 {
		return []domain.Review{}, nil
	}

	values, err := c.kv.MultiGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("read review caches: %w", err)
	}

	all := []domain.Review{}
	for _, key := range keys {
		raw, ok := values[key]
		if !ok {
			continue
		}
		reviews, err := decodeList(raw)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping corrupt review cache",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}
		all = append(all, reviews...)
	}
	return all, nil
}

func decodeList(raw string) ([]domain.Review, error) {
	var reviews []domain.Review
	if err := json.Unmarshal([]byte(raw), &reviews); err != nil {
		return nil, fmt.Errorf("decode review list: %w", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}
