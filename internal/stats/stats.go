// Package stats joins catalog rows with review ratings into per-perfume
// average rating and review count.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/ScentGo/internal/domain"
	"github.com/utafrali/ScentGo/internal/repository"
)

// DefaultRemoteTimeout bounds each remote fetch when no timeout is configured.
const DefaultRemoteTimeout = 10 * time.Second

// FavoriteSource provides the current favorite ids.
type FavoriteSource interface {
	IDs() []string
}

// Aggregator computes derived perfume stats. It keeps no state between calls.
type Aggregator struct {
	perfumes repository.PerfumeRepository
	reviews  repository.ReviewRepository
	timeout  time.Duration
	logger   *slog.Logger
}

// NewAggregator creates an aggregator. A non-positive timeout uses
// DefaultRemoteTimeout.
func NewAggregator(perfumes repository.PerfumeRepository, reviews repository.ReviewRepository, timeout time.Duration, logger *slog.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &Aggregator{
		perfumes: perfumes,
		reviews:  reviews,
		timeout:  timeout,
		logger:   logger,
	}
}

// Aggregate fetches the catalog rows (restricted to ids when non-empty) and
// every review rating concurrently, then returns the rows in catalog order
// with AverageRating and ReviewCount filled in. Any fetch failure fails the
// whole call.
func (a *Aggregator) Aggregate(ctx context.Context, ids []string) ([]domain.Perfume, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		perfumes []domain.Perfume
		ratings  []domain.Rating
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		perfumes, err = a.perfumes.List(gctx, ids)
		if err != nil {
			return fmt.Errorf("fetch catalog: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ratings, err = a.reviews.ListRatings(gctx)
		if err != nil {
			return fmt.Errorf("fetch ratings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		a.logger.WarnContext(ctx, "stats aggregation failed",
			slog.Int("requested", len(ids)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return Apply(perfumes, ratings), nil
}

// Get returns one perfume with its stats, or a not-found error.
func (a *Aggregator) Get(ctx context.Context, id string) (*domain.Perfume, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		perfume *domain.Perfume
		ratings []domain.Rating
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		perfume, err = a.perfumes.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		ratings, err = a.reviews.ListRatings(gctx)
		if err != nil {
			return fmt.Errorf("fetch ratings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := Apply([]domain.Perfume{*perfume}, ratings)
	return &out[0], nil
}

// ForFavorites aggregates the favorite perfumes. An empty set returns an
// empty list without touching the remote store.
func (a *Aggregator) ForFavorites(ctx context.Context, favorites FavoriteSource) ([]domain.Perfume, error) {
	ids := favorites.IDs()
	if len(ids) == 0 {
		return []domain.Perfume{}, nil
	}
	return a.Aggregate(ctx, ids)
}

// Apply returns a copy of perfumes with stats computed from ratings. Ratings
// for perfumes not in the list are ignored.
func Apply(perfumes []domain.Perfume, ratings []domain.Rating) []domain.Perfume {
	type tally struct {
		sum   int
		count int
	}
	byPerfume := make(map[string]tally, len(perfumes))
	for _, r := range ratings {
		t := byPerfume[r.PerfumeID]
		t.sum += r.Rating
		t.count++
		byPerfume[r.PerfumeID] = t
	}

	out := make([]domain.Perfume, len(perfumes))
	for i, p := range perfumes {
		t := byPerfume[p.ID]
		p.ReviewCount = t.count
		p.AverageRating = 0
		if t.count > 0 {
			p.AverageRating = float64(t.sum) / float64(t.count)
		}
		out[i] = p
	}
	return out
}
