package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/ScentGo/internal/domain"
	"github.com/utafrali/ScentGo/internal/repository"
	apperrors "github.com/utafrali/ScentGo/pkg/errors"
)

// ErrReviewsUnavailable means neither the remote store nor the local cache
// could be read.
var ErrReviewsUnavailable = errors.New("reviews unavailable")

// Service merges remote and locally drafted reviews.
type Service struct {
	remote   repository.ReviewRepository
	perfumes repository.PerfumeRepository
	cache    *Cache
	timeout  time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates a review service. timeout bounds each remote fetch; a
// non-positive value means 10s.
func NewService(remote repository.ReviewRepository, perfumes repository.PerfumeRepository, cache *Cache, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		remote:   remote,
		perfumes: perfumes,
		cache:    cache,
		timeout:  timeout,
		now:      time.Now,
		logger:   logger,
	}
}

func reviewID(r domain.Review) string { return r.ID }

func reviewCreatedAt(r domain.Review) time.Time { return r.CreatedAt }

// ListForPerfume returns the cached drafts and remote reviews of a perfume,
// deduplicated with drafts winning, newest first. When only one source can
// be read its reviews are returned alone.
func (s *Service) ListForPerfume(ctx context.Context, perfumeID string) ([]domain.Review, error) {
	if strings.TrimSpace(perfumeID) == "" {
		return nil, apperrors.InvalidInput("perfume id is required")
	}

	var (
		remote, local       []domain.Review
		remoteErr, localErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		remote, remoteErr = s.remote.ListByPerfume(rctx, perfumeID)
		return nil
	})
	g.Go(func() error {
		local, localErr = s.cache.Load(ctx, perfumeID)
		return nil
	})
	_ = g.Wait()

	switch {
	case remoteErr != nil && localErr != nil:
		return nil, apperrors.ServiceUnavailable(fmt.Errorf("%w: %w", ErrReviewsUnavailable, errors.Join(remoteErr, localErr)))
	case remoteErr != nil:
		s.logger.WarnContext(ctx, "remote reviews unavailable, serving cached reviews",
			slog.String("perfume_id", perfumeID),
			slog.String("error", remoteErr.Error()),
		)
	case localErr != nil:
		s.logger.WarnContext(ctx, "review cache unreadable, serving remote reviews",
			slog.String("perfume_id", perfumeID),
			slog.String("error", localErr.Error()),
		)
	}

	return Merge(local, remote, reviewID, reviewCreatedAt), nil
}

// Submit drafts a review locally. It is never written to the remote store.
// Cache failures are logged and the draft is still returned.
func (s *Service) Submit(ctx context.Context, perfumeID, comment string) (*domain.Review, error) {
	perfumeID = strings.TrimSpace(perfumeID)
	if perfumeID == "" {
		return nil, apperrors.InvalidInput("perfume id is required")
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperrors.InvalidInput("comment is required")
	}

	cached, err := s.cache.Load(ctx, perfumeID)
	if err != nil {
		s.logger.WarnContext(ctx, "review cache unreadable, drafting on an empty list",
			slog.String("perfume_id", perfumeID),
			slog.String("error", err.Error()),
		)
		cached = nil
	}
	taken := make(map[string]struct{}, len(cached))
	for _, rv := range cached {
		taken[rv.ID] = struct{}{}
	}

	now := s.now().UTC()
	stamp := now
	id := domain.LocalReviewID(stamp)
	for {
		if _, dup := taken[id]; !dup {
			break
		}
		stamp = stamp.Add(time.Millisecond)
		id = domain.LocalReviewID(stamp)
	}

	rv := domain.Review{
		ID:        id,
		PerfumeID: perfumeID,
		UserID:    domain.CurrentUser,
		Rating:    domain.DraftRating,
		Comment:   comment,
		CreatedAt: now,
	}
	if err := s.cache.Save(ctx, perfumeID, append(cached, rv)); err != nil {
		s.logger.WarnContext(ctx, "failed to persist drafted review",
			slog.String("review_id", rv.ID),
			slog.String("perfume_id", perfumeID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review drafted",
		slog.String("review_id", rv.ID),
		slog.String("perfume_id", perfumeID),
	)
	return &rv, nil
}

// MyReviews returns every cached draft by the current user joined with its
// perfume, newest first. If the catalog cannot be read the perfumes are nil.
func (s *Service) MyReviews(ctx context.Context) ([]domain.ReviewWithPerfume, error) {
	mine, err := s.mine(ctx)
	if err != nil {
		return nil, err
	}

	byID := map[string]*domain.Perfume{}
	if len(mine) > 0 {
		ids := make([]string, 0, len(mine))
		seen := map[string]struct{}{}
		for _, rv := range mine {
			if _, ok := seen[rv.PerfumeID]; ok {
				continue
			}
			seen[rv.PerfumeID] = struct{}{}
			ids = append(ids, rv.PerfumeID)
		}

		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		perfumes, err := s.perfumes.List(rctx, ids)
		cancel()
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load perfumes for my reviews",
				slog.Int("perfumes", len(ids)),
				slog.String("error", err.Error()),
			)
		}
		for i := range perfumes {
			byID[perfumes[i].ID] = &perfumes[i]
		}
	}

	mine = Merge(mine, nil, reviewID, reviewCreatedAt)
	out := make([]domain.ReviewWithPerfume, 0, len(mine))
	for _, rv := range mine {
		out = append(out, domain.ReviewWithPerfume{Review: rv, Perfume: byID[rv.PerfumeID]})
	}
	return out, nil
}

// CountMine returns the number of cached drafts by the current user.
func (s *Service) CountMine(ctx context.Context) (int, error) {
	mine, err := s.mine(ctx)
	if err != nil {
		return 0, err
	}
	return len(mine), nil
}

func (s *Service) mine(ctx context.Context) ([]domain.Review, error) {
	all, err := s.cache.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read cached reviews: %w", err)
	}
	mine := make([]domain.Review, 0, len(all))
	for _, rv := range all {
		if rv.UserID == domain.CurrentUser {
			mine = append(mine, rv)
		}
	}
	return mine, nil
}
