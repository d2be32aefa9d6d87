// Package profile summarizes the device owner's activity.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"regexp"

	"github.com/utafrali/ScentGo/internal/domain"
	apperrors "github.com/utafrali/ScentGo/pkg/errors"
)

// uuidPattern matches canonical 8-4-4-4-12 hex ids. Legacy sample ids such
// as "1" are not counted as favorites.
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// FavoriteSource provides the current favorite ids.
type FavoriteSource interface {
	IDs() []string
}

// ReviewCounter counts the device owner's drafted reviews.
type ReviewCounter interface {
	CountMine(ctx context.Context) (int, error)
}

// UserLookup loads a signed-in user.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Summary is the profile screen payload.
type Summary struct {
	FavoritesCount int          `json:"favorites_count"`
	ReviewsCount   int          `json:"reviews_count"`
	User           *domain.User `json:"user,omitempty"`
}

// Service builds profile summaries.
type Service struct {
	favorites FavoriteSource
	reviews   ReviewCounter
	users     UserLookup
	logger    *slog.Logger
}

// NewService creates a profile service.
func NewService(favorites FavoriteSource, reviews ReviewCounter, users UserLookup, logger *slog.Logger) *Service {
	return &Service{favorites: favorites, reviews: reviews, users: users, logger: logger}
}

// Summary counts UUID-shaped favorites and drafted reviews. The user is
// included when userID is set and can be loaded; lookup failures are logged.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	sum := &Summary{FavoritesCount: CountUUIDs(s.favorites.IDs())}

	n, err := s.reviews.CountMine(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to count drafted reviews",
			slog.String("error", err.Error()),
		)
	}
	sum.ReviewsCount = n

	if userID == "" {
		return sum, nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to load profile user",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		return sum, nil
	}
	sum.User = user
	return sum, nil
}

// CountUUIDs returns how many ids are canonical UUIDs.
func CountUUIDs(ids []string) int {
	n := 0
	for _, id := range ids {
		if uuidPattern.MatchString(id) {
			n++
		}
	}
	return n
}
