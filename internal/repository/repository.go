package repository

import (
	"context"

	"github.com/utafrali/ScentGo/internal/domain"
)

// PerfumeRepository reads the remote catalog.
type PerfumeRepository interface {
	// List returns catalog rows in catalog order. An empty ids slice returns
	// the whole catalog; otherwise only rows whose id is in ids.
	List(ctx context.Context, ids []string) ([]domain.Perfume, error)

	// GetByID returns one catalog row or an error wrapping ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.Perfume, error)
}

// ReviewRepository reads and writes remote review rows.
type ReviewRepository interface {
	// ListRatings returns id, perfume_id and rating of every review.
	ListRatings(ctx context.Context) ([]domain.Rating, error)

	// ListByPerfume returns the reviews of one perfume, newest first, with
	// AuthorName set when the author has a username.
	ListByPerfume(ctx context.Context, perfumeID string) ([]domain.Review, error)

	// Create inserts a review row.
	Create(ctx context.Context, review *domain.Review) error
}

// UserRepository persists accounts.
type UserRepository interface {
	// Create inserts a user. A duplicate email yields an AlreadyExists error.
	Create(ctx context.Context, user *domain.User) error

	// GetByEmail returns the user with the given email or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByID returns the user with the given id or ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
