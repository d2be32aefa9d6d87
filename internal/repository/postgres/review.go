package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/ScentGo/internal/domain"
	"github.com/utafrali/ScentGo/pkg/database"
)

// ReviewRepository implements review persistence operations using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// ListRatings returns the rating projection of every review. A NULL rating
// reads as 0.
func (r *ReviewRepository) ListRatings(ctx context.Context) (ratings []domain.Rating, err error) {
	query := `SELECT id, perfume_id, COALESCE(rating, 0) FROM reviews`

	ctx, end := database.TraceQuery(ctx, "postgresql", "ListRatings", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	ratings = []domain.Rating{}
	for rows.Next() {
		var rt domain.Rating
		if err := rows.Scan(&rt.ID, &rt.PerfumeID, &rt.Rating); err != nil {
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		ratings = append(ratings, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating rows: %w", err)
	}
	return ratings, nil
}

// ListByPerfume returns the reviews of one perfume, newest first, joined with
// the author's username.
func (r *ReviewRepository) ListByPerfume(ctx context.Context, perfumeID string) (reviews []domain.Review, err error) {
	query := `
		SELECT rv.id, rv.perfume_id, rv.user_id, COALESCE(rv.rating, 0), rv.comment, rv.created_at,
		       COALESCE(u.username, '')
		FROM reviews rv
		LEFT JOIN users u ON u.id = rv.user_id
		WHERE rv.perfume_id = $1
		ORDER BY rv.created_at DESC`

	ctx, end := database.TraceQuery(ctx, "postgresql", "ListReviewsByPerfume", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, perfumeID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews = []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.PerfumeID,
			&rv.UserID,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
			&rv.AuthorName,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}

// Create inserts a new review into the database.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, perfume_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.PerfumeID,
		review.UserID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}
