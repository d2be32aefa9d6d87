package rest

import (
	"context"
	"net/url"
	"time"

	"github.com/utafrali/ScentGo/internal/domain"
)

type ratingRow struct {
	ID        string `json:"id"`
	PerfumeID string `json:"perfume_id"`
	Rating    *int   `json:"rating"`
}

type reviewRow struct {
	ID        string    `json:"id"`
	PerfumeID string    `json:"perfume_id"`
	UserID    string    `json:"user_id"`
	Rating    *int      `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	Users     *struct {
		Username string `json:"username"`
	} `json:"users,omitempty"`
}

// ReviewRepository reads and writes the reviews table.
type ReviewRepository struct {
	client *Client
}

// NewReviewRepository creates a REST-backed review repository.
func NewReviewRepository(client *Client) *ReviewRepository {
	return &ReviewRepository{client: client}
}

// ListRatings returns the rating projection of every review. A null rating
// reads as 0.
func (r *ReviewRepository) ListRatings(ctx context.Context) ([]domain.Rating, error) {
	q := url.Values{}
	q.Set("select", "id,perfume_id,rating")

	var rows []ratingRow
	if err := r.client.get(ctx, "reviews", q, false, &rows); err != nil {
		return nil, err
	}

	ratings := make([]domain.Rating, 0, len(rows))
	for _, row := range rows {
		ratings = append(ratings, domain.Rating{ID: row.ID, PerfumeID: row.PerfumeID, Rating: intOrZero(row.Rating)})
	}
	return ratings, nil
}

// ListByPerfume returns the reviews of one perfume, newest first, joined with
// the author's username.
func (r *ReviewRepository) ListByPerfume(ctx context.Context, perfumeID string) ([]domain.Review, error) {
	q := url.Values{}
	q.Set("select", "*,users(username)")
	q.Set("perfume_id", "eq."+perfumeID)
	q.Set("order", "created_at.desc")

	var rows []reviewRow
	if err := r.client.get(ctx, "reviews", q, false, &rows); err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		rv := domain.Review{
			ID:        row.ID,
			PerfumeID: row.PerfumeID,
			UserID:    row.UserID,
			Rating:    intOrZero(row.Rating),
			Comment:   row.Comment,
			CreatedAt: row.CreatedAt,
		}
		if row.Users != nil {
			rv.AuthorName = row.Users.Username
		}
		reviews = append(reviews, rv)
	}
	return reviews, nil
}

// Create inserts a review row.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	rating := review.Rating
	return r.client.insert(ctx, "reviews", reviewRow{
		ID:        review.ID,
		PerfumeID: review.PerfumeID,
		UserID:    review.UserID,
		Rating:    &rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	})
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
