package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ScentGo/internal/domain"
)

func newReviewFixture(t *testing.T) (*ReviewRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewReviewRepository(mock), mock
}

func TestReviewRepository_ListRatings(t *testing.T) {
	repo, mock := newReviewFixture(t)

	mock.ExpectQuery("SELECT id, perfume_id, COALESCE\\(rating, 0\\) FROM reviews").
		WillReturnRows(pgxmock.NewRows([]string{"id", "perfume_id", "rating"}).
			AddRow("r1", "B", 4).
			AddRow("r2", "B", 5))

	got, err := repo.ListRatings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Rating{
		{ID: "r1", PerfumeID: "B", Rating: 4},
		{ID: "r2", PerfumeID: "B", Rating: 5},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByPerfume(t *testing.T) {
	repo, mock := newReviewFixture(t)
	newer := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	mock.ExpectQuery("FROM reviews rv").WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "perfume_id", "user_id", "rating", "comment", "created_at", "username"}).
			AddRow("r2", "p1", "u1", 5, "lovely", newer, "jo").
			AddRow("r1", "p1", "u2", 3, "meh", older, ""))

	got, err := repo.ListByPerfume(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "jo", got[0].AuthorName)
	assert.Equal(t, older, got[1].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByPerfume_Error(t *testing.T) {
	repo, mock := newReviewFixture(t)
	mock.ExpectQuery("FROM reviews rv").WithArgs("p1").WillReturnError(errors.New("timeout"))

	_, err := repo.ListByPerfume(context.Background(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list reviews")
}

func TestReviewRepository_Create(t *testing.T) {
	repo, mock := newReviewFixture(t)
	rv := &domain.Review{ID: "r9", PerfumeID: "p1", UserID: "u1", Rating: 4, Comment: "nice", CreatedAt: time.Now().UTC()}

	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.PerfumeID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), rv))
	assert.NoError(t, mock.ExpectationsWereMet())
}
