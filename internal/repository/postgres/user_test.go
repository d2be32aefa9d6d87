package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ScentGo/internal/domain"
	apperrors "github.com/utafrali/ScentGo/pkg/errors"
)

func newUserFixture(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func sampleUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:           "u-1",
		Email:        "jo@example.com",
		Username:     "jo",
		Bio:          domain.DefaultBio("jo"),
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

var userColumns = []string{"id", "email", "username", "bio", "password_hash", "created_at", "updated_at"}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newUserFixture(t)
	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.Username, u.Bio, u.PasswordHash, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserFixture(t)
	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.Username, u.Bio, u.PasswordHash, u.CreatedAt, u.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), u)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	repo, mock := newUserFixture(t)
	u := sampleUser()

	mock.ExpectQuery(`WHERE LOWER\(email\) = LOWER\(\$1\)`).WithArgs("JO@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow(u.ID, u.Email, u.Username, u.Bio, u.PasswordHash, u.CreatedAt, u.UpdatedAt))

	got, err := repo.GetByEmail(context.Background(), "JO@example.com")
	require.NoError(t, err)
	assert.Equal(t, u, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newUserFixture(t)
	mock.ExpectQuery(`WHERE id = \$1`).WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
