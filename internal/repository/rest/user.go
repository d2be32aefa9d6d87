package rest

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/utafrali/ScentGo/internal/domain"
	apperrors "github.com/utafrali/ScentGo/pkg/errors"
)

const userColumns = "id,email,username,bio,password_hash,created_at,updated_at"

// userRow is the wire shape of a users row. It carries the password hash,
// which domain.User never serializes.
type userRow struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Bio          string    `json:"bio"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		Bio:          u.Bio,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// UserRepository reads and writes the users table.
type UserRepository struct {
	client *Client
}

// NewUserRepository creates a REST-backed user repository.
func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

// Create inserts a user. A conflicting email yields an AlreadyExists error.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.client.insert(ctx, "users", userRow{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		Bio:          u.Bio,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	})
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		return apperrors.AlreadyExists("user", "email", u.Email)
	}
	return err
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "id", id)
}

// GetByEmail retrieves a user by email. Emails are stored lowercased.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email", strings.ToLower(email))
}

func (r *UserRepository) getOne(ctx context.Context, column, value string) (*domain.User, error) {
	q := url.Values{}
	q.Set("select", userColumns)
	q.Set(column, "eq."+value)

	var row userRow
	if err := r.client.get(ctx, "users", q, true, &row); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", value)
		}
		return nil, err
	}
	return row.toDomain(), nil
}
