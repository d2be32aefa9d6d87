package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/ScentGo/internal/domain"
	"github.com/utafrali/ScentGo/internal/event"
	"github.com/utafrali/ScentGo/internal/repository"
	apperrors "github.com/utafrali/ScentGo/pkg/errors"
)

// DefaultBcryptCost is the cost factor for password hashing.
const DefaultBcryptCost = 12

// SignUpInput holds the parameters for creating an account.
type SignUpInput struct {
	Email    string
	Password string
	Username string
}

// SignInInput holds the parameters for signing in.
type SignInInput struct {
	Email    string
	Password string
}

// Session is a signed-in user with their token.
type Session struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Service implements account sign-up and sign-in.
type Service struct {
	users      repository.UserRepository
	jwtManager *JWTManager
	publisher  event.Publisher
	bcryptCost int
	logger     *slog.Logger
}

// NewService creates a new auth service.
func NewService(users repository.UserRepository, jwtManager *JWTManager, publisher event.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &Service{
		users:      users,
		jwtManager: jwtManager,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// SignUp creates an account with the default bio and returns a session.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)
	if email == "" || input.Password == "" {
		return nil, apperrors.InvalidInput("please fill in all fields")
	}
	if username == "" {
		return nil, apperrors.InvalidInput("please enter a username")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		Bio:          domain.DefaultBio(username),
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.publisher.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user signed up",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &Session{User: user, Token: token}, nil
}

// SignIn checks the password and returns a session.
func (s *Service) SignIn(ctx context.Context, input SignInInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, apperrors.InvalidInput("please fill in all fields")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed in",
		slog.String("user_id", user.ID),
	)

	return &Session{User: user, Token: token}, nil
}

// Me returns the signed-in user.
func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("not signed in")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
