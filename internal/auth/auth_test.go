package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/ScentGo/internal/domain"
	apperrors "github.com/utafrali/ScentGo/pkg/errors"
	"github.com/utafrali/ScentGo/pkg/logger"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockPublisher) PublishFavoriteToggled(ctx context.Context, perfumeID string, favorite bool, setSize int) error {
	return m.Called(ctx, perfumeID, favorite, setSize).Error(0)
}

func newTestService() (*Service, *mockUserRepository, *mockPublisher, *JWTManager) {
	users := new(mockUserRepository)
	pub := new(mockPublisher)
	jwtManager := NewJWTManager("test-secret", time.Hour)
	return NewService(users, jwtManager, pub, bcrypt.MinCost, logger.Discard()), users, pub, jwtManager
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	token, err := m.GenerateToken("u1", "jo@example.com", "jo")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "jo", claims.Username)
}

func TestJWTManager_RejectsForeignAndExpiredTokens(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)

	other, err := NewJWTManager("other", time.Minute).GenerateToken("u1", "", "")
	require.NoError(t, err)
	_, err = m.ValidateToken(other)
	assert.Error(t, err)

	expired, err := NewJWTManager("secret", -time.Minute).GenerateToken("u1", "", "")
	require.NoError(t, err)
	_, err = m.ValidateToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ValidateToken(none)
	assert.Error(t, err)
}

func TestSignUp(t *testing.T) {
	svc, users, pub, jwtManager := newTestService()
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "jo@example.com" && u.Username == "jo" && u.Bio == "Hi I'm jo!" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw")) == nil
	})).Return(nil)
	pub.On("PublishUserRegistered", mock.Anything, mock.Anything).Return(errors.New("kafka down"))

	sess, err := svc.SignUp(context.Background(), SignUpInput{Email: " Jo@Example.com ", Password: "pw", Username: "jo"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.User.ID)

	claims, err := jwtManager.ValidateToken(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)
	users.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSignUp_Validation(t *testing.T) {
	svc, users, _, _ := newTestService()

	_, err := svc.SignUp(context.Background(), SignUpInput{Email: "jo@example.com", Username: "jo"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "please fill in all fields")

	_, err = svc.SignUp(context.Background(), SignUpInput{Email: "jo@example.com", Password: "pw", Username: " "})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "please enter a username")

	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, users, pub, _ := newTestService()
	users.On("Create", mock.Anything, mock.Anything).Return(apperrors.AlreadyExists("user", "email", "jo@example.com"))

	_, err := svc.SignUp(context.Background(), SignUpInput{Email: "jo@example.com", Password: "pw", Username: "jo"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	pub.AssertNotCalled(t, "PublishUserRegistered", mock.Anything, mock.Anything)
}

func TestSignIn(t *testing.T) {
	svc, users, _, _ := newTestService()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("GetByEmail", mock.Anything, "jo@example.com").Return(&domain.User{ID: "u1", Email: "jo@example.com", PasswordHash: string(hash)}, nil)

	sess, err := svc.SignIn(context.Background(), SignInInput{Email: "JO@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.User.ID)

	_, err = svc.SignIn(context.Background(), SignInInput{Email: "jo@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSignIn_UnknownAndUnavailable(t *testing.T) {
	svc, users, _, _ := newTestService()
	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, apperrors.NotFound("user", "nobody@example.com"))
	users.On("GetByEmail", mock.Anything, "jo@example.com").Return(nil, apperrors.ServiceUnavailable(errors.New("timeout")))

	_, err := svc.SignIn(context.Background(), SignInInput{Email: "nobody@example.com", Password: "pw"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.SignIn(context.Background(), SignInInput{Email: "jo@example.com", Password: "pw"})
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestMe(t *testing.T) {
	svc, users, _, _ := newTestService()
	users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1"}, nil)

	u, err := svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = svc.Me(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
