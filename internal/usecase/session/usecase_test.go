package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-pref-service/internal/domain/user"
	"user-pref-service/internal/validation"
	apperrors "user-pref-service/pkg/errors"
	"user-pref-service/pkg/jwt"
	"user-pref-service/pkg/security"
)

type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func setup(t *testing.T) (*Service, *MockUserFinder, *jwt.Manager) {
	tokens, err := jwt.NewManager("0123456789abcdef", "test", time.Hour)
	require.NoError(t, err)
	users := new(MockUserFinder)
	return New(users, tokens, validation.New(), zaptest.NewLogger(t)), users, tokens
}

func TestLogin_Success(t *testing.T) {
	svc, users, tokens := setup(t)
	ctx := context.Background()

	hash, err := security.HashPassword("supersecret")
	require.NoError(t, err)
	users.On("GetByEmail", ctx, "john@example.com").Return(&domain.User{ID: "u1", Email: "john@example.com", PasswordHash: hash}, nil)

	resp, err := svc.Login(ctx, LoginRequest{Email: "John@example.com", Password: "supersecret", ClientID: "web-1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "web-1", resp.ClientID)

	claims, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", claims.Subject)
	assert.Equal(t, "web-1", claims.ClientID)
}

func TestLogin_GeneratesClientID(t *testing.T) {
	svc, users, _ := setup(t)
	ctx := context.Background()

	hash, err := security.HashPassword("supersecret")
	require.NoError(t, err)
	users.On("GetByEmail", ctx, "john@example.com").Return(&domain.User{ID: "u1", Email: "john@example.com", PasswordHash: hash}, nil)

	resp, err := svc.Login(ctx, LoginRequest{Email: "john@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ClientID)
}

func TestLogin_Rejected(t *testing.T) {
	svc, users, _ := setup(t)
	ctx := context.Background()

	hash, err := security.HashPassword("supersecret")
	require.NoError(t, err)
	users.On("GetByEmail", ctx, "john@example.com").Return(&domain.User{Email: "john@example.com", PasswordHash: hash}, nil)
	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil)

	_, err = svc.Login(ctx, LoginRequest{Email: "john@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginRequest{Email: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrContract)
}
