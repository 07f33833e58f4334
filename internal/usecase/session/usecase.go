package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "user-pref-service/internal/domain/user"
	apperrors "user-pref-service/pkg/errors"
	"user-pref-service/pkg/schema"
	"user-pref-service/pkg/security"
)

// Usecase defines the session operations.
type Usecase interface {
	Login(ctx context.Context, in LoginRequest) (*LoginResponse, error)
}

// UserFinder looks up the account a credential belongs to.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TokenIssuer signs access tokens for an authenticated identity.
type TokenIssuer interface {
	Generate(username, clientID string) (string, time.Time, error)
}

// LoginRequest represents the credentials submitted to log in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	ClientID string `json:"clientId" validate:"max=64"`
}

// SetDefaults normalizes the email and assigns a client id when none was sent.
func (r *LoginRequest) SetDefaults() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.ClientID == "" {
		r.ClientID = uuid.NewString()
	}
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ClientID  string    `json:"clientId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service exchanges credentials for access tokens.
type Service struct {
	users    UserFinder
	tokens   TokenIssuer
	validate *schema.Validator
	log      *zap.Logger
}

var _ Usecase = (*Service)(nil)

// New creates a new session service.
func New(users UserFinder, tokens TokenIssuer, v *schema.Validator, log *zap.Logger) *Service {
	return &Service{users: users, tokens: tokens, validate: v, log: log}
}

// Login verifies the credentials and issues a token carrying the username and client id.
// Unknown emails and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	in.SetDefaults()
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || !security.ComparePassword(u.PasswordHash, in.Password) {
		s.log.Warn("login rejected", zap.String("email", in.Email))
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.Generate(u.Email, in.ClientID)
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", apperrors.WithCause(err))
	}

	s.log.Info("user logged in", zap.String("user_id", u.ID), zap.String("client_id", in.ClientID))
	return &LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ClientID:  in.ClientID,
		ExpiresAt: expiresAt,
	}, nil
}
