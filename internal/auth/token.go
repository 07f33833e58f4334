package auth

import (
	"errors"
	"net/http"
	"strings"

	"user-pref-service/pkg/jwt"
)

// ErrNoCredential is returned when a request carries no bearer token.
var ErrNoCredential = errors.New("no credential")

// Verifier turns a bearer credential into an identity.
type Verifier interface {
	Verify(token string) (*Identity, error)
}

// JWTVerifier verifies tokens issued by the jwt manager.
type JWTVerifier struct {
	manager *jwt.Manager
}

// NewJWTVerifier creates a verifier backed by manager.
func NewJWTVerifier(manager *jwt.Manager) *JWTVerifier {
	return &JWTVerifier{manager: manager}
}

// Verify implements Verifier.
func (v *JWTVerifier) Verify(token string) (*Identity, error) {
	claims, err := v.manager.Parse(token)
	if err != nil {
		return nil, err
	}
	return &Identity{Username: claims.Subject, ClientID: claims.ClientID}, nil
}

// TokenFromRequest extracts the bearer token from the Authorization header, falling back to
// the token query parameter used by browser websocket clients.
func TokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", errors.New("authorization header must be a bearer token")
		}
		return strings.TrimSpace(token), nil
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", ErrNoCredential
}
