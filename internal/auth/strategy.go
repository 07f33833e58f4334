package auth

import (
	"context"

	"user-pref-service/internal/domain/user"
)

// Identity is the authenticated caller of a single request or message.
type Identity struct {
	Username string // Username is the login (email) the credential was issued to
	ClientID string // ClientID identifies the client application or connection
}

// ManageAuth reports whether identity may act on u. It never fails: a missing identity
// or entity is simply not authorized.
func ManageAuth(u *user.User, identity *Identity) bool {
	if u == nil || identity == nil || identity.Username == "" {
		return false
	}
	return identity.Username == u.Email
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying identity.
func NewContext(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

// FromContext returns the identity stored in ctx, or nil.
func FromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(contextKey{}).(*Identity)
	return identity
}
