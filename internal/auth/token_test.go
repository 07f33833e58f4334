package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-pref-service/pkg/jwt"
)

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		target  string
		want    string
		wantErr error
	}{
		{name: "bearer header", header: "Bearer abc", target: "/", want: "abc"},
		{name: "lowercase scheme", header: "bearer abc", target: "/", want: "abc"},
		{name: "query fallback", target: "/v1/ws?token=xyz", want: "xyz"},
		{name: "header wins", header: "Bearer abc", target: "/v1/ws?token=xyz", want: "abc"},
		{name: "missing", target: "/", wantErr: ErrNoCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			got, err := TokenFromRequest(r)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenFromRequest_MalformedHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	_, err := TokenFromRequest(r)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoCredential)
}

func TestJWTVerifier(t *testing.T) {
	m, err := jwt.NewManager("0123456789abcdef", "user-pref-service", time.Minute)
	require.NoError(t, err)
	token, _, err := m.Generate("john@example.com", "c-1")
	require.NoError(t, err)

	identity, err := NewJWTVerifier(m).Verify(token)

	require.NoError(t, err)
	assert.Equal(t, &Identity{Username: "john@example.com", ClientID: "c-1"}, identity)

	_, err = NewJWTVerifier(m).Verify(token + "x")
	assert.Error(t, err)
}
