package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"contract", Contract("bad"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("who"), http.StatusUnauthorized},
		{"not found", NotFound("gone"), http.StatusNotFound},
		{"conflict", Conflict("dup"), http.StatusConflict},
		{"business", Business("rule"), http.StatusUnprocessableEntity},
		{"integration", Integration("db down"), http.StatusBadGateway},
		{"internal", Internal("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
			assert.Equal(t, tt.want, tt.err.Envelope(false).StatusCode)
		})
	}
}

func TestEnvelope(t *testing.T) {
	err := Contract("validation failed", WithDetails(map[string]string{"email": "is required"}), WithStack("trace"))

	env := err.Envelope(false)
	assert.Equal(t, "validation failed", env.Message)
	assert.Equal(t, map[string]string{"email": "is required"}, env.Details)
	assert.Empty(t, env.Stack)

	env = err.Envelope(true)
	assert.Equal(t, "trace", env.Stack)
}

func TestInternalCapturesStack(t *testing.T) {
	err := Internal("boom")
	assert.NotEmpty(t, err.Stack)

	err = Internal("boom", WithStack("given"))
	assert.Equal(t, "given", err.Stack)
}

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFound("user not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	typed := Conflict("email already exists")
	assert.Same(t, typed, Classify(fmt.Errorf("wrapped: %w", typed)))

	plain := errors.New("socket closed")
	classified := Classify(plain)
	require.NotNil(t, classified)
	assert.Equal(t, KindInternal, classified.Kind)
	assert.Equal(t, http.StatusInternalServerError, classified.StatusCode())
	assert.ErrorIs(t, classified, plain)
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "failed", Integration("failed").Error())
	assert.Equal(t, "failed: cause", Integration("failed", WithCause(errors.New("cause"))).Error())
	assert.Equal(t, KindBusiness, KindOf(Business("x")))
	assert.Equal(t, KindInternal, KindOf(errors.New("x")))
}
