package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-pref-service/internal/adapter/gin/handler"
	"user-pref-service/internal/auth"
	"user-pref-service/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type rejectAll struct{}

func (rejectAll) Verify(string) (*auth.Identity, error) { return nil, errors.New("bad token") }

func newTestRouter(t *testing.T) http.Handler {
	log := zaptest.NewLogger(t)
	v := validation.New()
	up := handler.CheckFunc(func(context.Context) error { return nil })

	return SetupRouter(
		Config{Environment: "test", AllowedOrigins: []string{"https://app.example.com"}},
		Handlers{
			// usecases are never reached by these requests
			User:       handler.NewUserHandler(nil, v, log),
			Preference: handler.NewPreferenceHandler(nil, v, log),
			Session:    handler.NewSessionHandler(nil, v),
			System:     handler.NewSystemHandler("user-pref-service", map[string]handler.Checker{"database": up}, log),
		},
		rejectAll{},
		nil,
		log,
	)
}

func get(h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, vs := range header {
		req.Header[k] = vs
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestOperationalRoutes(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(r, "/check?x=1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	w = get(r, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc["swagger"])
}

func TestInvalidTokenRejectedBeforeHandlers(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/v1/users/u1", http.Header{"Authorization": []string{"Bearer forged"}})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"invalid or expired token","statusCode":401}`, w.Body.String())
}

func TestContractErrorsNeverReachUsecase(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/v1/users?order=sideways", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/users", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(r, "/health", http.Header{"Origin": []string{"https://evil.example.com"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
