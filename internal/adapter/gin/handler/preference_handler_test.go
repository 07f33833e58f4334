package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	"user-pref-service/internal/adapter/gin/middleware"
	"user-pref-service/internal/auth"
	domain "user-pref-service/internal/domain/user"
	"user-pref-service/internal/usecase/preference"
	"user-pref-service/internal/usecase/session"
	"user-pref-service/internal/validation"
	apperrors "user-pref-service/pkg/errors"
)

type MockPreferenceUsecase struct {
	mock.Mock
}

func (m *MockPreferenceUsecase) CreatePreference(ctx context.Context, identity *auth.Identity, in preference.CreatePreferenceRequest) (*preference.Response, error) {
	args := m.Called(ctx, identity, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*preference.Response), args.Error(1)
}

func (m *MockPreferenceUsecase) GetPreference(ctx context.Context, identity *auth.Identity, in preference.GetPreferenceRequest) (*preference.Response, error) {
	args := m.Called(ctx, identity, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*preference.Response), args.Error(1)
}

func (m *MockPreferenceUsecase) ListPreferences(ctx context.Context, identity *auth.Identity, in domain.ListRequest) (*domain.Page[preference.Response], error) {
	args := m.Called(ctx, identity, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[preference.Response]), args.Error(1)
}

func (m *MockPreferenceUsecase) UpdatePreference(ctx context.Context, identity *auth.Identity, in preference.UpdatePreferenceRequest) (*preference.Response, error) {
	args := m.Called(ctx, identity, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*preference.Response), args.Error(1)
}

func (m *MockPreferenceUsecase) DeletePreference(ctx context.Context, identity *auth.Identity, in preference.DeletePreferenceRequest) (*preference.DeleteResponse, error) {
	args := m.Called(ctx, identity, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*preference.DeleteResponse), args.Error(1)
}

type MockSessionUsecase struct {
	mock.Mock
}

func (m *MockSessionUsecase) Login(ctx context.Context, in session.LoginRequest) (*session.LoginResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.LoginResponse), args.Error(1)
}

func setupPreferenceRouter(t *testing.T) (*gin.Engine, *MockPreferenceUsecase, *MockSessionUsecase) {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)
	v := validation.New()
	prefs := new(MockPreferenceUsecase)
	sessions := new(MockSessionUsecase)
	ph := NewPreferenceHandler(prefs, v, log)
	sh := NewSessionHandler(sessions, v)

	r := gin.New()
	r.Use(middleware.ErrorHandler(false, log), withIdentity(testIdentity))
	r.POST("/v1/auth/login", sh.Login)
	r.POST("/v1/preferences", ph.CreatePreference)
	r.GET("/v1/preferences", ph.ListPreferences)
	r.GET("/v1/preferences/:userId", ph.GetPreference)
	r.PUT("/v1/preferences/:userId", ph.UpdatePreference)
	r.DELETE("/v1/preferences/:userId", ph.DeletePreference)
	return r, prefs, sessions
}

func TestCreatePreference(t *testing.T) {
	r, prefs, _ := setupPreferenceRouter(t)
	prefs.On("CreatePreference", mock.Anything, testIdentity, preference.CreatePreferenceRequest{UserID: "u1", DefaultTheme: domain.ThemeLight}).
		Return(&preference.Response{ID: "p1", UserID: "u1", DefaultTheme: domain.ThemeLight}, nil)

	w := do(r, http.MethodPost, "/v1/preferences", map[string]any{"userId": "u1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	prefs.AssertExpectations(t)
}

func TestCreatePreference_InvalidTheme(t *testing.T) {
	r, prefs, _ := setupPreferenceRouter(t)

	w := do(r, http.MethodPost, "/v1/preferences", map[string]any{"userId": "u1", "defaultTheme": "neon"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, envelope(t, w).Message, "defaultTheme must be one of: light, dark, system")
	prefs.AssertNotCalled(t, "CreatePreference", mock.Anything, mock.Anything, mock.Anything)
}

func TestPreferenceRoutesUseUserIDParam(t *testing.T) {
	r, prefs, _ := setupPreferenceRouter(t)
	resp := &preference.Response{ID: "p1", UserID: "u1", DefaultTheme: domain.ThemeDark}
	prefs.On("GetPreference", mock.Anything, testIdentity, preference.GetPreferenceRequest{UserID: "u1"}).Return(resp, nil)
	prefs.On("UpdatePreference", mock.Anything, testIdentity, preference.UpdatePreferenceRequest{UserID: "u1", DefaultTheme: domain.ThemeDark}).Return(resp, nil)
	prefs.On("DeletePreference", mock.Anything, testIdentity, preference.DeletePreferenceRequest{UserID: "u1"}).
		Return(nil, apperrors.NotFound("preference not found"))
	prefs.On("ListPreferences", mock.Anything, testIdentity, mock.Anything).
		Return(&domain.Page[preference.Response]{Content: []preference.Response{*resp}, PageNumber: 1, PageSize: 10, TotalPages: 1, TotalItems: 1}, nil)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/v1/preferences/u1", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, "/v1/preferences/u1", map[string]any{"defaultTheme": "dark"}).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/v1/preferences/u1", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/v1/preferences", nil).Code)
	prefs.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	r, _, sessions := setupPreferenceRouter(t)
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions.On("Login", mock.Anything, mock.MatchedBy(func(in session.LoginRequest) bool {
		return in.Email == "john@example.com" && in.ClientID != ""
	})).Return(&session.LoginResponse{Token: "t", TokenType: "Bearer", ClientID: "c-9", ExpiresAt: expires}, nil)

	w := do(r, http.MethodPost, "/v1/auth/login", map[string]any{"email": "John@example.com", "password": "s3cretpass"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"t","tokenType":"Bearer","clientId":"c-9","expiresAt":"2030-01-01T00:00:00Z"}`, w.Body.String())

	w = do(r, http.MethodPost, "/v1/auth/login", map[string]any{"email": "john@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, envelope(t, w).Message, "password is required")
}
