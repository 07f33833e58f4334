package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-pref-service/internal/adapter/gin/middleware"
	"user-pref-service/internal/auth"
	domain "user-pref-service/internal/domain/user"
	usecase "user-pref-service/internal/usecase/user"
	"user-pref-service/internal/validation"
	apperrors "user-pref-service/pkg/errors"
)

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) CreateUser(ctx context.Context, req usecase.CreateUserRequest) (*usecase.UserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UserResponse), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, identity *auth.Identity, req usecase.GetUserRequest) (*usecase.UserResponse, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UserResponse), args.Error(1)
}

func (m *MockUserUsecase) ListUsers(ctx context.Context, identity *auth.Identity, req domain.ListRequest) (*domain.Page[usecase.UserResponse], error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[usecase.UserResponse]), args.Error(1)
}

func (m *MockUserUsecase) UpdateUser(ctx context.Context, identity *auth.Identity, req usecase.UpdateUserRequest) (*usecase.UserResponse, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UserResponse), args.Error(1)
}

func (m *MockUserUsecase) DeleteUser(ctx context.Context, identity *auth.Identity, req usecase.DeleteUserRequest) (*usecase.DeleteUserResponse, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DeleteUserResponse), args.Error(1)
}

func (m *MockUserUsecase) PurgeDeletedUsers(ctx context.Context, retention time.Duration) (int, error) {
	args := m.Called(ctx, retention)
	return args.Int(0), args.Error(1)
}

var testIdentity = &auth.Identity{Username: "john@example.com", ClientID: "c-1"}

// withIdentity stands in for the auth middleware.
func withIdentity(identity *auth.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity != nil {
			c.Request = c.Request.WithContext(auth.NewContext(c.Request.Context(), identity))
		}
		c.Next()
	}
}

func setupUserRouter(t *testing.T, identity *auth.Identity) (*gin.Engine, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)
	uc := new(MockUserUsecase)
	h := NewUserHandler(uc, validation.New(), log)

	r := gin.New()
	r.Use(middleware.ErrorHandler(false, log), withIdentity(identity))
	r.POST("/v1/users", h.CreateUser)
	r.GET("/v1/users", h.ListUsers)
	r.GET("/v1/users/:id", h.GetUser)
	r.PUT("/v1/users/:id", h.UpdateUser)
	r.DELETE("/v1/users/:id", h.DeleteUser)
	return r, uc
}

func do(r *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) apperrors.Envelope {
	var env apperrors.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestCreateUser_AppliesDefaults(t *testing.T) {
	r, uc := setupUserRouter(t, nil)

	uc.On("CreateUser", mock.Anything, mock.MatchedBy(func(req usecase.CreateUserRequest) bool {
		return req.Email == "john@example.com" && req.DefaultTheme == domain.ThemeLight && req.FU == "SP"
	})).Return(&usecase.UserResponse{ID: "u1", Email: "john@example.com"}, nil)

	w := do(r, http.MethodPost, "/v1/users", map[string]any{
		"fullName": "John Doe",
		"email":    "  John@Example.com ",
		"password": "s3cretpass",
		"fu":       "sp",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp usecase.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.ID)
	assert.NotContains(t, w.Body.String(), "password")
	uc.AssertExpectations(t)
}

func TestCreateUser_ListsEveryViolation(t *testing.T) {
	r, uc := setupUserRouter(t, nil)

	w := do(r, http.MethodPost, "/v1/users", map[string]any{
		"fullName": "John Doe",
		"email":    "not-an-email",
		"password": "short",
		"docType":  "CPF",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := envelope(t, w)
	assert.Contains(t, env.Message, "email must be a valid email")
	assert.Contains(t, env.Message, "password must be at least 8 characters")
	assert.Contains(t, env.Message, "document is required when DocType is present")
	uc.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestCreateUser_RejectsUnknownFieldsAndBadJSON(t *testing.T) {
	r, uc := setupUserRouter(t, nil)

	w := do(r, http.MethodPost, "/v1/users", map[string]any{
		"fullName": "John Doe",
		"email":    "john",
		"password": "s3cretpass",
		"isAdmin":  true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := envelope(t, w)
	assert.Contains(t, env.Message, "isAdmin is not allowed")
	assert.Contains(t, env.Message, "email must be a valid email")

	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation failed: body must be a valid JSON object", envelope(t, rec).Message)

	uc.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestCreateUser_Conflict(t *testing.T) {
	r, uc := setupUserRouter(t, nil)
	uc.On("CreateUser", mock.Anything, mock.Anything).Return(nil, apperrors.Conflict("email already registered"))

	w := do(r, http.MethodPost, "/v1/users", map[string]any{
		"fullName": "John Doe",
		"email":    "john@example.com",
		"password": "s3cretpass",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, envelope(t, w).StatusCode)
}

func TestGetUser_PassesIdentityAndParam(t *testing.T) {
	r, uc := setupUserRouter(t, testIdentity)
	uc.On("GetUser", mock.Anything, testIdentity, usecase.GetUserRequest{ID: "u1"}).
		Return(&usecase.UserResponse{ID: "u1", Preference: &usecase.PreferenceResponse{ID: "p1", DefaultTheme: domain.ThemeDark}}, nil)

	w := do(r, http.MethodGet, "/v1/users/u1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"defaultTheme":"dark"`)
}

func TestGetUser_Anonymous(t *testing.T) {
	r, uc := setupUserRouter(t, nil)
	uc.On("GetUser", mock.Anything, (*auth.Identity)(nil), usecase.GetUserRequest{ID: "u1"}).
		Return(nil, apperrors.Unauthorized("authentication required"))

	w := do(r, http.MethodGet, "/v1/users/u1", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authentication required", envelope(t, w).Message)
}

func TestListUsers_QueryAliasesAndDefaults(t *testing.T) {
	r, uc := setupUserRouter(t, testIdentity)
	uc.On("ListUsers", mock.Anything, testIdentity, mock.MatchedBy(func(req domain.ListRequest) bool {
		q := req.Query()
		return q.Page == 2 && q.Limit == 5 && q.Order == domain.OrderAsc && q.SortBy == domain.SortUpdatedAt &&
			q.SearchTerm == "john" && q.SelectSoftDeleted
	})).Return(&domain.Page[usecase.UserResponse]{PageNumber: 2, PageSize: 5, TotalItems: 6, TotalPages: 2}, nil)

	w := do(r, http.MethodGet, "/v1/users?page=2&size=5&order=asc&sort=updatedAt&searchTerm=john&selectSoftDeleted=true&unknown=1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalPages":2`)
	uc.AssertExpectations(t)
}

func TestListUsers_InvalidSort(t *testing.T) {
	r, uc := setupUserRouter(t, testIdentity)

	w := do(r, http.MethodGet, "/v1/users?sortBy=password", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, envelope(t, w).Message, "sortBy must be one of: createdAt, updatedAt, deletedAt")
	uc.AssertNotCalled(t, "ListUsers", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateUser_MergesParamIntoBody(t *testing.T) {
	r, uc := setupUserRouter(t, testIdentity)
	uc.On("UpdateUser", mock.Anything, testIdentity, usecase.UpdateUserRequest{ID: "u1", FullName: "Johnny"}).
		Return(&usecase.UserResponse{ID: "u1", FullName: "Johnny"}, nil)

	w := do(r, http.MethodPut, "/v1/users/u1", map[string]any{"fullName": "Johnny"})

	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}

func TestDeleteUser(t *testing.T) {
	r, uc := setupUserRouter(t, testIdentity)
	uc.On("DeleteUser", mock.Anything, testIdentity, usecase.DeleteUserRequest{ID: "u1"}).
		Return(&usecase.DeleteUserResponse{ID: "u1"}, nil)

	w := do(r, http.MethodDelete, "/v1/users/u1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u1"}`, w.Body.String())
}
