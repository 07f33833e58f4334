package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-pref-service/internal/auth"
	domain "user-pref-service/internal/domain/user"
	"user-pref-service/internal/usecase/user"
	"user-pref-service/pkg/logger"
	"user-pref-service/pkg/schema"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc       user.Usecase
	validate *schema.Validator
	log      *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, v *schema.Validator, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:       uc,
		validate: v,
		log:      log,
	}
}

// CreateUser handles POST /v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	req, err := decodeBody[user.CreateUserRequest](c, h.validate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("user created", zap.String("id", resp.ID))
	c.JSON(http.StatusCreated, resp)
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	req, err := decodeQuery[user.GetUserRequest](c, h.validate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), auth.FromContext(c.Request.Context()), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListUsers handles GET /v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	req, err := decodeQuery[domain.ListRequest](c, h.validate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	page, err := h.uc.ListUsers(c.Request.Context(), auth.FromContext(c.Request.Context()), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// UpdateUser handles PUT /v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	req, err := decodeBody[user.UpdateUserRequest](c, h.validate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.uc.UpdateUser(c.Request.Context(), auth.FromContext(c.Request.Context()), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteUser handles DELETE /v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	req, err := decodeQuery[user.DeleteUserRequest](c, h.validate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.uc.DeleteUser(c.Request.Context(), auth.FromContext(c.Request.Context()), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
