package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"user-pref-service/internal/usecase/session"
	"user-pref-service/pkg/schema"
)

// SessionHandler issues access tokens.
type SessionHandler struct {
	uc       session.Usecase
	validate *schema.Validator
}

// NewSessionHandler creates a new SessionHandler instance
func NewSessionHandler(uc session.Usecase, v *schema.Validator) *SessionHandler {
	return &SessionHandler{uc: uc, validate: v}
}

// Login handles POST /v1/auth/login
func (h *SessionHandler) Login(c *gin.Context) {
	req, err := decodeBody[session.LoginRequest](c, h.validate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.uc.Login(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
