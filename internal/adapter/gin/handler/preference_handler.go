package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-pref-service/internal/auth"
	domain "user-pref-service/internal/domain/user"
	"user-pref-service/internal/usecase/preference"
	"user-pref-service/pkg/schema"
)

// PreferenceHandler handles HTTP requests for preference operations
type PreferenceHandler struct {
	uc       preference.Usecase
	validate *schema.Validator
	log      *zap.Logger
}

// NewPreferenceHandler creates a new PreferenceHandler instance
func NewPreferenceHandler(uc preference.Usecase, v *schema.Validator, log *zap.Logger) *PreferenceHandler {
	return &PreferenceHandler{uc: uc, validate: v, log: log}
}

// CreatePreference handles POST /v1/preferences
func (h *PreferenceHandler) CreatePreference(c *gin.Context) {
	req, err := decodeBody[preference.CreatePreferenceRequest](c, h.validate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.uc.CreatePreference(c.Request.Context(), auth.FromContext(c.Request.Context()), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetPreference handles GET /v1/preferences/:userId
func (h *PreferenceHandler) GetPreference(c *gin.Context) {
	req, err := decodeQuery[preference.GetPreferenceRequest](c, h.validate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.uc.GetPreference(c.Request.Context(), auth.FromContext(c.Request.Context()), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListPreferences handles GET /v1/preferences
func (h *PreferenceHandler) ListPreferences(c *gin.Context) {
	req, err := decodeQuery[domain.ListRequest](c, h.validate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	page, err := h.uc.ListPreferences(c.Request.Context(), auth.FromContext(c.Request.Context()), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// UpdatePreference handles PUT /v1/preferences/:userId
func (h *PreferenceHandler) UpdatePreference(c *gin.Context) {
	req, err := decodeBody[preference.UpdatePreferenceRequest](c, h.validate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.uc.UpdatePreference(c.Request.Context(), auth.FromContext(c.Request.Context()), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeletePreference handles DELETE /v1/preferences/:userId
func (h *PreferenceHandler) DeletePreference(c *gin.Context) {
	req, err := decodeQuery[preference.DeletePreferenceRequest](c, h.validate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp, err := h.uc.DeletePreference(c.Request.Context(), auth.FromContext(c.Request.Context()), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
