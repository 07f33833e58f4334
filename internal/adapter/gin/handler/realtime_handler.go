package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-pref-service/internal/adapter/cache"
	"user-pref-service/internal/auth"
	apperrors "user-pref-service/pkg/errors"
)

// Upgrader attaches an authenticated websocket connection.
type Upgrader interface {
	Serve(w http.ResponseWriter, r *http.Request, identity *auth.Identity) error
}

// ConnectionReader reads the shared connection state.
type ConnectionReader interface {
	Get(ctx context.Context, clientID string) (*cache.Connection, error)
}

// RealtimeHandler serves the websocket endpoints.
type RealtimeHandler struct {
	hub   Upgrader
	conns ConnectionReader
	log   *zap.Logger
}

// NewRealtimeHandler creates a new RealtimeHandler instance
func NewRealtimeHandler(hub Upgrader, conns ConnectionReader, log *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, conns: conns, log: log}
}

// Connect handles GET /v1/ws
func (h *RealtimeHandler) Connect(c *gin.Context) {
	identity := auth.FromContext(c.Request.Context())
	if identity == nil {
		_ = c.Error(apperrors.Unauthorized("authentication required"))
		return
	}

	// the upgrader has already answered the request when it fails
	if err := h.hub.Serve(c.Writer, c.Request, identity); err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("username", identity.Username), zap.Error(err))
	}
}

// GetConnection handles GET /v1/ws/connections/:clientId
func (h *RealtimeHandler) GetConnection(c *gin.Context) {
	identity := auth.FromContext(c.Request.Context())
	if identity == nil {
		_ = c.Error(apperrors.Unauthorized("authentication required"))
		return
	}

	conn, err := h.conns.Get(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		_ = c.Error(apperrors.Integration("connection state unavailable", apperrors.WithCause(err)))
		return
	}
	if conn == nil || conn.Username != identity.Username {
		_ = c.Error(apperrors.NotFound("connection not found"))
		return
	}

	c.JSON(http.StatusOK, conn)
}
