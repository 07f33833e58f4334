package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewHTTPServer wraps the Gin router in an http.Server with conservative timeouts.
// WriteTimeout stays unset: websocket connections outlive a single write deadline
// and set their own per-frame deadlines.
func NewHTTPServer(router *gin.Engine, addr string, l *zap.Logger) *http.Server {
	l.Info("REST API configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
