package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "user-pref-service/pkg/errors"
	"user-pref-service/pkg/logger"
)

// ErrorHandler is the single place errors become responses. Handlers push errors with
// c.Error and return; the last one is serialized as the error envelope.
func ErrorHandler(exposeStack bool, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := apperrors.Classify(c.Errors.Last().Err)
		l := logger.WithContext(c.Request.Context(), log).With(
			zap.String("kind", appErr.Kind.String()),
			zap.Int("status_code", appErr.StatusCode()),
			zap.String("path", c.Request.URL.Path),
		)
		if appErr.Kind == apperrors.KindInternal || appErr.Kind == apperrors.KindIntegration {
			l.Error("request failed", zap.Error(appErr))
		} else {
			l.Debug("request rejected", zap.Error(appErr))
		}

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(appErr.StatusCode(), appErr.Envelope(exposeStack))
	}
}
