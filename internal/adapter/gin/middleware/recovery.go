package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "user-pref-service/pkg/errors"
	"user-pref-service/pkg/logger"
)

// Recovery turns a panic into an Internal error for ErrorHandler to serialize.
// It must be registered after ErrorHandler.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.WithContext(c.Request.Context(), log).Error("panic recovered",
					zap.Any("panic", r),
					zap.String("stack", stack),
				)
				_ = c.Error(apperrors.Internal("internal server error",
					apperrors.WithCause(fmt.Errorf("panic: %v", r)),
					apperrors.WithStack(stack),
				))
				c.Abort()
			}
		}()
		c.Next()
	}
}
