package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"user-pref-service/pkg/metrics"
)

// Metrics records Prometheus request metrics labeled by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		done := metrics.TrackInFlight()
		start := time.Now()

		c.Next()

		done()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
