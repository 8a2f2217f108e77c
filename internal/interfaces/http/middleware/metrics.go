package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orderops/backend/internal/infrastructure/metrics"
)

// HTTPMetrics records request count, latency and in-flight requests in the
// Prometheus registry, labelled by the matched route pattern
func HTTPMetrics(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if reg == nil {
			c.Next()
			return
		}
		done := reg.RequestStarted()
		start := time.Now()

		c.Next()

		done()
		reg.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
