package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMiddleware records request counts and latencies labeled by gin
// route pattern, so /api/export/:format stays one series.
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
