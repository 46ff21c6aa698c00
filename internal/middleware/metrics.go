package middleware

import (
	"strconv"
	"time"

	"github.com/devzoku/devzoku-api/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics counts requests and observes their latency per matched route
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipObservability(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
