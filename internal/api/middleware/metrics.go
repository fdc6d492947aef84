package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"tenant-deployer/internal/pkg/metrics"
)

// MetricsMiddleware 按路由模板统计请求，未匹配路由归为 unmatched
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
