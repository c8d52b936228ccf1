package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulseboard-backend/internal/http/response"
	"github.com/yungbote/pulseboard-backend/internal/observability"
)

// streamRoutes stay open for the life of a client; their duration says
// nothing about serving latency.
var streamRoutes = map[string]bool{
	"/api/sse/stream": true,
}

// Metrics counts requests by route, status and the response code the
// handler chose, so validation rejections, empty training results and
// training conflicts are visible per endpoint.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		dur := time.Since(start)
		if streamRoutes[route] {
			dur = -1
		}
		status := strconv.Itoa(c.Writer.Status())
		m.ObserveAPI(c.Request.Method, route, status, response.Code(c), dur)
	}
}
