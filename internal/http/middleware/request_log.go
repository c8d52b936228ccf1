package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pulseboard-backend/internal/http/response"
	"github.com/yungbote/pulseboard-backend/internal/platform/ctxutil"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
)

// RequestLogger writes one line per request once handlers have run, carrying
// whatever the request's TraceData collected.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil || c.FullPath() == "/healthcheck" || c.FullPath() == "/metrics" {
			return
		}
		status := c.Writer.Status()
		fields := requestFields(c, status, time.Since(start))

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func requestFields(c *gin.Context, status int, dur time.Duration) []interface{} {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	fields := []interface{}{
		"method", c.Request.Method,
		"path", path,
		"status", status,
		"duration_ms", dur.Milliseconds(),
	}
	if code := response.Code(c); code != "" {
		fields = append(fields, "code", code)
	}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		if td.UserID != uuid.Nil {
			fields = append(fields, "user_id", td.UserID.String())
		}
		if td.ModelID != "" {
			fields = append(fields, "model_id", td.ModelID)
		}
		if td.Lookback > 0 {
			fields = append(fields, "lookback_days", td.Lookback)
		}
	}
	if len(c.Errors) > 0 {
		fields = append(fields, "error", c.Errors.String())
	}
	return fields
}
