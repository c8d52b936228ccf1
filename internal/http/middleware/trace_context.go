package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/pulseboard-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext installs a TraceData on the request. Handlers further
// down annotate it with the caller and any engagement model they touched;
// once they return those ids are copied onto the active span.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{
			TraceID:   resolveTraceID(c),
			RequestID: strings.TrimSpace(c.GetHeader(headerRequestID)),
		}
		if td.RequestID == "" {
			td.RequestID = uuid.New().String()
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Set("trace_id", td.TraceID)
		c.Set("request_id", td.RequestID)
		c.Writer.Header().Set(headerTraceID, td.TraceID)
		c.Writer.Header().Set(headerRequestID, td.RequestID)

		c.Next()

		if attrs := traceAttributes(td); len(attrs) > 0 {
			trace.SpanFromContext(c.Request.Context()).SetAttributes(attrs...)
		}
	}
}

// resolveTraceID prefers the caller's header, then the otel span, then a
// fresh id.
func resolveTraceID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(headerTraceID)); id != "" {
		return id
	}
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return uuid.New().String()
}

func traceAttributes(td *ctxutil.TraceData) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if td.UserID != uuid.Nil {
		attrs = append(attrs, attribute.String("pulseboard.user_id", td.UserID.String()))
	}
	if td.ModelID != "" {
		attrs = append(attrs, attribute.String("pulseboard.model_id", td.ModelID))
	}
	if td.Lookback > 0 {
		attrs = append(attrs, attribute.Int("pulseboard.lookback_days", td.Lookback))
	}
	return attrs
}
