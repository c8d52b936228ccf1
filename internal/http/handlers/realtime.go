package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pulseboard-backend/internal/http/response"
	"github.com/yungbote/pulseboard-backend/internal/platform/ctxutil"
	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
	"github.com/yungbote/pulseboard-backend/internal/realtime"
)

// StreamMetrics tracks open SSE connections.
type StreamMetrics interface {
	SSEClientConnected()
	SSEClientDisconnected()
}

type RealtimeHandler struct {
	log     *logger.Logger
	hub     *realtime.SSEHub
	metrics StreamMetrics
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, metrics StreamMetrics) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub, metrics: metrics}
}

// GET /api/sse/stream
// Each connection gets its own client on the caller's user channel; a
// reconnect simply opens a new one.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	client := h.hub.NewSSEClient(userID)
	h.log.Debug("SSE stream open", "user_id", userID, "client_id", client.ID)
	if h.metrics != nil {
		h.metrics.SSEClientConnected()
		defer h.metrics.SSEClientDisconnected()
	}
	defer h.hub.CloseClient(client)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
	h.log.Debug("SSE stream closed", "user_id", userID, "client_id", client.ID)
}
