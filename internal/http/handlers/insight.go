package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulseboard-backend/internal/http/response"
	"github.com/yungbote/pulseboard-backend/internal/services"
)

type InsightHandler struct {
	insights services.InsightService
}

func NewInsightHandler(insights services.InsightService) *InsightHandler {
	return &InsightHandler{insights: insights}
}

// GET /api/insights?unread=true&limit
func (h *InsightHandler) List(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	out, err := h.insights.List(c.Request.Context(), queryBool(c, "unread"), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"insights": out})
}

// POST /api/insights/:id/read
func (h *InsightHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, err := h.insights.MarkRead(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"insight": in})
}

// POST /api/insights/:id/apply
func (h *InsightHandler) MarkApplied(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, err := h.insights.MarkApplied(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"insight": in})
}
