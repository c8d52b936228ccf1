package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulseboard-backend/internal/http/response"
	"github.com/yungbote/pulseboard-backend/internal/services"
)

type EngageHandler struct {
	engage services.EngageService
}

func NewEngageHandler(engage services.EngageService) *EngageHandler {
	return &EngageHandler{engage: engage}
}

// GET /api/engage-activities?limit
func (h *EngageHandler) List(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	out, err := h.engage.List(c.Request.Context(), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"activities": out})
}

// POST /api/engage-activities
func (h *EngageHandler) Log(c *gin.Context) {
	raw, ok := body(c)
	if !ok {
		return
	}
	act, err := h.engage.Log(c.Request.Context(), raw)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"activity": act})
}
