package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulseboard-backend/internal/http/response"
	"github.com/yungbote/pulseboard-backend/internal/services"
)

type DashboardHandler struct {
	dashboard    services.DashboardService
	monetization services.MonetizationService
}

func NewDashboardHandler(dashboard services.DashboardService, monetization services.MonetizationService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, monetization: monetization}
}

// GET /api/dashboard/stats?range=7|30|90
func (h *DashboardHandler) Stats(c *gin.Context) {
	days, ok := queryInt(c, "range")
	if !ok {
		return
	}
	out, err := h.dashboard.Stats(c.Request.Context(), days)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"stats": out})
}

// GET /api/dashboard/monetization?range
func (h *DashboardHandler) Monetization(c *gin.Context) {
	days, ok := queryInt(c, "range")
	if !ok {
		return
	}
	out, err := h.dashboard.Monetization(c.Request.Context(), days)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"monetization": out})
}

// GET /api/dashboard/platform-roi?range
func (h *DashboardHandler) PlatformROI(c *gin.Context) {
	days, ok := queryInt(c, "range")
	if !ok {
		return
	}
	out, err := h.dashboard.PlatformROI(c.Request.Context(), days)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"platforms": out})
}

// POST /api/monetization
func (h *DashboardHandler) RecordMonetization(c *gin.Context) {
	raw, ok := body(c)
	if !ok {
		return
	}
	rec, err := h.monetization.Record(c.Request.Context(), raw)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"record": rec})
}
