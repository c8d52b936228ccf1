package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulseboard-backend/internal/http/response"
	"github.com/yungbote/pulseboard-backend/internal/platform/ctxutil"
	"github.com/yungbote/pulseboard-backend/internal/services"
	"github.com/yungbote/pulseboard-backend/internal/validation"
)

type EngagementModelHandler struct {
	models services.EngagementModelService
}

func NewEngagementModelHandler(models services.EngagementModelService) *EngagementModelHandler {
	return &EngagementModelHandler{models: models}
}

// POST /api/ai/train-engagement-model
// body: { "lookbackPeriod": 30|90|180|365 }
// 200 with the model, 204 when there was too little history to train on.
func (h *EngagementModelHandler) Train(c *gin.Context) {
	raw, ok := body(c)
	if !ok {
		return
	}
	lookback, err := validation.DecodeTrainRequest(raw)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	ctxutil.SetTraceModel(c.Request.Context(), "", int(lookback))
	m, err := h.models.Train(c.Request.Context(), lookback)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	ctxutil.SetTraceModel(c.Request.Context(), m.ModelID, int(m.LookbackPeriod))
	response.RespondOK(c, gin.H{"model": m})
}

// GET /api/ai/engagement-model
func (h *EngagementModelHandler) Latest(c *gin.Context) {
	m, err := h.models.Latest(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	ctxutil.SetTraceModel(c.Request.Context(), m.ModelID, int(m.LookbackPeriod))
	response.RespondOK(c, gin.H{"model": m})
}
