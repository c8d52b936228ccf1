package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulseboard-backend/internal/http/response"
	"github.com/yungbote/pulseboard-backend/internal/services"
)

type SocialAccountHandler struct {
	accounts services.SocialAccountService
}

func NewSocialAccountHandler(accounts services.SocialAccountService) *SocialAccountHandler {
	return &SocialAccountHandler{accounts: accounts}
}

// GET /api/social-accounts?includeInactive=true
func (h *SocialAccountHandler) List(c *gin.Context) {
	out, err := h.accounts.List(c.Request.Context(), queryBool(c, "includeInactive"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"accounts": out})
}

// POST /api/social-accounts
func (h *SocialAccountHandler) Link(c *gin.Context) {
	raw, ok := body(c)
	if !ok {
		return
	}
	acct, err := h.accounts.Link(c.Request.Context(), raw)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"account": acct})
}

// POST /api/social-accounts/:id/sync
func (h *SocialAccountHandler) Sync(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	acct, err := h.accounts.Sync(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"account": acct})
}

// DELETE /api/social-accounts/:id
func (h *SocialAccountHandler) Disconnect(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.accounts.Disconnect(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
