package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulseboard-backend/internal/http/response"
	"github.com/yungbote/pulseboard-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /api/me
func (uh *UserHandler) UpdateProfile(c *gin.Context) {
	raw, ok := body(c)
	if !ok {
		return
	}
	me, err := uh.userService.UpdateProfile(c.Request.Context(), raw)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// GET /api/me/preferences
func (uh *UserHandler) GetPreferences(c *gin.Context) {
	prefs, err := uh.userService.GetPreferences(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}

// PUT /api/me/preferences replaces the document; omitted keys reset to
// their defaults.
func (uh *UserHandler) ReplacePreferences(c *gin.Context) {
	raw, ok := body(c)
	if !ok {
		return
	}
	prefs, err := uh.userService.ReplacePreferences(c.Request.Context(), raw)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}

// PATCH /api/me/preferences merges onto what is stored.
func (uh *UserHandler) PatchPreferences(c *gin.Context) {
	raw, ok := body(c)
	if !ok {
		return
	}
	prefs, err := uh.userService.PatchPreferences(c.Request.Context(), raw)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}
