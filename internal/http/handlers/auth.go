package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulseboard-backend/internal/http/response"
	"github.com/yungbote/pulseboard-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/register
func (ah *AuthHandler) Register(c *gin.Context) {
	raw, ok := body(c)
	if !ok {
		return
	}
	session, err := ah.authService.Register(c.Request.Context(), raw)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// POST /api/login
func (ah *AuthHandler) Login(c *gin.Context) {
	raw, ok := body(c)
	if !ok {
		return
	}
	session, err := ah.authService.Login(c.Request.Context(), raw)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, session)
}
