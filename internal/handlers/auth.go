package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tooltag/tooltag-backend/internal/apperr"
	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/middleware"
	"github.com/tooltag/tooltag-backend/internal/services"
)

type AuthHandler struct {
	log  *logger.Logger
	auth services.AuthService
}

func NewAuthHandler(baseLog *logger.Logger, auth services.AuthService) *AuthHandler {
	return &AuthHandler{
		log:  baseLog.With("handler", "AuthHandler"),
		auth: auth,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}
	token, err := h.auth.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.SetCookie(middleware.SessionCookie, token, int(h.auth.SessionTTL().Seconds()), "/", "", false, true)
	RespondOK(c, gin.H{"token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

func (h *AuthHandler) Session(c *gin.Context) {
	username, _ := c.Get(middleware.ContextAdminKey)
	RespondOK(c, gin.H{"username": username})
}

func (h *AuthHandler) ResetCredentials(c *gin.Context) {
	var body struct {
		FactoryUsername string `json:"factory_username"`
		FactoryPassword string `json:"factory_password"`
		NewUsername     string `json:"new_username"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}
	if err := h.auth.ResetCredentials(c.Request.Context(), body.FactoryUsername, body.FactoryPassword, body.NewUsername, body.NewPassword); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"reset": true})
}
