// internal/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/exportplatform/export-api/internal/config"
	"github.com/exportplatform/export-api/internal/i18n"
	"github.com/exportplatform/export-api/internal/middleware"
	"github.com/exportplatform/export-api/internal/services"
	"github.com/exportplatform/export-api/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	session     config.SessionConfig
	tokenTTL    int // hours
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		session:     cfg.Session,
		tokenTTL:    cfg.JWT.AccessTokenTTL,
	}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName(), token, maxAge, "/", h.session.Domain, h.session.Secure, true)
}

func authPayload(message string, resp *services.AuthResponse) gin.H {
	return gin.H{
		"message":       message,
		"user":          resp.User,
		"token":         resp.AccessToken,
		"refresh_token": resp.RefreshToken,
		"token_type":    resp.TokenType,
		"expires_in":    resp.ExpiresIn,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Register(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, authResponse.AccessToken, authResponse.ExpiresIn)
	utils.CreatedResponse(c, authPayload(i18n.T(lang, i18n.KeyAuthRegisterSuccess), authResponse))
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Login(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, authResponse.AccessToken, authResponse.ExpiresIn)
	utils.SuccessResponse(c, authPayload(i18n.T(lang, i18n.KeyAuthLoginSuccess), authResponse))
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	h.setSessionCookie(c, "", -1)
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuthLogoutSuccess),
	})
}

// POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, authResponse.AccessToken, authResponse.ExpiresIn)
	utils.SuccessResponse(c, authPayload("", authResponse))
}

// GET /auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.authService.GetSessionUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.NoCache(c)
	utils.SuccessResponse(c, gin.H{"user": user})
}

// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), &req); err != nil {
		var se *services.Error
		if errors.As(err, &se) {
			respondError(c, err)
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyAuthResetDeliveryError))
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuthResetCodeSent),
	})
}

// GET /auth/verify-reset-code?code=&email=|phone=
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req services.VerifyResetCodeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := h.authService.VerifyResetCode(&req); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"valid": true})
}

// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(&req); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuthResetSuccess),
	})
}
