package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"timelogger-api/internal/application"
	"timelogger-api/internal/domain/entity"
	"timelogger-api/internal/interface/middleware"
	"timelogger-api/pkg/helpers"
	"timelogger-api/pkg/response"
	"timelogger-api/pkg/validation"
)

// AuthHandler exposes the cookie-based auth flow: register, login, refresh,
// revoke-all, logout and the profile endpoints.
type AuthHandler struct {
	Svc     *application.AuthService
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, cookies *helpers.CookieManager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type settingsRequest struct {
	TimeIncrementMinutes int `json:"time_increment_minutes" binding:"required,oneof=1 5 10 15"`
}

// profileJSON is the public user representation; password hash and refresh
// state never leave the server.
func profileJSON(u *entity.User) gin.H {
	return gin.H{
		"id":                     u.ID,
		"email":                  u.Email,
		"is_active":              u.IsActive,
		"email_verified":         u.EmailVerified,
		"time_increment_minutes": u.TimeIncrementMinutes,
		"created_at":             u.CreatedAt,
		"updated_at":             u.UpdatedAt,
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, tokens, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(c, statusFor(err), message(err), nil)
		return
	}
	h.Cookies.SetSession(c, tokens.Access, tokens.Refresh, tokens.CSRF)
	response.JSON(c, http.StatusCreated, profileJSON(u), "registered")
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, tokens, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(c, statusFor(err), message(err), nil)
		return
	}
	h.Cookies.SetSession(c, tokens.Access, tokens.Refresh, tokens.CSRF)
	response.JSON(c, http.StatusOK, profileJSON(u), "login successful")
}

// Refresh POST /api/auth/refresh — rotates the refresh token on every call.
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw, _ := c.Cookie(helpers.CookieRefreshToken)
	u, tokens, err := h.Svc.Refresh(c.Request.Context(), raw)
	if err != nil {
		response.Fail(c, statusFor(err), message(err), nil)
		return
	}
	h.Cookies.SetSession(c, tokens.Access, tokens.Refresh, tokens.CSRF)
	response.JSON(c, http.StatusOK, profileJSON(u), "token refreshed")
}

// RevokeAll POST /api/auth/revoke_all — bumps token_version to invalidate
// every outstanding token, then clears cookies.
func (h *AuthHandler) RevokeAll(c *gin.Context) {
	u := middleware.UserFromCtx(c)
	if u == nil {
		response.Fail(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if err := h.Svc.RevokeAll(c.Request.Context(), u); err != nil {
		response.Fail(c, statusFor(err), message(err), nil)
		return
	}
	h.Cookies.Clear(c)
	response.JSON(c, http.StatusOK, gin.H{"revoked": true}, "all sessions revoked")
}

// Logout POST /api/auth/logout — clears cookies; best-effort invalidation of
// the stored refresh slot when the access token still resolves.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	raw, _ := c.Cookie(helpers.CookieAccessToken)
	h.Svc.Logout(c.Request.Context(), raw)
	response.JSON(c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	u := middleware.UserFromCtx(c)
	if u == nil {
		response.Fail(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	response.JSON(c, http.StatusOK, profileJSON(u), "profile")
}

// UpdateSettings PATCH /api/auth/me/settings — rounding preference.
func (h *AuthHandler) UpdateSettings(c *gin.Context) {
	u := middleware.UserFromCtx(c)
	if u == nil {
		response.Fail(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.UpdateTimeIncrement(c.Request.Context(), u, req.TimeIncrementMinutes); err != nil {
		response.Fail(c, statusFor(err), message(err), nil)
		return
	}
	response.JSON(c, http.StatusOK, profileJSON(u), "settings updated")
}
