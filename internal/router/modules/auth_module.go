package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"timelogger-api/internal/application"
	"timelogger-api/internal/container"
	handlers "timelogger-api/internal/interface/http"
	"timelogger-api/internal/interface/middleware"
)

// AuthModule wires the auth flow under /api/auth.
// Public: register, login, refresh, logout (CSRF-guarded).
// Protected: me, settings, revoke_all.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Svc     *application.AuthService
}

func NewAuthModule(h *handlers.AuthHandler, svc *application.AuthService) *AuthModule {
	return &AuthModule{Handler: h, Svc: svc}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)

	// Logout clears cookies even for expired sessions, so no auth guard;
	// CSRF keeps cross-site pages from triggering it.
	rg.POST("/auth/logout", middleware.CSRF(), m.Handler.Logout)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Svc))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/auth/me", m.Handler.Me)
		auth.PATCH("/auth/me/settings", middleware.CSRF(), m.Handler.UpdateSettings)
		auth.POST("/auth/revoke_all", m.Handler.RevokeAll)
	}
}
