package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"timelogger-api/internal/application"
	"timelogger-api/internal/container"
	handlers "timelogger-api/internal/interface/http"
	"timelogger-api/internal/interface/middleware"
)

// TimeEntryModule wires time-entry CRUD under /api/time-entries. All routes
// require an authenticated user; mutations additionally require CSRF.
type TimeEntryModule struct {
	Handler *handlers.TimeEntryHandler
	Svc     *application.AuthService
}

func NewTimeEntryModule(h *handlers.TimeEntryHandler, svc *application.AuthService) *TimeEntryModule {
	return &TimeEntryModule{Handler: h, Svc: svc}
}

func (m *TimeEntryModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/time-entries")
	g.Use(middleware.Auth(m.Svc))
	g.Use(middleware.CSRF())
	g.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		g.GET("", m.Handler.List)
		g.POST("", m.Handler.Create)
		g.GET("/:id", m.Handler.Get)
		g.PATCH("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.Delete)
	}
}
