package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"timelogger-api/internal/application"
	"timelogger-api/internal/container"
	handlers "timelogger-api/internal/interface/http"
	"timelogger-api/internal/interface/middleware"
)

// ProjectModule wires the project catalog under /api/projects.
type ProjectModule struct {
	Handler *handlers.ProjectHandler
	Svc     *application.AuthService
}

func NewProjectModule(h *handlers.ProjectHandler, svc *application.AuthService) *ProjectModule {
	return &ProjectModule{Handler: h, Svc: svc}
}

func (m *ProjectModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/projects")
	g.Use(middleware.Auth(m.Svc))
	g.Use(middleware.CSRF())
	g.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		g.GET("", m.Handler.List)
		g.POST("/upsert", m.Handler.Upsert)
		g.PATCH("/:code", m.Handler.Update)
	}
}
