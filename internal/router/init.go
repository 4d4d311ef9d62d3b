package router

import (
	"timelogger-api/internal/application"
	"timelogger-api/internal/container"
	pginfra "timelogger-api/internal/infrastructure/postgres"
	handlers "timelogger-api/internal/interface/http"
	"timelogger-api/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup.
func InitModules(r *Registry) {
	pool := container.GetPGPool()
	logger := container.GetLogger()

	userRepo := pginfra.NewUserRepository(pool)
	entryRepo := pginfra.NewTimeEntryRepository(pool)
	projectRepo := pginfra.NewProjectRepository(pool)

	authSvc := application.NewAuthService(userRepo, container.GetJWT(), logger)
	entrySvc := application.NewTimeEntryService(entryRepo, projectRepo, logger)
	projectSvc := application.NewProjectService(projectRepo, logger)

	authHandler := handlers.NewAuthHandler(authSvc, container.GetCookies(), logger)
	entryHandler := handlers.NewTimeEntryHandler(entrySvc, logger)
	projectHandler := handlers.NewProjectHandler(projectSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, authSvc))
	r.Add(modules.NewTimeEntryModule(entryHandler, authSvc))
	r.Add(modules.NewProjectModule(projectHandler, authSvc))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
