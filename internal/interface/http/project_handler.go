package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"timelogger-api/internal/application"
	"timelogger-api/internal/domain/entity"
	"timelogger-api/internal/interface/middleware"
	"timelogger-api/pkg/response"
	"timelogger-api/pkg/validation"
)

type ProjectHandler struct {
	Svc    *application.ProjectService
	Logger *logrus.Logger
}

func NewProjectHandler(svc *application.ProjectService, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{Svc: svc, Logger: logger}
}

type upsertProjectRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type patchProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
}

func projectJSON(p *entity.Project) gin.H {
	return gin.H{
		"id":          p.ID,
		"user_id":     p.UserID,
		"code":        p.Code,
		"name":        p.Name,
		"description": p.Description,
		"priority":    p.Priority,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}

// List GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	u := middleware.UserFromCtx(c)
	list, err := h.Svc.List(c.Request.Context(), u.ID)
	if err != nil {
		response.Fail(c, statusFor(err), message(err), nil)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, p := range list {
		out = append(out, projectJSON(p))
	}
	response.JSON(c, http.StatusOK, out, "projects")
}

// Upsert POST /api/projects/upsert
func (h *ProjectHandler) Upsert(c *gin.Context) {
	u := middleware.UserFromCtx(c)
	var req upsertProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.UpsertByCode(c.Request.Context(), u.ID, application.ProjectInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		response.Fail(c, statusFor(err), message(err), nil)
		return
	}
	response.JSON(c, http.StatusCreated, projectJSON(p), "project upserted")
}

// Update PATCH /api/projects/:code
func (h *ProjectHandler) Update(c *gin.Context) {
	u := middleware.UserFromCtx(c)
	var req patchProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.UpdateByCode(c.Request.Context(), u.ID, c.Param("code"), application.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		response.Fail(c, statusFor(err), message(err), nil)
		return
	}
	response.JSON(c, http.StatusOK, projectJSON(p), "project updated")
}
