package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"timelogger-api/internal/application"
	"timelogger-api/internal/domain/entity"
	"timelogger-api/internal/domain/repository"
	"timelogger-api/internal/interface/middleware"
	"timelogger-api/pkg/helpers"
	"timelogger-api/pkg/response"
	"timelogger-api/pkg/validation"
)

// TimeEntryHandler exposes time-entry CRUD, always scoped to the
// authenticated user.
type TimeEntryHandler struct {
	Svc    *application.TimeEntryService
	Logger *logrus.Logger
}

func NewTimeEntryHandler(svc *application.TimeEntryService, logger *logrus.Logger) *TimeEntryHandler {
	return &TimeEntryHandler{Svc: svc, Logger: logger}
}

type createEntryRequest struct {
	ProjectCode string     `json:"project_code" binding:"required"`
	Activity    string     `json:"activity" binding:"required"`
	StartUTC    time.Time  `json:"start_utc" binding:"required"`
	EndUTC      *time.Time `json:"end_utc"`
	Notes       string     `json:"notes"`
}

func entryJSON(e *entity.TimeEntry) gin.H {
	var end any
	if e.EndUTC != nil {
		end = e.EndUTC.UTC()
	}
	return gin.H{
		"id":           e.ID,
		"user_id":      e.UserID,
		"project_code": e.ProjectCode,
		"activity":     e.Activity,
		"start_utc":    e.StartUTC.UTC(),
		"end_utc":      end,
		"seconds":      e.Seconds,
		"notes":        e.Notes,
		"running":      e.Running(),
		"created_at":   e.CreatedAt,
		"updated_at":   e.UpdatedAt,
	}
}

func entriesJSON(list []*entity.TimeEntry) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, e := range list {
		out = append(out, entryJSON(e))
	}
	return out
}

// roundedEntry returns a presentation copy with the window snapped to the
// user's increment and the duration recomputed from the snapped window.
// Stored values stay exact; rounding is display-only.
func roundedEntry(e *entity.TimeEntry, minutes int) *entity.TimeEntry {
	cp := *e
	cp.StartUTC = helpers.RoundToIncrement(e.StartUTC, minutes)
	if e.EndUTC != nil {
		end := helpers.RoundToIncrement(*e.EndUTC, minutes)
		cp.EndUTC = &end
		cp.Seconds = application.ComputeDuration(cp.StartUTC, end)
	}
	return &cp
}

// List GET /api/time-entries?from=&to=&skip=&limit=&rounded=
func (h *TimeEntryHandler) List(c *gin.Context) {
	u := middleware.UserFromCtx(c)

	f := repository.ListFilter{Limit: 100}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "invalid 'from' timestamp", nil)
			return
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, "invalid 'to' timestamp", nil)
			return
		}
		f.To = &t
	}
	if v := c.Query("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Offset = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 500 {
			f.Limit = n
		}
	}

	list, err := h.Svc.List(c.Request.Context(), u.ID, f)
	if err != nil {
		response.Fail(c, statusFor(err), message(err), nil)
		return
	}
	if c.Query("rounded") == "true" {
		for i, e := range list {
			list[i] = roundedEntry(e, u.TimeIncrementMinutes)
		}
	}
	response.JSON(c, http.StatusOK, entriesJSON(list), "time entries")
}

// Create POST /api/time-entries — ownership forced to the current user.
func (h *TimeEntryHandler) Create(c *gin.Context) {
	u := middleware.UserFromCtx(c)
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	e, err := h.Svc.Create(c.Request.Context(), u.ID, application.CreateEntryInput{
		ProjectCode: req.ProjectCode,
		Activity:    req.Activity,
		Start:       req.StartUTC,
		End:         req.EndUTC,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Fail(c, statusFor(err), message(err), nil)
		return
	}
	response.JSON(c, http.StatusCreated, entryJSON(e), "time entry created")
}

// Get GET /api/time-entries/:id
func (h *TimeEntryHandler) Get(c *gin.Context) {
	u := middleware.UserFromCtx(c)
	e, err := h.Svc.Get(c.Request.Context(), u.ID, c.Param("id"))
	if err != nil {
		response.Fail(c, statusFor(err), message(err), nil)
		return
	}
	response.JSON(c, http.StatusOK, entryJSON(e), "time entry")
}

// Update PATCH /api/time-entries/:id — partial update. Absent fields keep
// their stored value; an explicit null end_utc re-opens the timer, so key
// presence is detected on the raw document before typed decoding.
func (h *TimeEntryHandler) Update(c *gin.Context) {
	u := middleware.UserFromCtx(c)

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	patch, err := buildEntryPatch(raw)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"payload": err.Error()})
		return
	}

	e, err := h.Svc.Update(c.Request.Context(), u.ID, c.Param("id"), patch)
	if err != nil {
		response.Fail(c, statusFor(err), message(err), nil)
		return
	}
	response.JSON(c, http.StatusOK, entryJSON(e), "time entry updated")
}

func buildEntryPatch(raw map[string]json.RawMessage) (application.EntryPatch, error) {
	var patch application.EntryPatch
	if v, ok := raw["project_code"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return patch, err
		}
		patch.ProjectCode = &s
	}
	if v, ok := raw["activity"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return patch, err
		}
		patch.Activity = &s
	}
	if v, ok := raw["notes"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return patch, err
		}
		patch.Notes = &s
	}
	if v, ok := raw["start_utc"]; ok {
		var t time.Time
		if err := json.Unmarshal(v, &t); err != nil {
			return patch, err
		}
		patch.Start = &t
	}
	if v, ok := raw["end_utc"]; ok {
		patch.EndSet = true
		if string(v) != "null" {
			var t time.Time
			if err := json.Unmarshal(v, &t); err != nil {
				return patch, err
			}
			patch.End = &t
		}
	}
	return patch, nil
}

// Delete DELETE /api/time-entries/:id
func (h *TimeEntryHandler) Delete(c *gin.Context) {
	u := middleware.UserFromCtx(c)
	if err := h.Svc.Delete(c.Request.Context(), u.ID, c.Param("id")); err != nil {
		response.Fail(c, statusFor(err), message(err), nil)
		return
	}
	c.Status(http.StatusNoContent)
}
