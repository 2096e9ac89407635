package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lyceo/charge-api/internal/dto"
	"github.com/lyceo/charge-api/internal/models"
	"github.com/lyceo/charge-api/internal/service"
	appErrors "github.com/lyceo/charge-api/pkg/errors"
	"github.com/lyceo/charge-api/pkg/response"
)

type assignmentService interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
	Create(ctx context.Context, req service.CreateAssignmentRequest) (*models.Assignment, *models.ConflictReport, error)
	SetDone(ctx context.Context, id string, done bool) error
	CheckConflicts(ctx context.Context, req service.CreateAssignmentRequest) (*models.ConflictReport, error)
	Daily(ctx context.Context, classID string, date time.Time) (*models.DailySummary, error)
	Weekly(ctx context.Context, classID string, date time.Time) (*models.WeeklySummary, error)
	Stats(ctx context.Context, classID string, start, end time.Time) (*models.WorkloadStats, error)
}

// WorkloadHandler wires assignment intake and the workload engine to HTTP
// endpoints.
type WorkloadHandler struct {
	service assignmentService
}

// NewWorkloadHandler constructs the handler.
func NewWorkloadHandler(service assignmentService) *WorkloadHandler {
	return &WorkloadHandler{service: service}
}

// ListAssignments godoc
// @Summary List assignments
// @Tags Workload
// @Produce json
// @Param classId query string false "Class ID"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *WorkloadHandler) ListAssignments(c *gin.Context) {
	filter := models.AssignmentFilter{
		ClassID: strings.TrimSpace(c.Query("classId")),
		Subject: strings.TrimSpace(c.Query("subject")),
	}
	assignments, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments)
}

// CreateAssignment godoc
// @Summary Create an assignment, returning the conflict projection
// @Tags Workload
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *WorkloadHandler) CreateAssignment(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	assignment, report, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.AssignmentCreatedResponse{Assignment: *assignment, Conflicts: *report})
}

// SetDone godoc
// @Summary Mark an assignment done or not done
// @Tags Workload
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{id}/done [patch]
func (h *WorkloadHandler) SetDone(c *gin.Context) {
	var body struct {
		Done bool `json:"done"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.service.SetDone(c.Request.Context(), c.Param("id"), body.Done); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CheckConflicts godoc
// @Summary Dry-run conflict projection for a candidate assignment
// @Tags Workload
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /workload/conflicts [post]
func (h *WorkloadHandler) CheckConflicts(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	report, err := h.service.CheckConflicts(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Daily godoc
// @Summary Daily workload summary
// @Tags Workload
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Param classId query string false "Class ID"
// @Success 200 {object} response.Envelope
// @Router /workload/daily [get]
func (h *WorkloadHandler) Daily(c *gin.Context) {
	date, err := dateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.Daily(c.Request.Context(), strings.TrimSpace(c.Query("classId")), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Weekly godoc
// @Summary Weekly workload summary with daily breakdown
// @Tags Workload
// @Produce json
// @Param date query string false "Any date in the target week"
// @Param classId query string false "Class ID"
// @Success 200 {object} response.Envelope
// @Router /workload/weekly [get]
func (h *WorkloadHandler) Weekly(c *gin.Context) {
	date, err := dateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.Weekly(c.Request.Context(), strings.TrimSpace(c.Query("classId")), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Stats godoc
// @Summary Workload statistics over a period
// @Tags Workload
// @Produce json
// @Param start query string true "Period start (YYYY-MM-DD)"
// @Param end query string true "Period end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /workload/stats [get]
func (h *WorkloadHandler) Stats(c *gin.Context) {
	start, err := requiredDateQuery(c, "start")
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := requiredDateQuery(c, "end")
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), strings.TrimSpace(c.Query("classId")), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

func dateQuery(c *gin.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" format, expected YYYY-MM-DD")
	}
	return parsed, nil
}

func requiredDateQuery(c *gin.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, name+" is required")
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" format, expected YYYY-MM-DD")
	}
	return parsed, nil
}
