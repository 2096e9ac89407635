package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lyceo/charge-api/internal/dto"
	"github.com/lyceo/charge-api/internal/models"
	"github.com/lyceo/charge-api/internal/service"
	appErrors "github.com/lyceo/charge-api/pkg/errors"
	"github.com/lyceo/charge-api/pkg/response"
)

type dstService interface {
	List(ctx context.Context) ([]models.DST, error)
	Create(ctx context.Context, req service.CreateDSTRequest) (*models.DST, error)
	Import(ctx context.Context, rawText string) ([]models.DST, error)
	Delete(ctx context.Context, id string) error
	Audit(ctx context.Context) (*models.ScheduleAudit, error)
	Suggestions(ctx context.Context, preferred time.Time, rangeWeeks int) ([]models.DateSuggestion, error)
	Export(ctx context.Context, format string) ([]byte, string, error)
}

// DSTHandler exposes the supervised-exam calendar over HTTP.
type DSTHandler struct {
	service dstService
}

// NewDSTHandler constructs the handler.
func NewDSTHandler(service dstService) *DSTHandler {
	return &DSTHandler{service: service}
}

// List godoc
// @Summary List all scheduled DSTs
// @Tags DST
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dsts [get]
func (h *DSTHandler) List(c *gin.Context) {
	dsts, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dsts)
}

// Create godoc
// @Summary Schedule a DST manually
// @Tags DST
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /dsts [post]
func (h *DSTHandler) Create(c *gin.Context) {
	var req service.CreateDSTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	dst, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dst)
}

// Import godoc
// @Summary Extract and store DSTs from raw planning text
// @Tags DST
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /dsts/import [post]
func (h *DSTHandler) Import(c *gin.Context) {
	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "text is required"))
		return
	}
	records, err := h.service.Import(c.Request.Context(), req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ImportResponse{Imported: len(records), Records: records})
}

// Delete godoc
// @Summary Remove a scheduled DST
// @Tags DST
// @Param id path string true "DST ID"
// @Success 204
// @Router /dsts/{id} [delete]
func (h *DSTHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Audit godoc
// @Summary Audit the DST calendar for unsafe spacing
// @Tags DST
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dsts/audit [get]
func (h *DSTHandler) Audit(c *gin.Context) {
	audit, err := h.service.Audit(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, audit)
}

// Suggestions godoc
// @Summary Suggest exam dates around a preferred one
// @Tags DST
// @Produce json
// @Param date query string true "Preferred date (YYYY-MM-DD)"
// @Param range query int false "Half-window in weeks" default(4)
// @Success 200 {object} response.Envelope
// @Router /dsts/suggestions [get]
func (h *DSTHandler) Suggestions(c *gin.Context) {
	preferred, err := requiredDateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	rangeWeeks := 0
	if raw := strings.TrimSpace(c.Query("range")); raw != "" {
		rangeWeeks, err = strconv.Atoi(raw)
		if err != nil || rangeWeeks < 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "range must be a positive integer"))
			return
		}
	}
	suggestions, err := h.service.Suggestions(c.Request.Context(), preferred, rangeWeeks)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions)
}

// Export godoc
// @Summary Export the DST calendar as CSV or PDF
// @Tags DST
// @Produce application/octet-stream
// @Param format query string false "pdf or csv" default(pdf)
// @Success 200
// @Router /dsts/export [get]
func (h *DSTHandler) Export(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	payload, filename, err := h.service.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	contentType := "application/pdf"
	if strings.HasSuffix(filename, ".csv") {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}
