package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/freight-cost-reports/internal/http/middleware"
	"github.com/nurpe/freight-cost-reports/internal/model"
	"github.com/nurpe/freight-cost-reports/internal/service"
)

type ReportService interface {
	ListCosts(ctx context.Context, input service.ListCostsInput) (*model.CostPage, error)
	GetCostDetail(ctx context.Context, input service.ReportInput, partyID int64) (*model.CostDetail, error)
	ListPartyTrips(ctx context.Context, input service.ReportInput, partyID int64) (*model.PartyTrips, error)
	ExportCosts(ctx context.Context, input service.ReportInput) (*model.CostExport, error)
	RenderExport(ctx context.Context, input service.ReportInput, format service.ExportFormat) (*service.ExportFile, error)
}

type Handler struct {
	reports ReportService
	log     zerolog.Logger
}

func NewHandler(reports ReportService, log zerolog.Logger) *Handler {
	return &Handler{reports: reports, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/reports/:kind/costs")
	protected.Use(authMiddleware)
	protected.GET("", h.listCosts)
	protected.GET("/export", h.exportCosts)
	protected.GET("/:id", h.getCostDetail)
	protected.GET("/:id/trips", h.listPartyTrips)
}

func (h *Handler) listCosts(c *gin.Context) {
	input, ok := h.reportInput(c)
	if !ok {
		return
	}
	page, err := parseOptionalInt(c.Query("page"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	pageSize, err := parseOptionalInt(c.Query("page_size"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page_size"})
		return
	}

	result, err := h.reports.ListCosts(c.Request.Context(), service.ListCostsInput{
		ReportInput: input,
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getCostDetail(c *gin.Context) {
	input, ok := h.reportInput(c)
	if !ok {
		return
	}
	partyID, ok := parsePartyID(c)
	if !ok {
		return
	}

	result, err := h.reports.GetCostDetail(c.Request.Context(), input, partyID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	// nil marshals to null: the party exists but has nothing in range
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *Handler) listPartyTrips(c *gin.Context) {
	input, ok := h.reportInput(c)
	if !ok {
		return
	}
	partyID, ok := parsePartyID(c)
	if !ok {
		return
	}

	result, err := h.reports.ListPartyTrips(c.Request.Context(), input, partyID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) exportCosts(c *gin.Context) {
	input, ok := h.reportInput(c)
	if !ok {
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	if format == service.ExportJSON {
		result, err := h.reports.ExportCosts(c.Request.Context(), input)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	file, err := h.reports.RenderExport(c.Request.Context(), input, format)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+file.FileName+"\"")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// reportInput reads the parameters every report route shares. It writes the
// error response itself and returns false on bad input.
func (h *Handler) reportInput(c *gin.Context) (service.ReportInput, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return service.ReportInput{}, false
	}

	kind, err := parsePartyKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown report kind"})
		return service.ReportInput{}, false
	}

	start, err := parseDate(c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return service.ReportInput{}, false
	}
	end, err := parseDate(c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return service.ReportInput{}, false
	}

	ids, err := parseIDList(c.QueryArray("driver_report_ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver_report_ids"})
		return service.ReportInput{}, false
	}

	return service.ReportInput{
		Kind:            kind,
		OrganizationID:  principal.OrgID,
		DriverReportIDs: ids,
		StartDate:       start,
		EndDate:         end,
	}, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		h.log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.FullPath()).
			Msg("cost report failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parsePartyKind(raw string) (model.PartyKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "subcontractors":
		return model.PartySubcontractor, nil
	case "drivers":
		return model.PartyDriver, nil
	case "customers":
		return model.PartyCustomer, nil
	default:
		return "", service.ErrInvalidInput
	}
}

func parsePartyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

// parseIDList accepts both driver_report_ids=1,2 and repeated parameters.
// An absent parameter yields an empty list.
func parseIDList(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("%w: bad id %q", service.ErrInvalidInput, part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func parseOptionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
