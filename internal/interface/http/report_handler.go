package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/StuFraser/aqua-ripple/internal/domain/report"
	apperrors "github.com/StuFraser/aqua-ripple/pkg/errors"
)

// ReportService manages submitted water reports.
type ReportService interface {
	Create(ctx context.Context, r report.WaterReport) (report.WaterReport, error)
	List(ctx context.Context, limit int) ([]report.WaterReport, error)
	Get(ctx context.Context, id string) (report.WaterReport, error)
}

// ReportHandler exposes the water report endpoints.
type ReportHandler struct {
	svc    ReportService
	logger *slog.Logger
}

// NewReportHandler constructs the report handler.
func NewReportHandler(svc ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logger.With("component", "http.reports")}
}

// Create handles POST /api/v1/reports.
func (h *ReportHandler) Create(c *gin.Context) {
	var req report.WaterReport
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, errMessage(err), err))
		return
	}

	created, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Header("Location", "/api/v1/reports/"+created.ID.String())
	c.JSON(http.StatusCreated, created)
}

// List handles GET /api/v1/reports.
func (h *ReportHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "limit must be a non-negative integer", err))
			return
		}
		limit = n
	}

	reports, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	if reports == nil {
		reports = []report.WaterReport{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// Get handles GET /api/v1/reports/:id.
func (h *ReportHandler) Get(c *gin.Context) {
	rep, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, rep)
}
