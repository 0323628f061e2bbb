package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/StuFraser/aqua-ripple/internal/domain/imagery"
	"github.com/StuFraser/aqua-ripple/internal/domain/location"
	"github.com/StuFraser/aqua-ripple/internal/domain/waterquality"
	apperrors "github.com/StuFraser/aqua-ripple/pkg/errors"
)

const (
	analysisIDHeader = "X-Analysis-ID"
	serviceMessage   = "AquaRipple Analyse Service Running"
)

// Analyzer runs water quality analyses and manages their archive.
type Analyzer interface {
	Analyze(ctx context.Context, req waterquality.Request) (waterquality.Result, error)
	Archive(ctx context.Context, result waterquality.Result) string
	Archived(ctx context.Context, id string) (waterquality.Result, error)
}

// LocationLookup identifies water bodies at coordinates.
type LocationLookup interface {
	Lookup(ctx context.Context, c imagery.Coordinate) (location.Result, error)
}

// Handler wires the analysis and location endpoints to the domain services.
type Handler struct {
	analyzer Analyzer
	lookup   LocationLookup
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(analyzer Analyzer, lookup LocationLookup, logger *slog.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		lookup:   lookup,
		logger:   logger.With("component", "http.handler"),
	}
}

type coordinateRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

func (r coordinateRequest) coordinate() imagery.Coordinate {
	return imagery.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

type analyseRequest struct {
	coordinateRequest
	AIMode *bool `json:"ai_mode"`
}

// Analyse handles POST /api/v1/analyse.
func (h *Handler) Analyse(c *gin.Context) {
	var req analyseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, errMessage(err), err))
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), waterquality.Request{
		Coordinate: req.coordinate(),
		AIMode:     req.AIMode,
	})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	if id := h.analyzer.Archive(c.Request.Context(), result); id != "" {
		c.Header(analysisIDHeader, id)
	}
	c.JSON(http.StatusOK, result)
}

// LookupLocation handles POST /api/v1/location/lookup.
func (h *Handler) LookupLocation(c *gin.Context) {
	var req coordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, errMessage(err), err))
		return
	}

	result, err := h.lookup.Lookup(c.Request.Context(), req.coordinate())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAnalysis handles GET /api/v1/analyses/:id.
func (h *Handler) GetAnalysis(c *gin.Context) {
	result, err := h.analyzer.Archived(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// Root answers GET / with the service banner.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": serviceMessage})
}

// Health answers GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
