package report

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/StuFraser/aqua-ripple/pkg/errors"
	"github.com/StuFraser/aqua-ripple/pkg/util"
)

const defaultListLimit = 100

// CodeStoreFailed marks repository failures.
const CodeStoreFailed = "report_store_failed"

// Service validates and stores water reports.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    util.Clock
}

// NewService wires the report service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With("component", "report.service"),
		now:    util.NowUTC,
	}
}

// Create fills defaults and persists the report.
func (s *Service) Create(ctx context.Context, r WaterReport) (WaterReport, error) {
	r.ReportedBy = strings.TrimSpace(r.ReportedBy)
	if r.ReportedBy == "" {
		return WaterReport{}, apperrors.Wrap(apperrors.CodeInvalidInput, "reported_by is required", nil)
	}
	if r.Location.Latitude < -90 || r.Location.Latitude > 90 || r.Location.Longitude < -180 || r.Location.Longitude > 180 {
		return WaterReport{}, apperrors.Wrap(apperrors.CodeInvalidInput, "location is out of range", nil)
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now()
	}
	if strings.TrimSpace(r.Status) == "" {
		r.Status = StatusPending
	}

	if err := s.repo.Create(ctx, r); err != nil {
		if errors.Is(err, ErrDuplicateID) {
			return WaterReport{}, apperrors.Wrap(apperrors.CodeConflict, "report "+r.ID.String()+" already exists", err)
		}
		return WaterReport{}, apperrors.Wrap(CodeStoreFailed, "failed to store report", err)
	}
	s.logger.Info("report created", "report_id", r.ID.String(), "reported_by", r.ReportedBy)
	return r, nil
}

// List returns the newest reports first.
func (s *Service) List(ctx context.Context, limit int) ([]WaterReport, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	reports, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(CodeStoreFailed, "failed to list reports", err)
	}
	return reports, nil
}

// Get fetches a report by id.
func (s *Service) Get(ctx context.Context, rawID string) (WaterReport, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return WaterReport{}, apperrors.Wrap(apperrors.CodeInvalidInput, "report id must be a uuid", err)
	}
	r, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return WaterReport{}, apperrors.Wrap(CodeStoreFailed, "failed to load report", err)
	}
	if !ok {
		return WaterReport{}, apperrors.Wrap(apperrors.CodeNotFound, "report not found", nil)
	}
	return r, nil
}
