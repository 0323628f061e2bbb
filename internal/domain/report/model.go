package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// StatusPending is assigned to reports submitted without a status.
const StatusPending = "Pending"

// Location is where a report was observed.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Metrics are the field measurements attached to a report.
type Metrics struct {
	ClarityScore float64 `json:"clarity_score"`
	Turbidity    float64 `json:"turbidity"`
	Chlorophyll  float64 `json:"chlorophyll"`
	WaterTemp    float64 `json:"water_temp"`
}

// WaterReport is a citizen submitted water quality observation.
type WaterReport struct {
	ID                 uuid.UUID `json:"id"`
	Location           Location  `json:"location"`
	Timestamp          time.Time `json:"timestamp"`
	ReportedBy         string    `json:"reported_by"`
	Metrics            Metrics   `json:"metrics"`
	VisualObservations string    `json:"visual_observations"`
	Status             string    `json:"status"`
}

// ErrDuplicateID is returned by repositories when a report with the same id already exists.
var ErrDuplicateID = errors.New("report id already exists")

// Repository persists water reports. Create never replaces an existing report.
type Repository interface {
	Create(ctx context.Context, r WaterReport) error
	List(ctx context.Context, limit int) ([]WaterReport, error)
	Get(ctx context.Context, id uuid.UUID) (WaterReport, bool, error)
}
