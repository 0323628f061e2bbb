package reportrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/StuFraser/aqua-ripple/internal/domain/report"
)

// PostgresRepository implements report.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new report row.
func (r *PostgresRepository) Create(ctx context.Context, rep report.WaterReport) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO water_reports (
			id, latitude, longitude, observed_at, reported_by,
			clarity_score, turbidity, chlorophyll, water_temp,
			visual_observations, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		rep.ID, rep.Location.Latitude, rep.Location.Longitude, rep.Timestamp, rep.ReportedBy,
		rep.Metrics.ClarityScore, rep.Metrics.Turbidity, rep.Metrics.Chlorophyll, rep.Metrics.WaterTemp,
		rep.VisualObservations, rep.Status,
	)
	return translateInsertError(err)
}

const uniqueViolation = "23505"

// translateInsertError maps a primary key collision onto report.ErrDuplicateID.
func translateInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", report.ErrDuplicateID, pgErr.Detail)
	}
	return err
}

// List returns the newest reports first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]report.WaterReport, error) {
	rows, err := r.pool.Query(ctx, selectReports+`
		ORDER BY observed_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.WaterReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// Get fetches a single report.
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (report.WaterReport, bool, error) {
	row := r.pool.QueryRow(ctx, selectReports+`
		WHERE id = $1
	`, id)
	rep, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.WaterReport{}, false, nil
		}
		return report.WaterReport{}, false, err
	}
	return rep, true, nil
}

const selectReports = `
	SELECT id, latitude, longitude, observed_at, reported_by,
		clarity_score, turbidity, chlorophyll, water_temp,
		visual_observations, status
	FROM water_reports`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (report.WaterReport, error) {
	var rep report.WaterReport
	err := row.Scan(
		&rep.ID, &rep.Location.Latitude, &rep.Location.Longitude, &rep.Timestamp, &rep.ReportedBy,
		&rep.Metrics.ClarityScore, &rep.Metrics.Turbidity, &rep.Metrics.Chlorophyll, &rep.Metrics.WaterTemp,
		&rep.VisualObservations, &rep.Status,
	)
	if err != nil {
		return report.WaterReport{}, err
	}
	rep.Timestamp = rep.Timestamp.UTC()
	return rep, nil
}

var _ report.Repository = (*PostgresRepository)(nil)
