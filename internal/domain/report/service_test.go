package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "github.com/StuFraser/aqua-ripple/pkg/errors"
	"github.com/StuFraser/aqua-ripple/pkg/logger"
	"github.com/StuFraser/aqua-ripple/pkg/util"
)

func TestCreateFillsDefaults(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, logger.Discard())
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc.now = util.FixedClock(at)

	got, err := svc.Create(context.Background(), WaterReport{
		Location:           Location{Latitude: -36.85, Longitude: 174.76},
		ReportedBy:         "  kiri  ",
		Metrics:            Metrics{ClarityScore: 7, Turbidity: 2.5},
		VisualObservations: "green tinge along the shore",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, got.ID)
	require.Equal(t, StatusPending, got.Status)
	require.Equal(t, at, got.Timestamp)
	require.Equal(t, "kiri", got.ReportedBy)
	require.Equal(t, got, repo.items[got.ID])
}

func TestCreateKeepsProvidedFields(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, logger.Discard())
	id := uuid.New()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	got, err := svc.Create(context.Background(), WaterReport{ID: id, ReportedBy: "x", Timestamp: ts, Status: "Verified"})
	require.NoError(t, err)
	require.Equal(t, id, got.ID)
	require.Equal(t, ts, got.Timestamp)
	require.Equal(t, "Verified", got.Status)
}

func TestCreateValidates(t *testing.T) {
	svc := NewService(newStubRepo(), logger.Discard())

	_, err := svc.Create(context.Background(), WaterReport{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Create(context.Background(), WaterReport{ReportedBy: "x", Location: Location{Latitude: 91}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestCreateWrapsStoreFailure(t *testing.T) {
	repo := newStubRepo()
	repo.err = errors.New("connection reset")
	svc := NewService(repo, logger.Discard())

	_, err := svc.Create(context.Background(), WaterReport{ReportedBy: "x"})
	require.True(t, apperrors.IsCode(err, CodeStoreFailed))
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, logger.Discard())
	id := uuid.New()

	_, err := svc.Create(context.Background(), WaterReport{ID: id, ReportedBy: "ana", VisualObservations: "clear"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), WaterReport{ID: id, ReportedBy: "mallory", VisualObservations: "overwritten"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	require.ErrorIs(t, err, ErrDuplicateID)

	got, err := svc.Get(context.Background(), id.String())
	require.NoError(t, err)
	require.Equal(t, "ana", got.ReportedBy)
	require.Equal(t, "clear", got.VisualObservations)
}

func TestGet(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, logger.Discard())
	created, err := svc.Create(context.Background(), WaterReport{ReportedBy: "x"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID.String())
	require.NoError(t, err)
	require.Equal(t, created, got)

	_, err = svc.Get(context.Background(), uuid.NewString())
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = svc.Get(context.Background(), "not-a-uuid")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestListClampsLimit(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, logger.Discard())

	_, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 100, repo.lastLimit)

	_, err = svc.List(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 5, repo.lastLimit)
}

type stubRepo struct {
	items     map[uuid.UUID]WaterReport
	err       error
	lastLimit int
}

func newStubRepo() *stubRepo {
	return &stubRepo{items: make(map[uuid.UUID]WaterReport)}
}

func (s *stubRepo) Create(_ context.Context, r WaterReport) error {
	if s.err != nil {
		return s.err
	}
	if _, exists := s.items[r.ID]; exists {
		return ErrDuplicateID
	}
	s.items[r.ID] = r
	return nil
}

func (s *stubRepo) List(_ context.Context, limit int) ([]WaterReport, error) {
	s.lastLimit = limit
	out := make([]WaterReport, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, r)
	}
	return out, s.err
}

func (s *stubRepo) Get(_ context.Context, id uuid.UUID) (WaterReport, bool, error) {
	r, ok := s.items[id]
	return r, ok, s.err
}
