package reportrepo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/StuFraser/aqua-ripple/internal/domain/report"
)

func TestMemoryRepositoryListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	seed := []struct {
		name   string
		offset time.Duration
	}{
		{name: "old", offset: 0},
		{name: "newest", offset: 2 * time.Hour},
		{name: "middle", offset: time.Hour},
	}
	for _, s := range seed {
		require.NoError(t, repo.Create(ctx, report.WaterReport{
			ID:         uuid.New(),
			ReportedBy: s.name,
			Timestamp:  base.Add(s.offset),
			Status:     report.StatusPending,
		}))
	}

	got, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []string{"newest", "middle", "old"}, []string{got[0].ReportedBy, got[1].ReportedBy, got[2].ReportedBy})

	limited, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestMemoryRepositoryGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	id := uuid.New()
	require.NoError(t, repo.Create(ctx, report.WaterReport{ID: id, ReportedBy: "ana"}))

	got, ok, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ana", got.ReportedBy)

	_, ok, err = repo.Get(ctx, uuid.New())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryRepositoryRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	id := uuid.New()
	require.NoError(t, repo.Create(ctx, report.WaterReport{ID: id, ReportedBy: "ana"}))

	err := repo.Create(ctx, report.WaterReport{ID: id, ReportedBy: "mallory"})
	require.ErrorIs(t, err, report.ErrDuplicateID)

	got, ok, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ana", got.ReportedBy)
}
