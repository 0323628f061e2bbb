package locationcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/StuFraser/aqua-ripple/internal/domain/imagery"
	"github.com/StuFraser/aqua-ripple/internal/domain/location"
)

func strPtr(s string) *string { return &s }

func TestDistance(t *testing.T) {
	london := imagery.Coordinate{Latitude: 51.5074, Longitude: -0.1278}
	paris := imagery.Coordinate{Latitude: 48.8566, Longitude: 2.3522}

	require.InDelta(t, 343_500, Distance(london, paris), 1_500)
	require.Zero(t, Distance(london, london))
	// 0.001 degrees of latitude is roughly 111 m everywhere
	require.InDelta(t, 111.2, Distance(imagery.Coordinate{}, imagery.Coordinate{Latitude: 0.001}), 0.5)
}

func TestMemoryStoreNearestWithinRadius(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	require.NoError(t, store.Save(ctx, location.WaterBody{Latitude: 51.5000, Longitude: -0.1200, Name: strPtr("River Thames")}))
	require.NoError(t, store.Save(ctx, location.WaterBody{Latitude: 51.5004, Longitude: -0.1200, Name: strPtr("Closer Dock")}))

	body, ok, err := store.Nearest(ctx, imagery.Coordinate{Latitude: 51.5005, Longitude: -0.1200}, 100)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Closer Dock", *body.Name)

	_, ok, err = store.Nearest(ctx, imagery.Coordinate{Latitude: 51.5020, Longitude: -0.1200}, 100)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreExpiresEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Hour)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, location.WaterBody{Latitude: 1, Longitude: 1, Name: strPtr("Pond")}))
	_, ok, _ := store.Nearest(ctx, imagery.Coordinate{Latitude: 1, Longitude: 1}, 100)
	require.True(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok, _ = store.Nearest(ctx, imagery.Coordinate{Latitude: 1, Longitude: 1}, 100)
	require.False(t, ok)

	require.NoError(t, store.Save(ctx, location.WaterBody{Latitude: 5, Longitude: 5}))
	require.Len(t, store.entries, 1)
}
