package locationcache

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/StuFraser/aqua-ripple/internal/domain/imagery"
	"github.com/StuFraser/aqua-ripple/internal/domain/location"
)

const earthRadiusMeters = 6371008.8

type entry struct {
	body      location.WaterBody
	expiresAt time.Time
}

// MemoryStore is an in-memory water body cache for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now}
}

// Nearest implements location.Cache with a linear haversine scan.
func (s *MemoryStore) Nearest(_ context.Context, c imagery.Coordinate, radiusMeters float64) (location.WaterBody, bool, error) {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best     location.WaterBody
		bestDist = math.Inf(1)
		found    bool
	)
	for _, e := range s.entries {
		if !e.expiresAt.IsZero() && !e.expiresAt.After(now) {
			continue
		}
		d := Distance(c, imagery.Coordinate{Latitude: e.body.Latitude, Longitude: e.body.Longitude})
		if d <= radiusMeters && d < bestDist {
			best, bestDist, found = e.body, d, true
		}
	}
	return best, found, nil
}

// Save implements location.Cache.
func (s *MemoryStore) Save(_ context.Context, body location.WaterBody) error {
	exp := time.Time{}
	if s.ttl > 0 {
		exp = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{body: body, expiresAt: exp})
	s.pruneLocked()
	return nil
}

func (s *MemoryStore) pruneLocked() {
	now := s.now()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.expiresAt.IsZero() || e.expiresAt.After(now) {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

// Distance is the great-circle distance between a and b in metres.
func Distance(a, b imagery.Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

var _ location.Cache = (*MemoryStore)(nil)
