package reportrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/StuFraser/aqua-ripple/internal/domain/report"
)

// MemoryRepository keeps reports in memory for dev/testing.
type MemoryRepository struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]report.WaterReport
}

// NewMemoryRepository constructs a repository backed by process memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{reports: make(map[uuid.UUID]report.WaterReport)}
}

// Create implements report.Repository.
func (r *MemoryRepository) Create(_ context.Context, rep report.WaterReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.reports[rep.ID]; exists {
		return report.ErrDuplicateID
	}
	r.reports[rep.ID] = rep
	return nil
}

// List implements report.Repository.
func (r *MemoryRepository) List(_ context.Context, limit int) ([]report.WaterReport, error) {
	r.mu.RLock()
	out := make([]report.WaterReport, 0, len(r.reports))
	for _, rep := range r.reports {
		out = append(out, rep)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get implements report.Repository.
func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (report.WaterReport, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.reports[id]
	return rep, ok, nil
}

var _ report.Repository = (*MemoryRepository)(nil)
