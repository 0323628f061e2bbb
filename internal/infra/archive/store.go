package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/StuFraser/aqua-ripple/internal/domain/waterquality"
	apperrors "github.com/StuFraser/aqua-ripple/pkg/errors"
)

// ErrNotFound is returned by object stores for missing keys.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the blob backend the archive writes to.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Archive stores analysis results as JSON documents keyed by a time ordered id.
type Archive struct {
	store ObjectStore
}

// New wraps an object store.
func New(store ObjectStore) *Archive {
	return &Archive{store: store}
}

// Save implements waterquality.Archive.
func (a *Archive) Save(ctx context.Context, result waterquality.Result) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate analysis id: %w", err)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode analysis: %w", err)
	}
	if err := a.store.Put(ctx, objectKey(id), payload, "application/json"); err != nil {
		return "", fmt.Errorf("store analysis: %w", err)
	}
	return id.String(), nil
}

// Get implements waterquality.Archive.
func (a *Archive) Get(ctx context.Context, rawID string) (waterquality.Result, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil || id.Version() != 7 {
		return waterquality.Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "analysis id is not valid", err)
	}

	payload, err := a.store.Get(ctx, objectKey(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return waterquality.Result{}, apperrors.Wrap(apperrors.CodeNotFound, "analysis not found", nil)
		}
		return waterquality.Result{}, fmt.Errorf("load analysis: %w", err)
	}

	var result waterquality.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return waterquality.Result{}, fmt.Errorf("decode analysis: %w", err)
	}
	return result, nil
}

// objectKey places an id under its creation day: analyses/yyyy/mm/dd/<id>.json.
func objectKey(id uuid.UUID) string {
	sec, nsec := id.Time().UnixTime()
	day := time.Unix(sec, nsec).UTC()
	return fmt.Sprintf("analyses/%04d/%02d/%02d/%s.json", day.Year(), int(day.Month()), day.Day(), id.String())
}

var _ waterquality.Archive = (*Archive)(nil)
