package archive

import (
	"context"
	"encoding/binary"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/StuFraser/aqua-ripple/internal/domain/waterquality"
	apperrors "github.com/StuFraser/aqua-ripple/pkg/errors"
)

func TestSaveAndGetRoundTripsThroughDatedKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := New(store)

	result := waterquality.Result{
		Status:              waterquality.StatusSuccess,
		Mode:                waterquality.ModeAI,
		OverallQuality:      "fair",
		OverallQualityScore: 55,
		Concerns:            []string{"turbid inflow"},
		Timestamp:           time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	id, err := a.Save(ctx, result)
	require.NoError(t, err)

	keys := store.Keys()
	require.Len(t, keys, 1)
	require.Regexp(t, regexp.MustCompile(`^analyses/\d{4}/\d{2}/\d{2}/`+regexp.QuoteMeta(id)+`\.json$`), keys[0])

	got, err := a.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, result, got)
}

func TestGetErrors(t *testing.T) {
	a := New(NewMemoryStore())

	_, err := a.Get(context.Background(), "nope")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = a.Get(context.Background(), uuid.NewString())
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	id, err := uuid.NewV7()
	require.NoError(t, err)
	_, err = a.Get(context.Background(), id.String())
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestObjectKeyUsesCreationDay(t *testing.T) {
	created := time.Date(2025, 6, 1, 23, 59, 30, 0, time.UTC)
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[:8], uint64(created.UnixMilli())<<16)
	id[6] = 0x70
	id[8] = 0x80
	require.EqualValues(t, 7, id.Version())

	require.Equal(t, "analyses/2025/06/01/"+id.String()+".json", objectKey(id))
}

func TestSanitizeEndpoint(t *testing.T) {
	require.Equal(t, "minio:9000", sanitizeEndpoint("http://minio:9000/"))
	require.Equal(t, "acc.r2.cloudflarestorage.com", sanitizeEndpoint(" https://acc.r2.cloudflarestorage.com/bucket "))
}
