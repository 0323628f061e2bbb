package location

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/StuFraser/aqua-ripple/internal/domain/aimodel"
	"github.com/StuFraser/aqua-ripple/internal/domain/imagery"
	apperrors "github.com/StuFraser/aqua-ripple/pkg/errors"
	"github.com/StuFraser/aqua-ripple/pkg/logger"
)

func TestLookupWaterEchoesCoordinateAndCaches(t *testing.T) {
	model := &stubModel{text: "```json\n" + `{"is_water": true, "name": "River Thames", "water_type": "river", "description": "Tidal river.", "message": null}` + "\n```"}
	cache := &stubCache{}
	svc := NewService(Config{CacheRadiusMeters: 100}, model, cache, logger.Discard())

	got, err := svc.Lookup(context.Background(), imagery.Coordinate{Latitude: 51.5072, Longitude: -0.1276})
	require.NoError(t, err)
	require.True(t, got.IsWater)
	require.Equal(t, "River Thames", *got.Name)
	require.Equal(t, "river", *got.WaterType)
	require.Nil(t, got.Message)
	require.Equal(t, 51.5072, got.Latitude)
	require.Equal(t, -0.1276, got.Longitude)

	require.Contains(t, model.lastPrompt.Text, "latitude=51.5072, longitude=-0.1276")
	require.Empty(t, model.lastPrompt.ImageURLs)
	require.Len(t, cache.saved, 1)
	require.Equal(t, "River Thames", *cache.saved[0].Name)
	require.Equal(t, 100.0, cache.lastRadius)
}

func TestLookupLandIsNotCached(t *testing.T) {
	model := &stubModel{text: `{"is_water": false, "name": null, "water_type": null, "description": null, "message": "This spot appears to be on land."}`}
	cache := &stubCache{}
	svc := NewService(Config{CacheRadiusMeters: 100}, model, cache, logger.Discard())

	got, err := svc.Lookup(context.Background(), imagery.Coordinate{Latitude: 48.85, Longitude: 2.29})
	require.NoError(t, err)
	require.False(t, got.IsWater)
	require.Equal(t, "This spot appears to be on land.", *got.Message)
	require.Nil(t, got.Name)
	require.Empty(t, cache.saved)
}

func TestLookupCacheHitSkipsModel(t *testing.T) {
	name := "Lake Taupo"
	cache := &stubCache{hit: &WaterBody{Latitude: -38.8, Longitude: 175.9, Name: &name}}
	model := &stubModel{}
	svc := NewService(Config{CacheRadiusMeters: 100}, model, cache, logger.Discard())

	got, err := svc.Lookup(context.Background(), imagery.Coordinate{Latitude: -38.8001, Longitude: 175.9001})
	require.NoError(t, err)
	require.True(t, got.IsWater)
	require.Equal(t, "Lake Taupo", *got.Name)
	require.Nil(t, got.Message)
	require.Equal(t, -38.8001, got.Latitude)
	require.Zero(t, model.calls)
}

func TestLookupCacheErrorFallsBackToModel(t *testing.T) {
	cache := &stubCache{findErr: errors.New("valkey down"), saveErr: errors.New("valkey down")}
	model := &stubModel{text: `{"is_water": true, "name": "Canal", "water_type": "canal", "description": null, "message": null}`}
	svc := NewService(Config{CacheRadiusMeters: 100}, model, cache, logger.Discard())

	got, err := svc.Lookup(context.Background(), imagery.Coordinate{})
	require.NoError(t, err)
	require.True(t, got.IsWater)
	require.Equal(t, 1, model.calls)
}

func TestLookupRejectsInvalidReplies(t *testing.T) {
	tests := []struct {
		name string
		text string
		code string
	}{
		{name: "prose", text: "It looks like a river to me.", code: apperrors.CodeMalformedAIResponse},
		{name: "missing is_water", text: `{"name": "Thames", "message": null}`, code: apperrors.CodeSchemaValidationError},
		{name: "land without message", text: `{"is_water": false, "name": null, "message": null}`, code: apperrors.CodeSchemaValidationError},
		{name: "land with name", text: `{"is_water": false, "name": "Thames", "message": "land"}`, code: apperrors.CodeSchemaValidationError},
		{name: "water with message", text: `{"is_water": true, "name": "Thames", "message": "on water"}`, code: apperrors.CodeSchemaValidationError},
		{name: "wrong type", text: `{"is_water": "yes"}`, code: apperrors.CodeSchemaValidationError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := NewService(Config{}, &stubModel{text: tt.text}, nil, logger.Discard())
			_, err := svc.Lookup(context.Background(), imagery.Coordinate{})
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, tt.code), err.Error())
		})
	}
}

func TestLookupModelFailure(t *testing.T) {
	svc := NewService(Config{}, &stubModel{err: errors.New("timeout")}, nil, logger.Discard())
	_, err := svc.Lookup(context.Background(), imagery.Coordinate{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstream))
}

type stubModel struct {
	text       string
	err        error
	calls      int
	lastPrompt aimodel.Prompt
}

func (s *stubModel) Generate(_ context.Context, prompt aimodel.Prompt) (aimodel.Reply, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return aimodel.Reply{}, s.err
	}
	return aimodel.Reply{Text: s.text}, nil
}

type stubCache struct {
	hit        *WaterBody
	findErr    error
	saveErr    error
	saved      []WaterBody
	lastRadius float64
}

func (s *stubCache) Nearest(_ context.Context, _ imagery.Coordinate, radius float64) (WaterBody, bool, error) {
	s.lastRadius = radius
	if s.findErr != nil {
		return WaterBody{}, false, s.findErr
	}
	if s.hit == nil {
		return WaterBody{}, false, nil
	}
	return *s.hit, true, nil
}

func (s *stubCache) Save(_ context.Context, body WaterBody) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, body)
	return nil
}
