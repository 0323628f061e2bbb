package location

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/StuFraser/aqua-ripple/internal/domain/aimodel"
	"github.com/StuFraser/aqua-ripple/internal/domain/imagery"
	apperrors "github.com/StuFraser/aqua-ripple/pkg/errors"
	"github.com/StuFraser/aqua-ripple/pkg/metrics"
)

const lookupPrompt = `You are a precise geographic lookup tool. Given EXACTLY these coordinates: latitude=%s, longitude=%s

Your task: identify the water body located AT these exact coordinates.

Rules:
- Only return a water body if it is directly at or immediately touching these coordinates (within ~100 metres)
- Do NOT return nearby landmarks, famous lakes, or well-known features that are not at this exact location
- Do NOT guess or infer based on general area knowledge
- If you are not confident a water body exists at exactly these coordinates, set is_water to false
- Distance matters: a result 1km away is wrong, 10km away is very wrong

Respond only with valid JSON, no markdown:
{
"is_water": true or false,
"name": "exact name of water body at these coordinates or null",
"water_type": "river|lake|estuary|ocean|reservoir|canal|stream|other or null",
"description": "1-2 sentence description or null",
"message": "null if is_water is true, otherwise friendly message that location appears to be on land"
}`

// WaterBody is a previously identified body of water anchored at the coordinate it was found at.
type WaterBody struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Name        *string `json:"name"`
	WaterType   *string `json:"water_type"`
	Description *string `json:"description"`
}

// Cache remembers identified water bodies by position.
type Cache interface {
	Nearest(ctx context.Context, c imagery.Coordinate, radiusMeters float64) (WaterBody, bool, error)
	Save(ctx context.Context, body WaterBody) error
}

// Config tunes the lookup.
type Config struct {
	CacheRadiusMeters float64
}

// Service identifies water bodies at coordinates.
type Service struct {
	cfg    Config
	model  aimodel.Generator
	cache  Cache
	logger *slog.Logger
}

// NewService is a wire provider for location lookups. cache may be nil.
func NewService(cfg Config, model aimodel.Generator, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		model:  model,
		cache:  cache,
		logger: logger.With("component", "location.service"),
	}
}

// Lookup answers from the cache when a known water body is close enough, otherwise asks the model.
func (s *Service) Lookup(ctx context.Context, c imagery.Coordinate) (result Result, err error) {
	defer func() {
		metrics.LocationLookupsTotal.WithLabelValues(metrics.Outcome(apperrors.CodeOf(err), err)).Inc()
	}()

	if body, ok := s.fromCache(ctx, c); ok {
		return Result{
			IsWater:     true,
			Name:        body.Name,
			WaterType:   body.WaterType,
			Description: body.Description,
			Latitude:    c.Latitude,
			Longitude:   c.Longitude,
		}, nil
	}

	start := time.Now()
	reply, err := s.model.Generate(ctx, aimodel.Prompt{Text: Prompt(c)})
	metrics.ObserveStage("ai_location", start)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeUpstream, "location lookup failed", err)
	}
	reply.Usage.Record(reply.Model)

	parsed, err := parseReply(reply.Text)
	if err != nil {
		s.logger.Warn("rejected AI reply", "latitude", c.Latitude, "longitude", c.Longitude, "error", err)
		return Result{}, err
	}

	result = parsed.toResult(c.Latitude, c.Longitude)
	if result.IsWater {
		s.remember(ctx, result)
	}
	return result, nil
}

// Prompt renders the lookup instruction for c.
func Prompt(c imagery.Coordinate) string {
	return fmt.Sprintf(lookupPrompt,
		strconv.FormatFloat(c.Latitude, 'f', -1, 64),
		strconv.FormatFloat(c.Longitude, 'f', -1, 64),
	)
}

func (s *Service) fromCache(ctx context.Context, c imagery.Coordinate) (WaterBody, bool) {
	if s.cache == nil {
		return WaterBody{}, false
	}
	body, ok, err := s.cache.Nearest(ctx, c, s.cfg.CacheRadiusMeters)
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("water body cache lookup failed", "error", err)
		return WaterBody{}, false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return WaterBody{}, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	s.logger.Debug("water body cache hit", "latitude", c.Latitude, "longitude", c.Longitude)
	return body, true
}

func (s *Service) remember(ctx context.Context, r Result) {
	if s.cache == nil {
		return
	}
	body := WaterBody{
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Name:        r.Name,
		WaterType:   r.WaterType,
		Description: r.Description,
	}
	if err := s.cache.Save(ctx, body); err != nil {
		s.logger.Warn("cache water body failed", "error", err)
	}
}
