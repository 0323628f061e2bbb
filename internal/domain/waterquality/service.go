package waterquality

import (
	"context"
	"log/slog"
	"time"

	"github.com/StuFraser/aqua-ripple/internal/domain/aimodel"
	"github.com/StuFraser/aqua-ripple/internal/domain/imagery"
	apperrors "github.com/StuFraser/aqua-ripple/pkg/errors"
	"github.com/StuFraser/aqua-ripple/pkg/metrics"
	"github.com/StuFraser/aqua-ripple/pkg/util"
)

const (
	StatusSuccess = "success"
	ModeAI        = "ai"
	ModeIndices   = "indices"
)

const analysisPrompt = `You are an expert remote sensing water quality analyst. Analyse the four provided
Sentinel-2 satellite images and return a water quality assessment as a single valid JSON object
with no markdown, no explanation, just the JSON.

Image sequence:
1. TRUE COLOR - Natural RGB for geographic context
2. FALSE COLOR (NIR/Red/Green) - Bright red = dense vegetation/algae, dark = open water
3. NDWI WATER MASK - Blues highlight water bodies
4. NDCI CHLOROPHYLL INDEX - Deeper green = higher chlorophyll/algae concentration

Return this exact JSON structure:
{
    "indicators": {
        "chlorophyll_a": {"level": "low|moderate|high|very_high", "value": <float µg/L>, "confidence": <float 0-1>},
        "turbidity": {"level": "low|moderate|high|very_high", "value": <float NTU>, "confidence": <float 0-1>},
        "algae_bloom": {"detected": <bool>, "severity": "none|minor|moderate|severe", "confidence": <float 0-1>},
        "water_clarity": {"level": "clear|moderate|turbid|opaque", "secchi_depth_estimate": <float metres>, "confidence": <float 0-1>},
        "cyanobacteria_risk": {"level": "low|moderate|high|very_high", "confidence": <float 0-1>}
    },
    "water_bodies_detected": <bool>,
    "overall_quality": "excellent|good|fair|poor|critical",
    "overall_quality_score": <int 0-100>,
    "summary": "<2-3 sentence plain English summary>",
    "concerns": ["<specific concern>"],
    "confidence": <float 0-1 overall>
}`

// ImageSource produces the rendered image set for a coordinate.
type ImageSource interface {
	Package(ctx context.Context, c imagery.Coordinate) (imagery.ImagePackage, error)
}

// Archive persists completed analyses.
type Archive interface {
	Save(ctx context.Context, result Result) (string, error)
	Get(ctx context.Context, id string) (Result, error)
}

// Request asks for an analysis at a coordinate. A nil AIMode means the AI path.
type Request struct {
	Coordinate imagery.Coordinate
	AIMode     *bool
}

// Service runs the imagery to AI assessment pipeline.
type Service struct {
	images  ImageSource
	model   aimodel.Generator
	archive Archive
	logger  *slog.Logger
	now     util.Clock
}

// NewService is a wire provider for the analyzer. archive may be nil.
func NewService(images ImageSource, model aimodel.Generator, archive Archive, logger *slog.Logger) *Service {
	return &Service{
		images:  images,
		model:   model,
		archive: archive,
		logger:  logger.With("component", "waterquality.service"),
		now:     util.NowUTC,
	}
}

// Analyze selects imagery for the coordinate, asks the model for an assessment and validates it.
func (s *Service) Analyze(ctx context.Context, req Request) (result Result, err error) {
	defer func() {
		metrics.AnalysesTotal.WithLabelValues(metrics.Outcome(apperrors.CodeOf(err), err)).Inc()
	}()

	if req.AIMode != nil && !*req.AIMode {
		return Result{}, apperrors.Wrap(apperrors.CodeUnsupportedMode, "indices analysis mode is not implemented", nil)
	}

	pkg, err := s.images.Package(ctx, req.Coordinate)
	if err != nil {
		return Result{}, err
	}

	prompt := aimodel.Prompt{
		Text: analysisPrompt,
		ImageURLs: []string{
			pkg.Images.Visual,
			pkg.Images.FalseColor,
			pkg.Images.WaterMask,
			pkg.Images.NDCI,
		},
	}

	start := time.Now()
	reply, err := s.model.Generate(ctx, prompt)
	metrics.ObserveStage("ai_analysis", start)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeUpstream, "AI model request failed", err)
	}
	reply.Usage.Record(reply.Model)

	parsed, err := parseReply(reply.Text)
	if err != nil {
		s.logger.Warn("rejected AI reply", "item_id", pkg.Metadata.ItemID, "error", err)
		return Result{}, err
	}

	result = parsed.toResult(pkg.Metadata, s.now())
	s.logger.Info("analysis complete",
		"item_id", pkg.Metadata.ItemID,
		"overall_quality", result.OverallQuality,
		"score", result.OverallQualityScore,
		"total_tokens", reply.Usage.TotalTokens,
	)
	return result, nil
}

// Archive stores result and returns its id. Failures are logged and yield an empty id.
func (s *Service) Archive(ctx context.Context, result Result) string {
	if s.archive == nil {
		return ""
	}
	id, err := s.archive.Save(ctx, result)
	if err != nil {
		s.logger.Error("archive analysis failed", "item_id", result.Metadata.ItemID, "error", err)
		return ""
	}
	return id
}

// Archived fetches a previously stored analysis.
func (s *Service) Archived(ctx context.Context, id string) (Result, error) {
	if s.archive == nil {
		return Result{}, apperrors.Wrap(apperrors.CodeArchiveDisabled, "analysis archive is not enabled", nil)
	}
	return s.archive.Get(ctx, id)
}
