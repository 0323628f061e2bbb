package waterquality

import (
	"math"
	"time"

	"github.com/StuFraser/aqua-ripple/internal/domain/aimodel"
	"github.com/StuFraser/aqua-ripple/internal/domain/imagery"
)

// Result is the validated water quality assessment returned to callers.
type Result struct {
	Status              string           `json:"status"`
	Mode                string           `json:"mode"`
	Metadata            imagery.Metadata `json:"metadata"`
	Indicators          Indicators       `json:"indicators"`
	WaterBodiesDetected bool             `json:"water_bodies_detected"`
	OverallQuality      string           `json:"overall_quality"`
	OverallQualityScore int              `json:"overall_quality_score"`
	Summary             string           `json:"summary"`
	Concerns            []string         `json:"concerns"`
	Confidence          float64          `json:"confidence"`
	Timestamp           time.Time        `json:"timestamp"`
}

// Indicators groups the per-parameter assessments.
type Indicators struct {
	ChlorophyllA      Measurement  `json:"chlorophyll_a"`
	Turbidity         Measurement  `json:"turbidity"`
	AlgaeBloom        AlgaeBloom   `json:"algae_bloom"`
	WaterClarity      WaterClarity `json:"water_clarity"`
	CyanobacteriaRisk Risk         `json:"cyanobacteria_risk"`
}

// Measurement is a graded level with an estimated value.
type Measurement struct {
	Level      string  `json:"level"`
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
}

type AlgaeBloom struct {
	Detected   bool    `json:"detected"`
	Severity   string  `json:"severity"`
	Confidence float64 `json:"confidence"`
}

type WaterClarity struct {
	Level               string  `json:"level"`
	SecchiDepthEstimate float64 `json:"secchi_depth_estimate"`
	Confidence          float64 `json:"confidence"`
}

type Risk struct {
	Level      string  `json:"level"`
	Confidence float64 `json:"confidence"`
}

// reply is the wire shape the model must produce. Pointers make absent fields detectable.
type reply struct {
	Indicators          *replyIndicators `json:"indicators" validate:"required"`
	WaterBodiesDetected *bool            `json:"water_bodies_detected" validate:"required"`
	OverallQuality      *string          `json:"overall_quality" validate:"required,oneof=excellent good fair poor critical"`
	OverallQualityScore *float64         `json:"overall_quality_score" validate:"required,min=0,max=100"`
	Summary             *string          `json:"summary" validate:"required"`
	Concerns            []*string        `json:"concerns" validate:"required,dive,required"`
	Confidence          *float64         `json:"confidence" validate:"required,min=0,max=1"`
}

type replyIndicators struct {
	ChlorophyllA      *replyMeasurement `json:"chlorophyll_a" validate:"required"`
	Turbidity         *replyMeasurement `json:"turbidity" validate:"required"`
	AlgaeBloom        *replyAlgaeBloom  `json:"algae_bloom" validate:"required"`
	WaterClarity      *replyClarity     `json:"water_clarity" validate:"required"`
	CyanobacteriaRisk *replyRisk        `json:"cyanobacteria_risk" validate:"required"`
}

type replyMeasurement struct {
	Level      *string  `json:"level" validate:"required,oneof=low moderate high very_high"`
	Value      *float64 `json:"value" validate:"required"`
	Confidence *float64 `json:"confidence" validate:"required,min=0,max=1"`
}

type replyAlgaeBloom struct {
	Detected   *bool    `json:"detected" validate:"required"`
	Severity   *string  `json:"severity" validate:"required,oneof=none minor moderate severe"`
	Confidence *float64 `json:"confidence" validate:"required,min=0,max=1"`
}

type replyClarity struct {
	Level               *string  `json:"level" validate:"required,oneof=clear moderate turbid opaque"`
	SecchiDepthEstimate *float64 `json:"secchi_depth_estimate" validate:"required"`
	Confidence          *float64 `json:"confidence" validate:"required,min=0,max=1"`
}

type replyRisk struct {
	Level      *string  `json:"level" validate:"required,oneof=low moderate high very_high"`
	Confidence *float64 `json:"confidence" validate:"required,min=0,max=1"`
}

// parseReply decodes and validates raw model text.
func parseReply(text string) (reply, error) {
	var r reply
	if err := aimodel.DecodeJSON(text, &r); err != nil {
		return reply{}, err
	}
	if err := aimodel.ValidateReply(r); err != nil {
		return reply{}, err
	}
	if score := *r.OverallQualityScore; score != math.Trunc(score) {
		return reply{}, aimodel.SchemaError("overall_quality_score must be an integer, got %v", score)
	}
	return r, nil
}

// toResult builds the response from a validated reply and the system fields.
func (r reply) toResult(meta imagery.Metadata, at time.Time) Result {
	ind := r.Indicators
	concerns := make([]string, len(r.Concerns))
	for i, c := range r.Concerns {
		concerns[i] = *c
	}

	return Result{
		Status:   StatusSuccess,
		Mode:     ModeAI,
		Metadata: meta,
		Indicators: Indicators{
			ChlorophyllA: Measurement{
				Level:      *ind.ChlorophyllA.Level,
				Value:      *ind.ChlorophyllA.Value,
				Confidence: *ind.ChlorophyllA.Confidence,
			},
			Turbidity: Measurement{
				Level:      *ind.Turbidity.Level,
				Value:      *ind.Turbidity.Value,
				Confidence: *ind.Turbidity.Confidence,
			},
			AlgaeBloom: AlgaeBloom{
				Detected:   *ind.AlgaeBloom.Detected,
				Severity:   *ind.AlgaeBloom.Severity,
				Confidence: *ind.AlgaeBloom.Confidence,
			},
			WaterClarity: WaterClarity{
				Level:               *ind.WaterClarity.Level,
				SecchiDepthEstimate: *ind.WaterClarity.SecchiDepthEstimate,
				Confidence:          *ind.WaterClarity.Confidence,
			},
			CyanobacteriaRisk: Risk{
				Level:      *ind.CyanobacteriaRisk.Level,
				Confidence: *ind.CyanobacteriaRisk.Confidence,
			},
		},
		WaterBodiesDetected: *r.WaterBodiesDetected,
		OverallQuality:      *r.OverallQuality,
		OverallQualityScore: int(*r.OverallQualityScore),
		Summary:             *r.Summary,
		Concerns:            concerns,
		Confidence:          *r.Confidence,
		Timestamp:           at,
	}
}
