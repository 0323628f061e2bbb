package location

import (
	"github.com/StuFraser/aqua-ripple/internal/domain/aimodel"
)

// Result says whether a coordinate is on water and, if so, which body.
type Result struct {
	IsWater     bool    `json:"is_water"`
	Name        *string `json:"name"`
	WaterType   *string `json:"water_type"`
	Description *string `json:"description"`
	Message     *string `json:"message"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type reply struct {
	IsWater     *bool   `json:"is_water" validate:"required"`
	Name        *string `json:"name"`
	WaterType   *string `json:"water_type"`
	Description *string `json:"description"`
	Message     *string `json:"message"`
}

func parseReply(text string) (reply, error) {
	var r reply
	if err := aimodel.DecodeJSON(text, &r); err != nil {
		return reply{}, err
	}
	if err := aimodel.ValidateReply(r); err != nil {
		return reply{}, err
	}

	if *r.IsWater {
		if r.Message != nil {
			return reply{}, aimodel.SchemaError("message must be null when is_water is true")
		}
		return r, nil
	}
	if r.Message == nil {
		return reply{}, aimodel.SchemaError("message is required when is_water is false")
	}
	if r.Name != nil {
		return reply{}, aimodel.SchemaError("name must be null when is_water is false")
	}
	return r, nil
}

func (r reply) toResult(lat, lon float64) Result {
	return Result{
		IsWater:     *r.IsWater,
		Name:        r.Name,
		WaterType:   r.WaterType,
		Description: r.Description,
		Message:     r.Message,
		Latitude:    lat,
		Longitude:   lon,
	}
}
