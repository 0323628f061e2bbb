package imagery

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BBox is ordered minLon, minLat, maxLon, maxLat.
type BBox [4]float64

// NewBBox centers a square of half-width half on c.
func NewBBox(c Coordinate, half float64) BBox {
	return BBox{
		c.Longitude - half,
		c.Latitude - half,
		c.Longitude + half,
		c.Latitude + half,
	}
}

// String renders the box as the comma separated form used in renderer paths.
func (b BBox) String() string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Slice copies the box into a JSON friendly slice.
func (b BBox) Slice() []float64 {
	out := make([]float64, len(b))
	copy(out, b[:])
	return out
}

// TimeRange is a closed search interval.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// String renders the interval in the STAC datetime form "start/end".
func (r TimeRange) String() string {
	return r.Start.UTC().Format(time.RFC3339) + "/" + r.End.UTC().Format(time.RFC3339)
}

// SearchParams is one catalog query.
type SearchParams struct {
	Collections []string
	BBox        BBox
	Window      TimeRange
	Query       map[string]any
}

// Asset is a single band or rendition of a scene.
type Asset struct {
	Href string
	Type string
}

// Scene is one catalog search result.
type Scene struct {
	ID         string
	Collection string
	Datetime   time.Time
	CloudCover float64
	Assets     map[string]Asset
}

// Catalog searches for scenes and signs their asset hrefs.
type Catalog interface {
	Search(ctx context.Context, params SearchParams) ([]Scene, error)
	Sign(ctx context.Context, scene Scene) (Scene, error)
}

// Selection is the signed scene chosen for a coordinate together with its search box.
type Selection struct {
	Scene Scene
	BBox  BBox
}

// Config wires runtime settings for scene selection and URL derivation.
type Config struct {
	BoxSize      float64
	LookbackDays int
	Collections  []string
	Query        map[string]any
	RendererURL  string
}

// Images holds the four rendered visualizations of a scene.
type Images struct {
	Visual     string `json:"visual"`
	FalseColor string `json:"false_color"`
	WaterMask  string `json:"water_mask"`
	NDCI       string `json:"ndci"`
}

// Metadata describes the scene an analysis was derived from.
type Metadata struct {
	ItemID     string    `json:"item_id"`
	Collection string    `json:"collection"`
	Datetime   time.Time `json:"datetime"`
	CloudCover float64   `json:"cloud_cover"`
	BBox       []float64 `json:"bbox"`
}

// ImagePackage is the selector output handed to the analyzer.
type ImagePackage struct {
	Images   Images   `json:"images"`
	Metadata Metadata `json:"metadata"`
}
