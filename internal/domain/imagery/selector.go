package imagery

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/StuFraser/aqua-ripple/pkg/errors"
	"github.com/StuFraser/aqua-ripple/pkg/metrics"
	"github.com/StuFraser/aqua-ripple/pkg/util"
)

// Selector finds the best recent scene for a coordinate and turns it into an ImagePackage.
type Selector struct {
	cfg     Config
	catalog Catalog
	logger  *slog.Logger
	now     util.Clock
}

// NewSelector is a wire provider for scene selection.
func NewSelector(cfg Config, catalog Catalog, logger *slog.Logger) *Selector {
	return &Selector{
		cfg:     cfg,
		catalog: catalog,
		logger:  logger.With("component", "imagery.selector"),
		now:     util.NowUTC,
	}
}

// SelectScene searches the catalog around c and returns the signed scene with the lowest cloud cover.
func (s *Selector) SelectScene(ctx context.Context, c Coordinate) (Selection, error) {
	bbox := NewBBox(c, s.cfg.BoxSize)
	params := SearchParams{
		Collections: s.cfg.Collections,
		BBox:        bbox,
		Window:      s.searchWindow(),
		Query:       s.cfg.Query,
	}

	start := time.Now()
	scenes, err := s.catalog.Search(ctx, params)
	metrics.ObserveStage("catalog_search", start)
	if err != nil {
		return Selection{}, apperrors.Wrap(apperrors.CodeUpstream, "satellite catalog search failed", err)
	}

	best, ok := PickLowestCloudCover(scenes)
	if !ok {
		return Selection{}, apperrors.Wrap(apperrors.CodeNoImageryFound, "no satellite imagery found for this location", nil)
	}
	s.logger.Info("scene selected", "item_id", best.ID, "collection", best.Collection, "cloud_cover", best.CloudCover, "candidates", len(scenes))

	start = time.Now()
	signed, err := s.catalog.Sign(ctx, best)
	metrics.ObserveStage("asset_signing", start)
	if err != nil {
		return Selection{}, apperrors.Wrap(apperrors.CodeUpstream, "asset signing failed", err)
	}

	return Selection{Scene: signed, BBox: bbox}, nil
}

// Package selects a scene for c and derives its visualization URLs.
func (s *Selector) Package(ctx context.Context, c Coordinate) (ImagePackage, error) {
	sel, err := s.SelectScene(ctx, c)
	if err != nil {
		return ImagePackage{}, err
	}
	pkg, err := DeriveImagePackage(sel.Scene, sel.BBox, s.cfg.RendererURL)
	if err != nil {
		return ImagePackage{}, apperrors.Wrap(apperrors.CodeUpstream, "signed scene is missing its visual asset", err)
	}
	return pkg, nil
}

func (s *Selector) searchWindow() TimeRange {
	end := s.now()
	return TimeRange{
		Start: end.Add(-time.Duration(s.cfg.LookbackDays) * 24 * time.Hour),
		End:   end,
	}
}

// PickLowestCloudCover returns the scene with minimum cloud cover. The first of equal minima wins.
func PickLowestCloudCover(scenes []Scene) (Scene, bool) {
	if len(scenes) == 0 {
		return Scene{}, false
	}
	best := scenes[0]
	for _, sc := range scenes[1:] {
		if sc.CloudCover < best.CloudCover {
			best = sc
		}
	}
	return best, true
}
