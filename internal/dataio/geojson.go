package dataio

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"dvfpipe/internal/domain"
)

// IRISShape is one IRIS statistical-zone polygon with its 9-character code.
type IRISShape struct {
	Code     string
	Geometry orb.Geometry
	Bound    orb.Bound
}

// ReadIRISContours reads the IRIS contour layer from a GeoJSON feature
// collection. Duplicate codes keep the first feature.
func ReadIRISContours(path string) ([]IRISShape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read iris contours: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse iris contours: %w", err)
	}

	seen := make(map[string]bool, len(fc.Features))
	shapes := make([]IRISShape, 0, len(fc.Features))
	for _, feature := range fc.Features {
		code := domain.NormalizeIRISCode(feature.Properties.MustString("DCOMIRIS", ""))
		if code == "" || seen[code] {
			continue
		}
		geom := feature.Geometry
		if geom == nil {
			continue
		}
		switch geom.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue // point or line features cannot contain transactions
		}
		seen[code] = true
		shapes = append(shapes, IRISShape{
			Code:     code,
			Geometry: geom,
			Bound:    geom.Bound(),
		})
	}
	slog.Info("read iris contours", "features", len(fc.Features), "polygons", len(shapes))
	return shapes, nil
}
