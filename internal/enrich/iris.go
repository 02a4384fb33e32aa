package enrich

import (
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"dvfpipe/internal/dataio"
	"dvfpipe/internal/domain"
)

func shapeContains(shape dataio.IRISShape, pt orb.Point) bool {
	if !shape.Bound.Contains(pt) {
		return false
	}
	switch g := shape.Geometry.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt)
	}
	return false
}

// AttachIRIS locates each transaction inside the IRIS contour layer and
// attaches the zone code plus its socio-economic profile. Rows falling
// outside every contour, or inside a zone without indicator values, keep
// nil enrichments.
func AttachIRIS(txs []domain.Transaction, shapes []dataio.IRISShape, values map[string]*domain.IncomeProfile) {
	located, profiled := 0, 0
	for i := range txs {
		if !txs[i].HasLocation() {
			continue
		}
		pt := orb.Point{txs[i].Longitude, txs[i].Latitude}
		for _, shape := range shapes {
			if !shapeContains(shape, pt) {
				continue
			}
			txs[i].IRISCode = shape.Code
			located++
			if profile, ok := values[shape.Code]; ok {
				txs[i].Income = profile
				profiled++
			}
			break
		}
	}
	slog.Info("attached iris zones", "rows", len(txs), "located", located, "with_values", profiled)
}
