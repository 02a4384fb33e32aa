// Package spatial implements the generic nearest-neighbor enrichment
// engine: haversine k-NN queries over a point index with pluggable
// aggregation of a source metric across the neighbors.
package spatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/vptree"
)

// Location is a WGS-84 coordinate pair in degrees. Coordinates are assumed
// valid, not validated.
type Location struct {
	Lat float64
	Lon float64
}

// point is a reference-set entry: coordinates pre-converted to radians plus
// the dense positional id consulted by the aggregation logic.
type point struct {
	id  int
	lat float64
	lon float64
}

func newPoint(id int, loc Location) point {
	return point{
		id:  id,
		lat: loc.Lat * math.Pi / 180,
		lon: loc.Lon * math.Pi / 180,
	}
}

// Distance implements vptree.Comparable with the haversine great-circle
// distance on the unit sphere, the metric the neighbor queries rank by.
func (p point) Distance(c vptree.Comparable) float64 {
	q := c.(point)
	sinLat := math.Sin((q.lat - p.lat) / 2)
	sinLon := math.Sin((q.lon - p.lon) / 2)
	h := sinLat*sinLat + math.Cos(p.lat)*math.Cos(q.lat)*sinLon*sinLon
	return 2 * math.Asin(math.Min(1, math.Sqrt(h)))
}
