package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"dvfpipe/internal/domain"
	"dvfpipe/internal/spatial"
)

// AggregateKind selects the reduction applied over a zone-price
// neighborhood.
type AggregateKind string

const (
	AggregateMean       AggregateKind = "mean"
	AggregateRegression AggregateKind = "regression"
)

// AttachZonePrice computes the neighborhood price level for every row: the
// aggregate of the normalized price per m² over the k nearest training
// sales. Only training rows form the reference set, so held-out rows never
// leak into a neighborhood, and a training row never sees itself.
func AttachZonePrice(ctx context.Context, engine *spatial.Engine, txs []domain.Transaction, trainIdx []int, k int, kind AggregateKind) error {
	refs := make([]spatial.Location, len(trainIdx))
	values := make([]float64, len(trainIdx))
	surfaces := make([]float64, len(trainIdx))
	rooms := make([]float64, len(trainIdx))
	refPos := make(map[int]int, len(trainIdx))
	for pos, ti := range trainIdx {
		refs[pos] = spatial.Location{Lat: txs[ti].Latitude, Lon: txs[ti].Longitude}
		values[pos] = txs[ti].PrixM2Actu
		surfaces[pos] = txs[ti].SurfaceBati
		rooms[pos] = txs[ti].RoomCount
		refPos[ti] = pos
	}

	ix, err := spatial.NewIndex(refs)
	if err != nil {
		return fmt.Errorf("index training sales: %w", err)
	}

	var agg spatial.Aggregate
	switch kind {
	case AggregateRegression:
		agg = spatial.RegressionIntercept(values, surfaces, rooms)
	default:
		agg = spatial.Mean(values)
	}

	targets := make([]spatial.Location, len(txs))
	for i := range txs {
		targets[i] = spatial.Location{Lat: txs[i].Latitude, Lon: txs[i].Longitude}
	}

	results, err := engine.ClosestMetric(ctx, targets, ix, k, agg, func(target int) int {
		if pos, ok := refPos[target]; ok {
			return pos
		}
		return -1
	})
	if err != nil {
		return fmt.Errorf("zone price enrichment: %w", err)
	}

	matched := 0
	for i := range txs {
		if !math.IsNaN(results[i]) {
			txs[i].PrixM2Zone = domain.Float64p(results[i])
			matched++
		}
	}
	slog.Info("attached zone prices", "rows", len(txs), "references", len(refs), "k", k, "aggregate", string(kind), "matched", matched)
	return nil
}

// AttachSchoolMetric computes, for every row, the mean success metric over
// the k nearest schools of one reference set, storing the result through
// set. Rows with an empty reference set keep nil.
func AttachSchoolMetric(ctx context.Context, engine *spatial.Engine, txs []domain.Transaction, schools []domain.School, k int, set func(*domain.Transaction, *float64)) error {
	refs := make([]spatial.Location, len(schools))
	values := make([]float64, len(schools))
	for i, s := range schools {
		refs[i] = spatial.Location{Lat: s.Latitude, Lon: s.Longitude}
		values[i] = s.TauxMention
	}

	ix, err := spatial.NewIndex(refs)
	if err != nil {
		return fmt.Errorf("index schools: %w", err)
	}

	targets := make([]spatial.Location, len(txs))
	for i := range txs {
		targets[i] = spatial.Location{Lat: txs[i].Latitude, Lon: txs[i].Longitude}
	}

	results, err := engine.ClosestMetric(ctx, targets, ix, k, spatial.Mean(values), nil)
	if err != nil {
		return fmt.Errorf("school enrichment: %w", err)
	}

	matched := 0
	for i := range txs {
		if !math.IsNaN(results[i]) {
			set(&txs[i], domain.Float64p(results[i]))
			matched++
		}
	}
	slog.Info("attached school metric", "rows", len(txs), "schools", len(schools), "k", k, "matched", matched)
	return nil
}
