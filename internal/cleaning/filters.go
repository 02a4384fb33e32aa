package cleaning

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"dvfpipe/internal/domain"
)

// SelectBien keeps ordinary sales of apartments and houses with a known
// location. Spatial enrichment cannot work without coordinates, so rows
// lacking them are dropped here rather than carried as dead weight.
func SelectBien(txs []domain.Transaction) []domain.Transaction {
	var kept []domain.Transaction
	for i := range txs {
		tx := &txs[i]
		if tx.NatureMutation != domain.NatureVente {
			continue
		}
		if tx.TypeLocal != domain.Apartment && tx.TypeLocal != domain.House {
			continue
		}
		if !tx.HasLocation() {
			continue
		}
		kept = append(kept, *tx)
	}
	slog.Debug("selected property types", "input_rows", len(txs), "output_rows", len(kept))
	return kept
}

// FiltreDur drops rows of the given property type whose built surface or
// room count exceeds the hard bounds, or is missing entirely: a bound
// cannot be checked against an absent value, so the row goes. When
// metropole is non-empty the bound only applies inside that EPCI grouping;
// every other row passes through unchanged.
func FiltreDur(txs []domain.Transaction, maxSurface, maxRooms float64, local domain.PropertyType, metropole string) []domain.Transaction {
	var kept []domain.Transaction
	for i := range txs {
		tx := &txs[i]
		targeted := tx.TypeLocal == local && (metropole == "" || tx.LibEPCI == metropole)
		if targeted && !(tx.SurfaceBati <= maxSurface && tx.RoomCount <= maxRooms) {
			continue
		}
		kept = append(kept, *tx)
	}
	slog.Debug("applied hard bounds",
		"type_local", string(local),
		"max_surface", maxSurface,
		"max_rooms", maxRooms,
		"input_rows", len(txs),
		"output_rows", len(kept),
	)
	return kept
}

// PriceMetric selects which price-per-m² column the quantile filter reads.
type PriceMetric func(*domain.Transaction) float64

// PrixM2Actualise reads the normalized price per m². The training partition
// must be filtered on this metric; filtering on the raw price corrupts
// cross-period comparisons.
func PrixM2Actualise(tx *domain.Transaction) float64 { return tx.PrixM2Actu }

// PrixM2 reads the raw price per m², used for the held-out test partition.
func PrixM2(tx *domain.Transaction) float64 { return tx.PrixM2 }

// FiltrePrix drops rows whose price metric falls outside [minPrice, maxPrice],
// then computes the per (commune, property type) quantile of the metric and
// keeps only rows strictly below their group quantile. The group quantile is
// recorded on each surviving row.
func FiltrePrix(txs []domain.Transaction, metric PriceMetric, minPrice, maxPrice, quantile float64) []domain.Transaction {
	var bounded []domain.Transaction
	for i := range txs {
		v := metric(&txs[i])
		if math.IsNaN(v) || v < minPrice || v > maxPrice {
			continue
		}
		bounded = append(bounded, txs[i])
	}

	type groupKey struct {
		commune string
		local   domain.PropertyType
	}
	groups := make(map[groupKey][]float64)
	for i := range bounded {
		k := groupKey{bounded[i].NomCommune, bounded[i].TypeLocal}
		groups[k] = append(groups[k], metric(&bounded[i]))
	}

	cutoffs := make(map[groupKey]float64, len(groups))
	for k, values := range groups {
		sort.Float64s(values)
		cutoffs[k] = stat.Quantile(quantile, stat.LinInterp, values, nil)
	}

	var kept []domain.Transaction
	for i := range bounded {
		tx := bounded[i]
		cutoff := cutoffs[groupKey{tx.NomCommune, tx.TypeLocal}]
		if metric(&tx) >= cutoff {
			continue
		}
		tx.QuantilPrix = cutoff
		kept = append(kept, tx)
	}

	slog.Debug("applied price quantile filter",
		"quantile", quantile,
		"input_rows", len(txs),
		"bounded_rows", len(bounded),
		"output_rows", len(kept),
	)
	return kept
}
