// Package enrich attaches the contextual feature layers to cleaned
// transactions: metropolitan grouping, IRIS statistical zones with their
// socio-economic values, amenity counts, school quality metrics and the
// neighborhood price level.
package enrich

import (
	"log/slog"
	"sort"
	"strings"

	"dvfpipe/internal/domain"
)

// arrondissementCities are the communes whose DVF rows carry a per-district
// name ("Paris 15e Arrondissement"). The district suffix is collapsed for
// the EPCI lookup only; NomCommune keeps the raw value.
var arrondissementCities = []string{"Paris", "Lyon", "Marseille"}

func lookupName(nomCommune string) string {
	for _, city := range arrondissementCities {
		if strings.HasPrefix(nomCommune, city+" ") && strings.HasSuffix(nomCommune, "Arrondissement") {
			return city
		}
	}
	return nomCommune
}

// AttachEPCI fills LibEPCI from the commune-to-EPCI table. Communes absent
// from the table keep an empty LibEPCI.
func AttachEPCI(txs []domain.Transaction, metropoles map[string]string) {
	matched := 0
	for i := range txs {
		if epci, ok := metropoles[lookupName(txs[i].NomCommune)]; ok {
			txs[i].LibEPCI = epci
			matched++
		}
	}
	slog.Info("attached EPCI groupings", "rows", len(txs), "matched", matched)
}

// TopZones keeps the rows belonging to the n most frequent EPCIs. Rows
// without an EPCI never qualify. n <= 0 disables the restriction.
func TopZones(txs []domain.Transaction, n int) []domain.Transaction {
	if n <= 0 {
		return txs
	}

	counts := make(map[string]int)
	for i := range txs {
		if txs[i].LibEPCI != "" {
			counts[txs[i].LibEPCI]++
		}
	}

	type zone struct {
		name  string
		count int
	}
	zones := make([]zone, 0, len(counts))
	for name, count := range counts {
		zones = append(zones, zone{name, count})
	}
	sort.Slice(zones, func(a, b int) bool {
		if zones[a].count != zones[b].count {
			return zones[a].count > zones[b].count
		}
		return zones[a].name < zones[b].name
	})
	if len(zones) > n {
		zones = zones[:n]
	}

	keep := make(map[string]bool, len(zones))
	for _, z := range zones {
		keep[z.name] = true
	}

	out := txs[:0]
	for i := range txs {
		if keep[txs[i].LibEPCI] {
			out = append(out, txs[i])
		}
	}
	slog.Info("restricted to top zones", "zones", len(zones), "kept", len(out), "dropped", len(txs)-len(out))
	return out
}
