// Package pricing implements the price normalizer: commune to pricing-zone
// resolution, the quarterly price index table and the discounting of sale
// prices to a common reference quarter.
package pricing

import (
	"fmt"
	"strings"
)

// Zone selects a price index series. Either one of the four named large-city
// zones or one of the A/Abis/B1/B2/C tier categories covering every other
// commune.
type Zone string

const (
	ZoneParis     Zone = "Paris"
	ZoneLyon      Zone = "Lyon"
	ZoneMarseille Zone = "Marseille"
	ZoneLille     Zone = "Lille"
	ZoneA         Zone = "A"
	ZoneABis      Zone = "Abis"
	ZoneB1        Zone = "B1"
	ZoneB2        Zone = "B2"
	ZoneC         Zone = "C"
)

// ErrInvalidZone signals a zone string outside the enumerated set. The
// tier-C fallback has already been applied at that point, so this is a
// data-quality fault, never silently defaulted.
var ErrInvalidZone = fmt.Errorf("invalid pricing zone")

func validZone(z Zone) bool {
	switch z {
	case ZoneParis, ZoneLyon, ZoneMarseille, ZoneLille, ZoneA, ZoneABis, ZoneB1, ZoneB2, ZoneC:
		return true
	}
	return false
}

// arrondissements lists the commune names of a large city's districts as
// they appear in DVF, e.g. "Paris 1er Arrondissement".
func arrondissements(city string, n int) []string {
	names := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		suffix := "e"
		if i == 1 {
			suffix = "er"
		}
		names = append(names, fmt.Sprintf("%s %d%s Arrondissement", city, i, suffix))
	}
	return names
}

// Resolver maps communes to pricing zones. The three arrondissement cities
// and Lille resolve by name; every other commune resolves through the
// zonage ABC classification table, defaulting to tier C when unlisted.
type Resolver struct {
	cities map[string]Zone
	zonage map[string]Zone // commune code -> tier
}

// NewResolver builds a resolver around the zonage classification table,
// keyed by 5-character commune code.
func NewResolver(zonage map[string]Zone) *Resolver {
	cities := make(map[string]Zone)
	for _, name := range arrondissements("Paris", 20) {
		cities[name] = ZoneParis
	}
	for _, name := range arrondissements("Lyon", 9) {
		cities[name] = ZoneLyon
	}
	for _, name := range arrondissements("Marseille", 16) {
		cities[name] = ZoneMarseille
	}
	cities["Lille"] = ZoneLille
	return &Resolver{cities: cities, zonage: zonage}
}

// PadCommuneCode left-pads 4-character commune codes to the canonical 5
// characters. Codes of departments 01-09 lose their leading zero when read
// as integers.
func PadCommuneCode(code string) string {
	code = strings.TrimSpace(code)
	if len(code) == 4 {
		return "0" + code
	}
	return code
}

// Resolve maps a commune to its pricing zone. An unlisted commune falls back
// to tier C; a zonage entry outside the enumerated set is a fatal
// data-quality error.
func (r *Resolver) Resolve(nomCommune, codeCommune string) (Zone, error) {
	if z, ok := r.cities[nomCommune]; ok {
		return z, nil
	}
	z, ok := r.zonage[PadCommuneCode(codeCommune)]
	if !ok {
		return ZoneC, nil
	}
	if !validZone(z) {
		return "", fmt.Errorf("%w: %q for commune %s (%s)", ErrInvalidZone, z, nomCommune, codeCommune)
	}
	return z, nil
}

// ParseZoneLabel normalizes the zonage table's tier spellings ("A bis",
// "Abis", "C", ...) to a Zone value.
func ParseZoneLabel(label string) Zone {
	label = strings.TrimSpace(label)
	if strings.EqualFold(label, "A bis") || strings.EqualFold(label, "Abis") {
		return ZoneABis
	}
	return Zone(label)
}
