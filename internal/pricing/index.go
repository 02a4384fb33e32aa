package pricing

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"dvfpipe/internal/domain"
)

// INSEE series labels of interest in the quarterly index table. Each large
// city publishes one property type; the missing sibling series is
// synthesized from the national house/apartment ratio. Tier zones publish a
// single type-independent series.
const (
	labelParisApt      = "Indice des prix des logements anciens - Paris - Appartements - Base 100 en moyenne annuelle 2015 - Série CVS"
	labelLyonApt       = "Indice des prix des logements anciens - Agglomération de Lyon - Appartements - Base 100 en moyenne annuelle 2015 - Série CVS"
	labelMarseilleApt  = "Indice des prix des logements anciens - Agglomération de Marseille - Appartements - Base 100 en moyenne annuelle 2015 - Série CVS"
	labelLilleHouse    = "Indice des prix des logements anciens - Agglomération de Lille - Maisons - Base 100 en moyenne annuelle 2015 - Série CVS"
	labelFranceApt     = "Indice des prix des logements anciens - France métropolitaine - Appartements - Base 100 en moyenne annuelle 2015 - série CVS"
	labelFranceHouse   = "Indice des prix des logements anciens - France métropolitaine - Maisons - Base 100 en moyenne annuelle 2015 - Série CVS"
	labelZoneA         = "Indice des prix des logements anciens - Zone A du Zonage A, B, C - Base 100 en moyenne annuelle 2015 - Série CVS"
	labelZoneABis      = "Indice des prix des logements anciens - Zone A bis du Zonage A, B, C - Base 100 en moyenne annuelle 2015 - Série CVS"
	labelZoneB1        = "Indice des prix des logements anciens - Zone B1 du Zonage A, B, C - Base 100 en moyenne annuelle 2015 - Série CVS"
	labelZoneB2        = "Indice des prix des logements anciens - Zone B2 du Zonage A, B, C - Base 100 en moyenne annuelle 2015 - Série CVS"
	labelZoneC         = "Indice des prix des logements anciens - Zone C du Zonage A, B, C - Base 100 en moyenne annuelle 2015 - Série CVS"
)

var cityLabels = map[string]struct {
	zone  Zone
	local domain.PropertyType
}{
	labelParisApt:     {ZoneParis, domain.Apartment},
	labelLyonApt:      {ZoneLyon, domain.Apartment},
	labelMarseilleApt: {ZoneMarseille, domain.Apartment},
	labelLilleHouse:   {ZoneLille, domain.House},
}

var tierLabels = map[string]Zone{
	labelZoneA:    ZoneA,
	labelZoneABis: ZoneABis,
	labelZoneB1:   ZoneB1,
	labelZoneB2:   ZoneB2,
	labelZoneC:    ZoneC,
}

// RawIndexTable is the quarterly index table as read from the source file:
// one row per series label, one string cell per quarter column. Suppressed
// observations are published as "(s)".
type RawIndexTable struct {
	Quarters []string
	Series   map[string][]string
}

type seriesKey struct {
	zone  Zone
	local domain.PropertyType
}

// IndexTable is the densified price index: forward-filled quarterly values
// for every (zone, property type) pair. It is immutable once built.
type IndexTable struct {
	quarters []domain.Quarter
	values   map[seriesKey][]float64
}

// BuildIndexTable densifies the raw table: quarter columns are parsed and
// calendar-ordered, missing observations carry the last known value forward,
// and each large city's absent sibling series is synthesized by applying the
// national house/apartment ratio per quarter.
func BuildIndexTable(raw *RawIndexTable) (*IndexTable, error) {
	var quarters []domain.Quarter
	cols := make([]int, 0, len(raw.Quarters))
	for i, label := range raw.Quarters {
		q, err := domain.ParseQuarter(label)
		if err != nil {
			continue // non-quarter columns (annual aggregates, blanks)
		}
		quarters = append(quarters, q)
		cols = append(cols, i)
	}
	if len(quarters) == 0 {
		return nil, fmt.Errorf("index table has no quarter columns")
	}

	order := make([]int, len(quarters))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return quarters[order[a]].Before(quarters[order[b]]) })

	parse := func(label string) []float64 {
		cells, ok := raw.Series[label]
		if !ok {
			return nil
		}
		vals := make([]float64, len(order))
		for i, oi := range order {
			vals[i] = parseIndexCell(cells, cols[oi])
		}
		forwardFill(vals)
		return vals
	}

	franceApt := parse(labelFranceApt)
	franceHouse := parse(labelFranceHouse)
	if franceApt == nil || franceHouse == nil {
		return nil, fmt.Errorf("index table is missing the national reference series")
	}

	sorted := make([]domain.Quarter, len(order))
	for i, oi := range order {
		sorted[i] = quarters[oi]
	}

	t := &IndexTable{
		quarters: sorted,
		values:   make(map[seriesKey][]float64),
	}

	for label, zone := range tierLabels {
		vals := parse(label)
		if vals == nil {
			return nil, fmt.Errorf("index table is missing series for zone %s", zone)
		}
		t.values[seriesKey{zone, domain.Apartment}] = vals
		t.values[seriesKey{zone, domain.House}] = vals
	}

	for label, s := range cityLabels {
		vals := parse(label)
		if vals == nil {
			return nil, fmt.Errorf("index table is missing series for zone %s", s.zone)
		}
		t.values[seriesKey{s.zone, s.local}] = vals

		sibling := domain.House
		ratio := franceHouse
		base := franceApt
		if s.local == domain.House {
			sibling = domain.Apartment
			ratio = franceApt
			base = franceHouse
		}
		synth := make([]float64, len(vals))
		for i := range vals {
			synth[i] = vals[i] * ratio[i] / base[i]
		}
		t.values[seriesKey{s.zone, sibling}] = synth
	}

	return t, nil
}

// Lookup returns the index value for a zone, property type and quarter.
// A quarter outside the table span, or one preceding the first published
// observation of the series, is an error.
func (t *IndexTable) Lookup(zone Zone, local domain.PropertyType, q domain.Quarter) (float64, error) {
	if !validZone(zone) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidZone, zone)
	}
	vals, ok := t.values[seriesKey{zone, local}]
	if !ok {
		return 0, fmt.Errorf("no index series for zone %s / %s", zone, local)
	}
	pos := -1
	for i, tq := range t.quarters {
		if tq == q {
			pos = i
			break
		}
	}
	if pos == -1 {
		return 0, fmt.Errorf("quarter %s not covered by the index table", q)
	}
	v := vals[pos]
	if math.IsNaN(v) {
		return 0, fmt.Errorf("no index value for zone %s / %s at %s", zone, local, q)
	}
	return v, nil
}

// Quarters returns the calendar-ordered quarters covered by the table.
func (t *IndexTable) Quarters() []domain.Quarter {
	out := make([]domain.Quarter, len(t.quarters))
	copy(out, t.quarters)
	return out
}

func parseIndexCell(cells []string, i int) float64 {
	if i >= len(cells) {
		return math.NaN()
	}
	cell := strings.TrimSpace(cells[i])
	if cell == "" || cell == "(s)" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", "."), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// forwardFill replaces NaN entries with the last preceding observation.
// Leading NaNs stay NaN; Lookup rejects them.
func forwardFill(vals []float64) {
	last := math.NaN()
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = last
		} else {
			last = v
		}
	}
}
