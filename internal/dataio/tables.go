package dataio

import (
	"log/slog"
	"math"

	"dvfpipe/internal/domain"
	"dvfpipe/internal/pricing"
)

// ReadMetropoles reads the commune-to-EPCI classification. The source file
// opens with five preamble lines ahead of the header. Returns commune name
// (LIBGEO) to metropolitan grouping (LIBEPCI).
func ReadMetropoles(path string) (map[string]string, error) {
	t, err := readTable(path, ';', 5)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns("LIBGEO", "LIBEPCI")
	if err != nil {
		return nil, err
	}

	m := make(map[string]string, len(t.rows))
	for _, row := range t.rows {
		name := t.cell(row, cols[0])
		if name == "" {
			continue
		}
		if _, ok := m[name]; !ok {
			m[name] = t.cell(row, cols[1])
		}
	}
	slog.Info("read metropoles table", "communes", len(m))
	return m, nil
}

// ReadIndexTable reads the quarterly price index file: one row per series
// label ("Libellé"), one column per quarter.
func ReadIndexTable(path string) (*pricing.RawIndexTable, error) {
	t, err := readTable(path, ';', 0)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns("Libellé")
	if err != nil {
		return nil, err
	}
	labelCol := cols[0]

	quarters := make([]string, 0, len(t.header))
	quarterCols := make([]int, 0, len(t.header))
	for name, i := range t.header {
		if i == labelCol {
			continue
		}
		quarters = append(quarters, name)
		quarterCols = append(quarterCols, i)
	}

	raw := &pricing.RawIndexTable{
		Quarters: quarters,
		Series:   make(map[string][]string, len(t.rows)),
	}
	for _, row := range t.rows {
		label := t.cell(row, labelCol)
		if label == "" {
			continue
		}
		values := make([]string, len(quarterCols))
		for i, c := range quarterCols {
			values[i] = t.cell(row, c)
		}
		raw.Series[label] = values
	}
	slog.Info("read index table", "series", len(raw.Series), "columns", len(raw.Quarters))
	return raw, nil
}

// irisValueColumns maps the DISP_* indicator columns onto IncomeProfile
// slots, in IncomeColumns order. The median doubles as the fifth decile.
var irisValueColumns = []string{
	"DISP_TP6019", "DISP_Q119", "DISP_MED19", "DISP_Q319", "DISP_EQ19",
	"DISP_D119", "DISP_D219", "DISP_D319", "DISP_D419", "DISP_MED19",
	"DISP_D619", "DISP_D719", "DISP_D819", "DISP_D919",
	"DISP_RD19", "DISP_S80S2019", "DISP_GI19",
	"DISP_PACT19", "DISP_PTSA19", "DISP_PCHO19", "DISP_PBEN19",
	"DISP_PPEN19", "DISP_PPAT19", "DISP_PPSOC19", "DISP_PPFAM19",
	"DISP_PPMINI19", "DISP_PPLOGT19", "DISP_PIMPOT19",
}

// ReadIRISValues reads the IRIS socio-economic indicator table, keyed by
// the 9-character zero-padded IRIS code. Duplicate codes keep the first
// occurrence.
func ReadIRISValues(path string) (map[string]*domain.IncomeProfile, error) {
	t, err := readTable(path, ';', 0)
	if err != nil {
		return nil, err
	}
	keyCols, err := t.columns("IRIS")
	if err != nil {
		return nil, err
	}
	cols, err := t.columns(irisValueColumns...)
	if err != nil {
		return nil, err
	}

	values := make(map[string]*domain.IncomeProfile, len(t.rows))
	for _, row := range t.rows {
		code := domain.NormalizeIRISCode(t.cell(row, keyCols[0]))
		if code == "" {
			continue
		}
		if _, ok := values[code]; ok {
			continue
		}

		v := make([]float64, len(cols))
		for i, c := range cols {
			v[i] = parseFloat(t.cell(row, c))
		}
		values[code] = &domain.IncomeProfile{
			PovertyRate60: v[0], Q1: v[1], Median: v[2], Q3: v[3], IQRToMedian: v[4],
			D1: v[5], D2: v[6], D3: v[7], D4: v[8], D5: v[9],
			D6: v[10], D7: v[11], D8: v[12], D9: v[13],
			D9ToD1: v[14], S80S20: v[15], Gini: v[16],
			ShareActivity: v[17], ShareSalary: v[18], ShareUnemployed: v[19], ShareSelfEmp: v[20],
			SharePensions: v[21], ShareCapital: v[22], ShareWelfare: v[23], ShareFamily: v[24],
			ShareMinima: v[25], ShareHousing: v[26], ShareTaxes: v[27],
		}
	}
	slog.Info("read iris values", "zones", len(values))
	return values, nil
}

// AmenityRow is one equipment record from the BPE register.
type AmenityRow struct {
	IRIS   string
	TypeEq string
}

// ReadAmenities reads the equipment register rows (IRIS code + equipment
// type code).
func ReadAmenities(path string) ([]AmenityRow, error) {
	t, err := readTable(path, ';', 0)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns("DCIRIS", "TYPEQU")
	if err != nil {
		return nil, err
	}

	rows := make([]AmenityRow, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, AmenityRow{
			IRIS:   domain.NormalizeIRISCode(t.cell(row, cols[0])),
			TypeEq: t.cell(row, cols[1]),
		})
	}
	slog.Info("read amenities register", "rows", len(rows))
	return rows, nil
}

// SchoolPosition is the geocoded location of an establishment.
type SchoolPosition struct {
	Latitude  float64
	Longitude float64
}

// ReadSchoolGeo reads the establishment geolocation table keyed by UAI
// code. Entries without usable coordinates are dropped.
func ReadSchoolGeo(path string) (map[string]SchoolPosition, error) {
	t, err := readTable(path, ';', 0)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns("numero_uai", "latitude", "longitude")
	if err != nil {
		return nil, err
	}

	geos := make(map[string]SchoolPosition, len(t.rows))
	for _, row := range t.rows {
		uai := t.cell(row, cols[0])
		lat := parseFloat(t.cell(row, cols[1]))
		lon := parseFloat(t.cell(row, cols[2]))
		if uai == "" || math.IsNaN(lat) || math.IsNaN(lon) {
			continue
		}
		geos[uai] = SchoolPosition{Latitude: lat, Longitude: lon}
	}
	slog.Info("read school geolocation", "establishments", len(geos))
	return geos, nil
}

// LyceeRow is one upper-secondary school result row: per-track candidate
// and success-rate figures for one year.
type LyceeRow struct {
	Year        int
	Name        string
	UAI         string
	CodeCommune string
	PresentsL   float64
	PresentsES  float64
	PresentsS   float64
	MentionsL   float64
	MentionsES  float64
	MentionsS   float64
}

// ReadLyceeResults reads the baccalauréat results table.
func ReadLyceeResults(path string) ([]LyceeRow, error) {
	t, err := readTable(path, ';', 0)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns(
		"Annee", "Etablissement", "UAI", "Code commune",
		"Presents - L", "Presents - ES", "Presents - S",
		"Taux de mentions - L", "Taux de mentions - ES", "Taux de mentions - S",
	)
	if err != nil {
		return nil, err
	}

	rows := make([]LyceeRow, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, LyceeRow{
			Year:        int(parseFloat(t.cell(row, cols[0]))),
			Name:        t.cell(row, cols[1]),
			UAI:         t.cell(row, cols[2]),
			CodeCommune: t.cell(row, cols[3]),
			PresentsL:   parseFloat(t.cell(row, cols[4])),
			PresentsES:  parseFloat(t.cell(row, cols[5])),
			PresentsS:   parseFloat(t.cell(row, cols[6])),
			MentionsL:   parseFloat(t.cell(row, cols[7])),
			MentionsES:  parseFloat(t.cell(row, cols[8])),
			MentionsS:   parseFloat(t.cell(row, cols[9])),
		})
	}
	slog.Info("read lycee results", "rows", len(rows))
	return rows, nil
}

// BrevetRow is one middle-school result row for one session.
type BrevetRow struct {
	Session        int
	UAI            string
	CodeCommune    string
	Admis          float64
	AdmisMentionTB float64
	TauxReussite   float64
}

// ReadBrevetResults reads the brevet results table.
func ReadBrevetResults(path string) ([]BrevetRow, error) {
	t, err := readTable(path, ';', 0)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns(
		"session", "numero_d_etablissement", "code_commune",
		"nombre_total_d_admis", "nombre_d_admis_mention_tb", "taux_de_reussite",
	)
	if err != nil {
		return nil, err
	}

	rows := make([]BrevetRow, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, BrevetRow{
			Session:        int(parseFloat(t.cell(row, cols[0]))),
			UAI:            t.cell(row, cols[1]),
			CodeCommune:    t.cell(row, cols[2]),
			Admis:          parseFloat(t.cell(row, cols[3])),
			AdmisMentionTB: parseFloat(t.cell(row, cols[4])),
			TauxReussite:   parseFloat(t.cell(row, cols[5])),
		})
	}
	slog.Info("read brevet results", "rows", len(rows))
	return rows, nil
}
