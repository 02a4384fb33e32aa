package domain

import "strings"

// NormalizeIRISCode zero-pads an IRIS code to the canonical 9 characters.
// Source files frequently carry the code as an integer, losing leading zeros.
func NormalizeIRISCode(code string) string {
	code = strings.TrimSpace(code)
	if len(code) >= 9 {
		return code
	}
	return strings.Repeat("0", 9-len(code)) + code
}

// IncomeProfile carries the IRIS-level socio-economic indicators attached to
// a transaction by the IRIS layer merge. Field order mirrors IncomeColumns.
type IncomeProfile struct {
	PovertyRate60    float64
	Q1               float64
	Median           float64
	Q3               float64
	IQRToMedian      float64
	D1               float64
	D2               float64
	D3               float64
	D4               float64
	D5               float64
	D6               float64
	D7               float64
	D8               float64
	D9               float64
	D9ToD1           float64
	S80S20           float64
	Gini             float64
	ShareActivity    float64
	ShareSalary      float64
	ShareUnemployed  float64
	ShareSelfEmp     float64
	SharePensions    float64
	ShareCapital     float64
	ShareWelfare     float64
	ShareFamily      float64
	ShareMinima      float64
	ShareHousing     float64
	ShareTaxes       float64
}

// IncomeColumns is the ordered list of output column names for IncomeProfile.
// The names are part of the output contract; downstream consumers select by
// name.
var IncomeColumns = []string{
	"Taux_pauvreté_seuil_60",
	"Q1",
	"Mediane",
	"Q3",
	"Ecart_inter_Q_rapporte_a_la_mediane",
	"D1",
	"D2",
	"D3",
	"D4",
	"D5",
	"D6",
	"D7",
	"D8",
	"D9",
	"Rapport_interdécile_D9/D1",
	"S80/S20",
	"Gini",
	"Part_revenus_activite",
	"Part_salaire",
	"Part_revenus_chomage",
	"Part_revenus_non_salariées",
	"Part_retraites",
	"Part_revenus_patrimoine",
	"Part_prestations_sociales",
	"Part_prestations_familiales",
	"Part_minima_sociaux",
	"Part_prestations_logement",
	"Part_impôts",
}

// Values returns the indicator values in IncomeColumns order.
func (p *IncomeProfile) Values() []float64 {
	return []float64{
		p.PovertyRate60, p.Q1, p.Median, p.Q3, p.IQRToMedian,
		p.D1, p.D2, p.D3, p.D4, p.D5, p.D6, p.D7, p.D8, p.D9,
		p.D9ToD1, p.S80S20, p.Gini,
		p.ShareActivity, p.ShareSalary, p.ShareUnemployed, p.ShareSelfEmp,
		p.SharePensions, p.ShareCapital, p.ShareWelfare, p.ShareFamily,
		p.ShareMinima, p.ShareHousing, p.ShareTaxes,
	}
}

// AmenityCounts carries the per-IRIS amenity counts for the ten category
// groups of the BPE equipment register.
type AmenityCounts struct {
	Banks       int
	PostOffices int
	Shops       int
	Schools     int
	SecSchools  int
	Doctors     int
	Stations    int
	Cinemas     int
	Libraries   int
	Heritage    int
}

// AmenityColumns is the ordered list of output column names for AmenityCounts.
var AmenityColumns = []string{
	"Banques",
	"Bureaux_de_Poste",
	"Commerces",
	"Ecoles",
	"Collèges_Lycées",
	"Medecins",
	"Gares",
	"Cinema",
	"Bibliotheques",
	"Espaces_remarquables_et_patrimoine",
}

// Values returns the counts in AmenityColumns order.
func (a *AmenityCounts) Values() []int {
	return []int{
		a.Banks, a.PostOffices, a.Shops, a.Schools, a.SecSchools,
		a.Doctors, a.Stations, a.Cinemas, a.Libraries, a.Heritage,
	}
}
