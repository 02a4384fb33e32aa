package domain

import (
	"math"
	"time"
)

// PropertyType is the DVF type_local value for a disposed property.
type PropertyType string

const (
	Apartment PropertyType = "Appartement"
	House     PropertyType = "Maison"
)

// NatureVente is the nature_mutation value for ordinary sales. All other
// mutation natures (exchanges, expropriations, ...) are excluded upstream.
const NatureVente = "Vente"

// Transaction is a single DVF disposition row. Raw fields come straight from
// the registry extract; derived fields are filled in by the pipeline stages
// and start as NaN (floats) or nil (enrichments).
type Transaction struct {
	MutationID     string
	Date           time.Time
	DispositionNo  string
	NatureMutation string
	TypeLocal      PropertyType

	ValeurFonciere float64
	SurfaceBati    float64
	RoomCount      float64
	SurfaceTerrain float64

	CodeCommune     string
	NomCommune      string
	CodeDepartement string
	IDParcelle      string
	Longitude       float64
	Latitude        float64

	// Derived by the pipeline.
	LibEPCI     string
	SaleQuarter Quarter
	CoeffActu   float64
	PrixActu    float64
	PrixM2Actu  float64
	PrixM2      float64
	QuantilPrix float64

	// Enrichments; nil means no match (expected absence, row retained).
	PrixM2Zone    *float64
	Moyenne       *float64
	MoyenneBrevet *float64
	IRISCode      string
	Income        *IncomeProfile
	Amenities     *AmenityCounts
}

// NewTransaction returns a Transaction with all optional numeric raw fields
// set to NaN, the representation used for values absent from the source file.
func NewTransaction() Transaction {
	nan := math.NaN()
	return Transaction{
		ValeurFonciere: nan,
		SurfaceBati:    nan,
		RoomCount:      nan,
		SurfaceTerrain: nan,
		Longitude:      nan,
		Latitude:       nan,
		CoeffActu:      nan,
		PrixActu:       nan,
		PrixM2Actu:     nan,
		PrixM2:         nan,
		QuantilPrix:    nan,
	}
}

// GroupKey is the composite mutation identity used by the deduplicator:
// the mutation id concatenated with the sale date. Two rows with the same
// key belong to the same disposal event.
func (t *Transaction) GroupKey() string {
	return t.MutationID + t.Date.Format("2006-01-02")
}

// HasLocation reports whether both coordinates are present. Spatial
// enrichment depends on property location, so rows without it are dropped
// early by the filter chain.
func (t *Transaction) HasLocation() bool {
	return !math.IsNaN(t.Latitude) && !math.IsNaN(t.Longitude)
}

// Float64p returns a pointer to v, the representation used for present
// enrichment values.
func Float64p(v float64) *float64 { return &v }
