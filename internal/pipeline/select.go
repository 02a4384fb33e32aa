package pipeline

import (
	"math"
	"strconv"

	"dvfpipe/internal/domain"
)

// baseColumns are the fixed leading output columns. The full header appends
// the income indicator and amenity count column groups; names are the
// output contract, downstream consumers select by name.
var baseColumns = []string{
	"id_mutation",
	"date_mutation",
	"numero_disposition",
	"valeur_fonciere",
	"code_commune",
	"nom_commune",
	"code_departement",
	"libepci",
	"id_parcelle",
	"type_local",
	"surface_reelle_bati",
	"nombre_pieces_principales",
	"surface_terrain",
	"longitude",
	"latitude",
	"trimestre_vente",
	"coeff_actu",
	"prix_actualise",
	"prix_m2_actualise",
	"prix_m2",
	"quantile_prix",
	"prix_m2_zone",
	"moyenne",
	"moyenne_brevet",
	"code_iris",
}

// OutputHeader returns the ordered output column names.
func OutputHeader() []string {
	header := make([]string, 0, len(baseColumns)+len(domain.IncomeColumns)+len(domain.AmenityColumns))
	header = append(header, baseColumns...)
	header = append(header, domain.IncomeColumns...)
	header = append(header, domain.AmenityColumns...)
	return header
}

// formatFloat serializes a float, mapping NaN to the empty field.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatFloatp serializes an optional float; nil is the empty field.
func formatFloatp(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// SelectFeatures serializes the transactions to output records in
// OutputHeader order. Absent enrichments become empty fields, never zeros.
func SelectFeatures(txs []domain.Transaction) [][]string {
	records := make([][]string, len(txs))
	width := len(baseColumns) + len(domain.IncomeColumns) + len(domain.AmenityColumns)

	for i := range txs {
		tx := &txs[i]
		record := make([]string, 0, width)
		record = append(record,
			tx.MutationID,
			tx.Date.Format("2006-01-02"),
			tx.DispositionNo,
			formatFloat(tx.ValeurFonciere),
			tx.CodeCommune,
			tx.NomCommune,
			tx.CodeDepartement,
			tx.LibEPCI,
			tx.IDParcelle,
			string(tx.TypeLocal),
			formatFloat(tx.SurfaceBati),
			formatFloat(tx.RoomCount),
			formatFloat(tx.SurfaceTerrain),
			formatFloat(tx.Longitude),
			formatFloat(tx.Latitude),
			tx.SaleQuarter.String(),
			formatFloat(tx.CoeffActu),
			formatFloat(tx.PrixActu),
			formatFloat(tx.PrixM2Actu),
			formatFloat(tx.PrixM2),
			formatFloat(tx.QuantilPrix),
			formatFloatp(tx.PrixM2Zone),
			formatFloatp(tx.Moyenne),
			formatFloatp(tx.MoyenneBrevet),
			tx.IRISCode,
		)

		if tx.Income != nil {
			for _, v := range tx.Income.Values() {
				record = append(record, formatFloat(v))
			}
		} else {
			for range domain.IncomeColumns {
				record = append(record, "")
			}
		}

		if tx.Amenities != nil {
			for _, v := range tx.Amenities.Values() {
				record = append(record, strconv.Itoa(v))
			}
		} else {
			for range domain.AmenityColumns {
				record = append(record, "")
			}
		}

		records[i] = record
	}
	return records
}
