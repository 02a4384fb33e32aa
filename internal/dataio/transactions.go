package dataio

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"dvfpipe/internal/domain"
)

// dvfColumns are the raw extract columns the pipeline requires.
var dvfColumns = []string{
	"id_mutation",
	"date_mutation",
	"numero_disposition",
	"nature_mutation",
	"valeur_fonciere",
	"code_commune",
	"nom_commune",
	"code_departement",
	"id_parcelle",
	"type_local",
	"surface_reelle_bati",
	"nombre_pieces_principales",
	"surface_terrain",
	"longitude",
	"latitude",
}

// ReadTransactions reads one or more DVF extracts into a single transaction
// slice. rowCap truncates the concatenated result when positive.
func ReadTransactions(paths []string, rowCap int) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	for _, path := range paths {
		part, err := readTransactionFile(path)
		if err != nil {
			return nil, err
		}
		txs = append(txs, part...)
		if rowCap > 0 && len(txs) >= rowCap {
			txs = txs[:rowCap]
			break
		}
	}
	slog.Info("read transactions", "files", len(paths), "rows", len(txs))
	return txs, nil
}

func readTransactionFile(path string) ([]domain.Transaction, error) {
	t, err := readTable(path, ',', 0)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns(dvfColumns...)
	if err != nil {
		return nil, err
	}

	txs := make([]domain.Transaction, 0, len(t.rows))
	for i, row := range t.rows {
		tx := domain.NewTransaction()
		tx.MutationID = t.cell(row, cols[0])

		date, err := time.Parse("2006-01-02", t.cell(row, cols[1]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: parse date_mutation: %w", path, i+2, err)
		}
		tx.Date = date

		tx.DispositionNo = t.cell(row, cols[2])
		tx.NatureMutation = t.cell(row, cols[3])
		tx.ValeurFonciere = parseFloat(t.cell(row, cols[4]))
		tx.CodeCommune = t.cell(row, cols[5])
		tx.NomCommune = t.cell(row, cols[6])
		tx.CodeDepartement = t.cell(row, cols[7])
		tx.IDParcelle = t.cell(row, cols[8])
		tx.TypeLocal = domain.PropertyType(t.cell(row, cols[9]))
		tx.SurfaceBati = parseFloat(t.cell(row, cols[10]))
		tx.RoomCount = parseFloat(t.cell(row, cols[11]))
		tx.SurfaceTerrain = parseFloat(t.cell(row, cols[12]))
		tx.Longitude = parseFloat(t.cell(row, cols[13]))
		tx.Latitude = parseFloat(t.cell(row, cols[14]))

		txs = append(txs, tx)
	}
	return txs, nil
}

// parseFloat maps absent or malformed numeric cells to NaN, the in-memory
// missing-value representation.
func parseFloat(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", "."), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
