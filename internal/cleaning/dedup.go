// Package cleaning implements the transaction deduplicator and the property
// filter chain applied ahead of price normalization.
package cleaning

import (
	"fmt"
	"log/slog"
	"strings"

	"dvfpipe/internal/domain"
)

// rowIdentity builds the exact-duplicate key over every raw input field, so
// two rows collapse only when the whole record matches. LibEPCI is derived
// from NomCommune after the join and stays out of the key.
func rowIdentity(tx *domain.Transaction) string {
	return strings.Join([]string{
		tx.MutationID,
		tx.Date.Format("2006-01-02"),
		tx.DispositionNo,
		tx.NatureMutation,
		string(tx.TypeLocal),
		fmt.Sprintf("%v|%v|%v|%v", tx.ValeurFonciere, tx.SurfaceBati, tx.RoomCount, tx.SurfaceTerrain),
		tx.NomCommune,
		tx.CodeCommune,
		tx.CodeDepartement,
		tx.IDParcelle,
		fmt.Sprintf("%v|%v", tx.Longitude, tx.Latitude),
	}, "§")
}

// Deduplicate collapses multi-row sale records into one row per disposed
// property:
//
//  1. exact duplicate rows are dropped,
//  2. only nature_mutation = Vente rows are kept,
//  3. mutation groups (mutation id + date) spanning more than one
//     disposition number are dropped entirely; those are complex multi-party
//     sales excluded by policy,
//  4. within the surviving groups, each property type is dropped for a group
//     that still holds several rows of that type (several lots of the same
//     type under one disposition).
//
// The result contains apartments first, then houses, and is idempotent.
func Deduplicate(txs []domain.Transaction) []domain.Transaction {
	seen := make(map[string]bool, len(txs))
	var ventes []domain.Transaction
	for i := range txs {
		if txs[i].NatureMutation != domain.NatureVente {
			continue
		}
		id := rowIdentity(&txs[i])
		if seen[id] {
			continue
		}
		seen[id] = true
		ventes = append(ventes, txs[i])
	}

	// Count distinct disposition numbers per mutation group.
	dispositions := make(map[string]map[string]bool)
	for i := range ventes {
		key := ventes[i].GroupKey()
		if dispositions[key] == nil {
			dispositions[key] = make(map[string]bool)
		}
		dispositions[key][ventes[i].DispositionNo] = true
	}

	var singleDisposition []domain.Transaction
	for i := range ventes {
		if len(dispositions[ventes[i].GroupKey()]) == 1 {
			singleDisposition = append(singleDisposition, ventes[i])
		}
	}

	result := cleanType(singleDisposition, domain.Apartment)
	result = append(result, cleanType(singleDisposition, domain.House)...)

	slog.Debug("deduplicated transactions",
		"input_rows", len(txs),
		"ventes", len(ventes),
		"single_disposition", len(singleDisposition),
		"output_rows", len(result),
	)
	return result
}

// cleanType keeps the rows of one property type whose mutation group holds
// exactly one row of that type. A group with several same-type rows is an
// ambiguous multi-lot sale and is dropped for that type.
func cleanType(txs []domain.Transaction, local domain.PropertyType) []domain.Transaction {
	perGroup := make(map[string]int)
	for i := range txs {
		if txs[i].TypeLocal == local {
			perGroup[txs[i].GroupKey()]++
		}
	}

	var kept []domain.Transaction
	for i := range txs {
		if txs[i].TypeLocal != local {
			continue
		}
		if perGroup[txs[i].GroupKey()] == 1 {
			kept = append(kept, txs[i])
		}
	}
	return kept
}
