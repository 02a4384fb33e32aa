package pricing

import (
	"fmt"
	"log/slog"

	"dvfpipe/internal/domain"
)

// ErrZeroIndexBase signals a zero-valued sale-quarter index. The coefficient
// divides by it, so the row's zone/type/quarter triple cannot be normalized.
var ErrZeroIndexBase = fmt.Errorf("zero index base")

// Normalizer re-bases historical sale prices to a reference quarter using
// the zone/type price index.
type Normalizer struct {
	index    *IndexTable
	resolver *Resolver
	ref      domain.Quarter
}

// NewNormalizer builds a normalizer for the given reference quarter.
func NewNormalizer(index *IndexTable, resolver *Resolver, ref domain.Quarter) *Normalizer {
	return &Normalizer{index: index, resolver: resolver, ref: ref}
}

// Coefficient computes the price movement factor between the sale quarter
// and the reference quarter for a zone and property type:
//
//	coeff = (index(ref) - index(sale)) / index(sale) + 1
//
// A negative coefficient is valid (prices fell); a zero sale-quarter index
// is a fatal error.
func (n *Normalizer) Coefficient(zone Zone, local domain.PropertyType, sale domain.Quarter) (float64, error) {
	idxSale, err := n.index.Lookup(zone, local, sale)
	if err != nil {
		return 0, err
	}
	idxRef, err := n.index.Lookup(zone, local, n.ref)
	if err != nil {
		return 0, err
	}
	if idxSale == 0 {
		return 0, fmt.Errorf("%w: zone %s / %s at %s", ErrZeroIndexBase, zone, local, sale)
	}
	return (idxRef-idxSale)/idxSale + 1, nil
}

// Apply resolves the row's zone, derives its sale quarter and fills in the
// normalized price fields:
//
//	prix_actualise    = valeur_fonciere * coeff
//	prix_m2_actualise = prix_actualise / surface
//	prix_m2           = valeur_fonciere / surface
//
// The raw price per m² is kept for comparison and for the held-out test
// partition, which must not be normalized.
func (n *Normalizer) Apply(tx *domain.Transaction) error {
	tx.SaleQuarter = domain.QuarterOf(tx.Date)

	zone, err := n.resolver.Resolve(tx.NomCommune, tx.CodeCommune)
	if err != nil {
		return err
	}

	coeff, err := n.Coefficient(zone, tx.TypeLocal, tx.SaleQuarter)
	if err != nil {
		return fmt.Errorf("mutation %s: %w", tx.MutationID, err)
	}

	tx.CoeffActu = coeff
	tx.PrixActu = tx.ValeurFonciere * coeff
	tx.PrixM2Actu = tx.PrixActu / tx.SurfaceBati
	tx.PrixM2 = tx.ValeurFonciere / tx.SurfaceBati
	return nil
}

// NormalizeAll applies the discount to every row. The first failing row
// aborts the stage; partial normalization would silently mix price bases.
func (n *Normalizer) NormalizeAll(txs []domain.Transaction) error {
	for i := range txs {
		if err := n.Apply(&txs[i]); err != nil {
			return err
		}
	}
	slog.Info("normalized prices", "rows", len(txs), "reference_quarter", n.ref.String())
	return nil
}
