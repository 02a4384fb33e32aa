package cleaning

import (
	"log/slog"
	"sort"

	"dvfpipe/internal/domain"
)

// GroupSizes counts transactions per (EPCI, property type) pair.
func GroupSizes(txs []domain.Transaction) map[string]map[domain.PropertyType]int {
	sizes := make(map[string]map[domain.PropertyType]int)
	for i := range txs {
		epci := txs[i].LibEPCI
		if sizes[epci] == nil {
			sizes[epci] = make(map[domain.PropertyType]int)
		}
		sizes[epci][txs[i].TypeLocal]++
	}
	return sizes
}

// LogGroupSizes emits the per-EPCI group sizes, used to monitor how much
// each cleaning step removed per metropolitan area.
func LogGroupSizes(logger *slog.Logger, label string, txs []domain.Transaction) {
	sizes := GroupSizes(txs)

	epcis := make([]string, 0, len(sizes))
	for epci := range sizes {
		epcis = append(epcis, epci)
	}
	sort.Strings(epcis)

	for _, epci := range epcis {
		logger.Debug(label,
			"libepci", epci,
			"apartments", sizes[epci][domain.Apartment],
			"houses", sizes[epci][domain.House],
		)
	}
	logger.Info(label, "rows", len(txs), "epci_groups", len(sizes))
}
