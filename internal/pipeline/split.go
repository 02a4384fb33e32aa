package pipeline

import (
	"dvfpipe/internal/domain"
)

// SplitQuarters partitions the rows into training and held-out slices by
// sale quarter. SaleQuarter must already be derived (the normalizer fills
// it); rows without one land in the training partition.
func SplitQuarters(txs []domain.Transaction, held map[domain.Quarter]bool) (train, test []domain.Transaction) {
	for i := range txs {
		if held[txs[i].SaleQuarter] {
			test = append(test, txs[i])
		} else {
			train = append(train, txs[i])
		}
	}
	return train, test
}

// TrainIndices returns the positions of the training rows inside the
// recombined train-then-test slice: the nearest-neighbor reference set.
func TrainIndices(trainLen int) []int {
	idx := make([]int, trainLen)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
