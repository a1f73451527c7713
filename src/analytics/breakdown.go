package analytics

import (
	"math"
	"sort"

	"github.com/username/fintrack/backend/src/models"
)

// CategorySlice is one category's share of its type partition.
type CategorySlice struct {
	Category   string       `json:"category"`
	Amount     models.Cents `json:"amount"`
	Percentage int          `json:"percentage"`
}

// BreakdownResult groups category slices by transaction type, each
// sorted descending by amount.
type BreakdownResult struct {
	Income  []CategorySlice `json:"income"`
	Expense []CategorySlice `json:"expense"`
}

// Breakdown partitions transactions by type, then by category within
// each partition, summing amounts and computing each category's share
// of the partition total.
func Breakdown(txs []models.Transaction) BreakdownResult {
	return BreakdownResult{
		Income:  breakdownByType(txs, models.TypeIncome),
		Expense: breakdownByType(txs, models.TypeExpense),
	}
}

// breakdownByType collects slices in first-encountered order before the
// stable sort, so equal amounts keep their insertion order rather than
// sorting by category name.
func breakdownByType(txs []models.Transaction, txType string) []CategorySlice {
	index := make(map[string]int)
	slices := []CategorySlice{}
	var total models.Cents

	for i := range txs {
		if txs[i].Type != txType {
			continue
		}
		pos, ok := index[txs[i].Category]
		if !ok {
			pos = len(slices)
			index[txs[i].Category] = pos
			slices = append(slices, CategorySlice{Category: txs[i].Category})
		}
		slices[pos].Amount += txs[i].Amount
		total += txs[i].Amount
	}

	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Amount > slices[j].Amount
	})
	for i := range slices {
		slices[i].Percentage = sharePercent(slices[i].Amount, total)
	}
	return slices
}

// sharePercent is round(part/total*100), and 0 when the total is 0 so
// an empty partition never produces NaN.
func sharePercent(part, total models.Cents) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
