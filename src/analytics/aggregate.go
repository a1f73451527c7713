// Package analytics is the period aggregation engine: pure functions
// that turn an already-fetched, in-memory transaction set into period
// summaries, daily chart series, category breakdowns and trend/health
// metrics. Nothing in this package performs I/O or reads the clock;
// callers pass "now" explicitly.
package analytics

import "github.com/username/fintrack/backend/src/models"

// Summary holds the derived totals for one user and period.
type Summary struct {
	TotalIncome      models.Cents `json:"totalIncome"`
	TotalExpenses    models.Cents `json:"totalExpenses"`
	NetAmount        models.Cents `json:"netAmount"`
	TransactionCount int          `json:"transactionCount"`
}

// Aggregate sums a transaction set already filtered to one user and
// period. Empty input yields the zero summary, not an error.
func Aggregate(txs []models.Transaction) Summary {
	var s Summary
	for i := range txs {
		switch txs[i].Type {
		case models.TypeIncome:
			s.TotalIncome += txs[i].Amount
		case models.TypeExpense:
			s.TotalExpenses += txs[i].Amount
		}
	}
	s.NetAmount = s.TotalIncome - s.TotalExpenses
	s.TransactionCount = len(txs)
	return s
}
