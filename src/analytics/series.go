package analytics

import (
	"sort"

	"github.com/username/fintrack/backend/src/models"
)

const dayKeyLayout = "2006-01-02"

// DailyPoint is one day of the chart series. Days without transactions
// are not synthesized; the series is sparse.
type DailyPoint struct {
	Date              string       `json:"date"`
	Income            models.Cents `json:"income"`
	Expense           models.Cents `json:"expense"`
	Net               models.Cents `json:"net"`
	CumulativeBalance models.Cents `json:"cumulativeBalance"`
}

// BuildDailySeries groups transactions by UTC calendar day and folds a
// running balance forward from opening, oldest day first. The ascending
// order is load-bearing: the cumulative balance is a running fold and
// is only correct chronologically. Empty input yields an empty series.
func BuildDailySeries(txs []models.Transaction, opening models.Cents) []DailyPoint {
	if len(txs) == 0 {
		return []DailyPoint{}
	}

	byDay := make(map[string]*DailyPoint)
	for i := range txs {
		key := txs[i].Date.UTC().Format(dayKeyLayout)
		point, ok := byDay[key]
		if !ok {
			point = &DailyPoint{Date: key}
			byDay[key] = point
		}
		switch txs[i].Type {
		case models.TypeIncome:
			point.Income += txs[i].Amount
		case models.TypeExpense:
			point.Expense += txs[i].Amount
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	series := make([]DailyPoint, 0, len(days))
	balance := opening
	for _, day := range days {
		point := byDay[day]
		point.Net = point.Income - point.Expense
		balance += point.Net
		point.CumulativeBalance = balance
		series = append(series, *point)
	}
	return series
}

// OpeningBalance derives the balance just before the first day of a
// series from the stored current balance, so that the forward fold
// lands exactly on the known balance after the last day.
func OpeningBalance(currentBalance models.Cents, s Summary) models.Cents {
	return currentBalance - s.NetAmount
}
