package analytics

import (
	"math"

	"github.com/username/fintrack/backend/src/models"
)

// AlertThreshold is the expense-to-income percentage at or above which
// a spending alert is dispatched after a transaction is created.
const AlertThreshold = 80

// ExpenseRatio returns expenses as an integer percentage of income: 0
// when both are zero, 100 when there is spending against no income.
func ExpenseRatio(income, expenses models.Cents) int {
	if income == 0 {
		if expenses == 0 {
			return 0
		}
		return 100
	}
	return int(math.Round(float64(expenses) / float64(income) * 100))
}

// ShouldAlert reports whether an expense ratio warrants an alert.
func ShouldAlert(ratio int) bool {
	return ratio >= AlertThreshold
}
