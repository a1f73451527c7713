package analytics

import (
	"math"

	"github.com/username/fintrack/backend/src/models"
)

// Trend labels for percentage changes. Zero change counts as up.
const (
	TrendUp   = "up"
	TrendDown = "down"
)

// HealthScore maps a period's income and expense totals to a 0-100
// score. With no income the score is 100 when there are also no
// expenses, otherwise 0. Otherwise the savings ratio (income-expenses)/
// income, which ranges over (-inf, 1], is mapped affinely so that
// break-even scores 50 and zero expenses score 100, clamping runaway
// negative ratios at 0.
func HealthScore(income, expenses models.Cents) int {
	if income == 0 {
		if expenses == 0 {
			return 100
		}
		return 0
	}
	ratio := float64(income-expenses) / float64(income)
	score := int(math.Round((ratio + 1) * 50))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// PercentageChange compares a current value against the previous
// period's. A zero baseline maps to 100 when the current value is
// positive, otherwise 0. Used for income, expense, balance and
// health-score deltas alike.
func PercentageChange(current, previous int64) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(current-previous) / float64(previous) * 100))
}

// Trend labels a percentage change; zero is classified as up.
func Trend(change int) string {
	if change >= 0 {
		return TrendUp
	}
	return TrendDown
}
