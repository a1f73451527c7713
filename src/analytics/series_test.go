package analytics

import (
	"reflect"
	"testing"
	"time"

	"github.com/username/fintrack/backend/src/models"
)

func TestBuildDailySeriesScenario(t *testing.T) {
	day1 := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)
	txs := []models.Transaction{
		tx(models.TypeIncome, 10000, day1, "salary"),
		tx(models.TypeExpense, 4000, day1, "food"),
		tx(models.TypeIncome, 5000, day2, "salary"),
	}

	got := BuildDailySeries(txs, 0)
	want := []DailyPoint{
		{Date: "2025-04-01", Income: 10000, Expense: 4000, Net: 6000, CumulativeBalance: 6000},
		{Date: "2025-04-02", Income: 5000, Expense: 0, Net: 5000, CumulativeBalance: 11000},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("series = %+v, want %+v", got, want)
	}
}

func TestBuildDailySeriesOrderIndependent(t *testing.T) {
	day1 := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)
	day3 := time.Date(2025, 4, 7, 8, 0, 0, 0, time.UTC)
	// Deliberately shuffled input: grouping and sorting must restore
	// chronological order before the fold.
	txs := []models.Transaction{
		tx(models.TypeExpense, 2500, day3, "food"),
		tx(models.TypeIncome, 10000, day1, "salary"),
		tx(models.TypeIncome, 5000, day2, "gift"),
		tx(models.TypeExpense, 4000, day1, "rent"),
	}

	got := BuildDailySeries(txs, 1000)
	if len(got) != 3 {
		t.Fatalf("series length = %d, want 3", len(got))
	}
	if got[0].Date != "2025-04-01" || got[1].Date != "2025-04-02" || got[2].Date != "2025-04-07" {
		t.Errorf("series not in ascending day order: %+v", got)
	}
	if got[2].CumulativeBalance != 1000+6000+5000-2500 {
		t.Errorf("final balance = %d, want %d", got[2].CumulativeBalance, 1000+6000+5000-2500)
	}
}

func TestBuildDailySeriesEmpty(t *testing.T) {
	got := BuildDailySeries(nil, 5000)
	if len(got) != 0 {
		t.Errorf("series = %+v, want empty", got)
	}
}

// The last cumulative balance must equal opening + net of the whole
// set, and reconcile with the independently computed aggregate.
func TestBalanceReconciliation(t *testing.T) {
	base := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	txs := []models.Transaction{
		tx(models.TypeIncome, 123456, base, "salary"),
		tx(models.TypeExpense, 78901, base.AddDate(0, 0, 1), "rent"),
		tx(models.TypeExpense, 2345, base.AddDate(0, 0, 1), "food"),
		tx(models.TypeIncome, 999, base.AddDate(0, 0, 5), "interest"),
		tx(models.TypeExpense, 100000, base.AddDate(0, 0, 9), "travel"),
	}
	const currentBalance = models.Cents(500000)

	summary := Aggregate(txs)
	opening := OpeningBalance(currentBalance, summary)
	series := BuildDailySeries(txs, opening)

	last := series[len(series)-1].CumulativeBalance
	if last != opening+summary.NetAmount {
		t.Errorf("last balance = %d, want opening+net = %d", last, opening+summary.NetAmount)
	}
	if last != currentBalance {
		t.Errorf("series does not land on the stored balance: %d != %d", last, currentBalance)
	}
}
