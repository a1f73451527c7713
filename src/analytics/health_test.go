package analytics

import "testing"

func TestHealthScore(t *testing.T) {
	cases := []struct {
		name             string
		income, expenses int64
		want             int
	}{
		{"all zero", 0, 0, 100},
		{"spend without income", 0, 500, 0},
		{"break even", 100000, 100000, 50},
		{"no expenses", 100000, 0, 100},
		{"half saved", 100000, 50000, 75},
		{"double spend", 100000, 200000, 0},
		{"runaway spend clamps", 100, 1000000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := HealthScore(cents(tc.income), cents(tc.expenses))
			if got != tc.want {
				t.Errorf("HealthScore(%d, %d) = %d, want %d", tc.income, tc.expenses, got, tc.want)
			}
		})
	}
}

func TestPercentageChange(t *testing.T) {
	cases := []struct {
		name              string
		current, previous int64
		want              int
	}{
		{"both zero", 0, 0, 0},
		{"growth from zero", 5000, 0, 100},
		{"no change", 300, 300, 0},
		{"doubled", 200, 100, 100},
		{"halved", 100, 200, -50},
		{"to zero", 0, 400, -100},
		{"slight growth rounds", 1015, 1000, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PercentageChange(tc.current, tc.previous)
			if got != tc.want {
				t.Errorf("PercentageChange(%d, %d) = %d, want %d", tc.current, tc.previous, got, tc.want)
			}
		})
	}
}

// Zero change is deliberately labelled "up"; the boundary is easy to
// get backwards.
func TestTrendZeroIsUp(t *testing.T) {
	if Trend(0) != TrendUp {
		t.Errorf("Trend(0) = %q, want %q", Trend(0), TrendUp)
	}
	if Trend(12) != TrendUp {
		t.Errorf("Trend(12) = %q, want %q", Trend(12), TrendUp)
	}
	if Trend(-1) != TrendDown {
		t.Errorf("Trend(-1) = %q, want %q", Trend(-1), TrendDown)
	}
}
