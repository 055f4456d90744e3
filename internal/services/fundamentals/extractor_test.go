package fundamentals

import (
	"testing"
	"time"

	"StockCast/internal/domain/service"
)

var asOf = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func TestClassifyMarketCapTiers(t *testing.T) {
	cases := []struct {
		cap  *float64
		want string
	}{
		{nil, "Unknown"},
		{fptr(10e9), "Large"}, // boundary inclusive
		{fptr(50e9), "Large"},
		{fptr(5e9), "Mid"},
		{fptr(2e9), "Mid"}, // boundary inclusive
		{fptr(1.9e9), "Small"},
		{fptr(0), "Small"},
	}
	for _, tc := range cases {
		if got := ClassifyMarketCap(tc.cap); got != tc.want {
			t.Fatalf("ClassifyMarketCap(%v) = %s, want %s", tc.cap, got, tc.want)
		}
	}
}

func TestClassifySector(t *testing.T) {
	cases := []struct {
		in, classified, code string
	}{
		{"Technology", "Technology", "TEC"},
		{"Financial Services", "Financial", "FIN"},
		{"Consumer Cyclical", "Consumer Discretionary", "CON"},
		{"Basic Materials", "Materials", "BAS"},
		{"Exotic Widgets", "Exotic Widgets", "EXO"},
		{"", "", "UNK"},
	}
	for _, tc := range cases {
		classified, code := ClassifySector(tc.in)
		if classified != tc.classified || code != tc.code {
			t.Fatalf("ClassifySector(%q) = (%q, %q), want (%q, %q)",
				tc.in, classified, code, tc.classified, tc.code)
		}
	}
}

func TestShapeInfoPrecedence(t *testing.T) {
	raw := &service.RawFundamentals{
		Info: map[string]float64{
			"trailingPE":   18.2,
			"currentRatio": 1.4,
		},
		BalanceSheet: []map[string]float64{{
			"Total Current Assets":      300,
			"Total Current Liabilities": 100,
		}},
	}
	snap := Shape("AAPL", raw, asOf)
	if snap.PERatio == nil || *snap.PERatio != 18.2 {
		t.Fatalf("pe_ratio = %v, want 18.2", snap.PERatio)
	}
	// Info value 1.4 wins over derived 3.0.
	if snap.CurrentRatio == nil || *snap.CurrentRatio != 1.4 {
		t.Fatalf("current_ratio = %v, want info value 1.4", snap.CurrentRatio)
	}
}

func TestShapeDerivedFallbacks(t *testing.T) {
	raw := &service.RawFundamentals{
		BalanceSheet: []map[string]float64{{
			"Total Current Assets":      300,
			"Total Current Liabilities": 100,
			"Total Debt":                50,
			"Total Stockholder Equity":  200,
		}},
	}
	snap := Shape("MSFT", raw, asOf)
	if snap.CurrentRatio == nil || *snap.CurrentRatio != 3.0 {
		t.Fatalf("current_ratio = %v, want derived 3.0", snap.CurrentRatio)
	}
	if snap.DebtToEquity == nil || *snap.DebtToEquity != 0.25 {
		t.Fatalf("debt_to_equity = %v, want derived 0.25", snap.DebtToEquity)
	}
}

func TestShapeZeroDenominatorLeavesUndefined(t *testing.T) {
	raw := &service.RawFundamentals{
		BalanceSheet: []map[string]float64{{
			"Total Current Assets":      300,
			"Total Current Liabilities": 0,
		}},
		IncomeStmt: []map[string]float64{
			{"Total Revenue": 500},
			{"Total Revenue": 0},
		},
	}
	snap := Shape("GME", raw, asOf)
	if snap.CurrentRatio != nil {
		t.Fatalf("current_ratio defined despite zero liabilities")
	}
	if snap.RevenueGrowthYoY != nil {
		t.Fatalf("revenue growth defined despite zero prior revenue")
	}
}

func TestShapeGrowthNeedsTwoPeriods(t *testing.T) {
	raw := &service.RawFundamentals{
		IncomeStmt: []map[string]float64{
			{"Total Revenue": 550, "Net Income": 120},
		},
	}
	if snap := Shape("IPO", raw, asOf); snap.RevenueGrowthYoY != nil || snap.EarningsGrowthYoY != nil {
		t.Fatalf("growth defined with a single period")
	}

	raw.IncomeStmt = append(raw.IncomeStmt, map[string]float64{"Total Revenue": 500, "Net Income": 100})
	snap := Shape("IPO", raw, asOf)
	if snap.RevenueGrowthYoY == nil || *snap.RevenueGrowthYoY != 0.1 {
		t.Fatalf("revenue growth = %v, want 0.1", snap.RevenueGrowthYoY)
	}
	if snap.EarningsGrowthYoY == nil || *snap.EarningsGrowthYoY != 0.2 {
		t.Fatalf("earnings growth = %v, want 0.2", snap.EarningsGrowthYoY)
	}
}

func TestShapeEmptyRaw(t *testing.T) {
	for _, raw := range []*service.RawFundamentals{nil, {}} {
		snap := Shape("NODATA", raw, asOf)
		if snap == nil {
			t.Fatalf("snapshot must never be nil")
		}
		if !snap.IsEmpty() {
			t.Fatalf("snapshot from empty raw must be empty")
		}
		if raw != nil && snap.SectorCode != "UNK" {
			t.Fatalf("sector code = %q, want UNK", snap.SectorCode)
		}
	}
}

func fptr(v float64) *float64 { return &v }
