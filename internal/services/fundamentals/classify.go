package fundamentals

import "strings"

// Market-cap tier thresholds in USD, inclusive at the lower bound.
const (
	largeCapFloor = 10e9
	midCapFloor   = 2e9
)

// sectorMappings normalizes provider sector names to the canonical set.
// Names outside the map pass through unchanged.
var sectorMappings = map[string]string{
	"Technology":             "Technology",
	"Healthcare":             "Healthcare",
	"Financial Services":     "Financial",
	"Consumer Cyclical":      "Consumer Discretionary",
	"Consumer Defensive":     "Consumer Staples",
	"Communication Services": "Communication Services",
	"Industrials":            "Industrials",
	"Energy":                 "Energy",
	"Basic Materials":        "Materials",
	"Real Estate":            "Real Estate",
	"Utilities":              "Utilities",
}

// ClassifyMarketCap buckets a market capitalization into its tier:
// Large at or above 10e9, Mid at or above 2e9, Small below, Unknown when
// the value was not supplied.
func ClassifyMarketCap(marketCap *float64) string {
	if marketCap == nil {
		return "Unknown"
	}
	switch {
	case *marketCap >= largeCapFloor:
		return "Large"
	case *marketCap >= midCapFloor:
		return "Mid"
	default:
		return "Small"
	}
}

// ClassifySector maps a provider sector name to its canonical form and
// derives the three-letter sector code from the provider name: first
// three characters uppercased, "UNK" when the sector is unknown.
func ClassifySector(sector string) (classified, code string) {
	if sector == "" {
		return "", "UNK"
	}
	classified = sector
	if mapped, ok := sectorMappings[sector]; ok {
		classified = mapped
	}
	code = sector
	if len(code) > 3 {
		code = code[:3]
	}
	return classified, strings.ToUpper(code)
}
