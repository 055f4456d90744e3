package models

import "time"

// FundamentalSnapshot is a single point-in-time record of company
// fundamentals for a ticker. Nil pointer fields were not supplied by the
// source and must be omitted downstream rather than filled with sentinels.
type FundamentalSnapshot struct {
	Ticker string
	Date   time.Time

	PERatio           *float64
	PBRatio           *float64
	DebtToEquity      *float64
	CurrentRatio      *float64
	ROE               *float64
	ROA               *float64
	RevenueGrowthYoY  *float64
	EarningsGrowthYoY *float64
	MarketCap         *float64
	EnterpriseValue   *float64

	Sector            string
	Industry          string
	SectorClassified  string
	SectorCode        string
	MarketCapCategory string
}

// IsEmpty reports whether the source supplied no usable fields at all.
// Callers must treat an empty snapshot as a valid, common case.
func (s *FundamentalSnapshot) IsEmpty() bool {
	if s == nil {
		return true
	}
	return s.PERatio == nil && s.PBRatio == nil && s.DebtToEquity == nil &&
		s.CurrentRatio == nil && s.ROE == nil && s.ROA == nil &&
		s.RevenueGrowthYoY == nil && s.EarningsGrowthYoY == nil &&
		s.MarketCap == nil && s.EnterpriseValue == nil &&
		s.Sector == "" && s.Industry == ""
}

// RatioFields returns the numeric snapshot fields that are defined, keyed
// by their canonical feature-column name, in a fixed order.
func (s *FundamentalSnapshot) RatioFields() ([]string, map[string]float64) {
	type field struct {
		name string
		val  *float64
	}
	all := []field{
		{ColPERatio, s.PERatio},
		{ColPBRatio, s.PBRatio},
		{ColDebtToEquity, s.DebtToEquity},
		{ColCurrentRatio, s.CurrentRatio},
		{ColROE, s.ROE},
		{ColROA, s.ROA},
		{ColRevenueGrowthYoY, s.RevenueGrowthYoY},
		{ColEarningsGrowthYoY, s.EarningsGrowthYoY},
		{ColMarketCap, s.MarketCap},
		{ColEnterpriseValue, s.EnterpriseValue},
	}
	names := make([]string, 0, len(all))
	vals := make(map[string]float64, len(all))
	for _, f := range all {
		if f.val != nil {
			names = append(names, f.name)
			vals[f.name] = *f.val
		}
	}
	return names, vals
}
