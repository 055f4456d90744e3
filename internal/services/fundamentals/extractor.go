package fundamentals

import (
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/service"
)

// Info-map keys recognized for direct ratios, provider-side naming.
const (
	keyTrailingPE      = "trailingPE"
	keyPriceToBook     = "priceToBook"
	keyDebtToEquity    = "debtToEquity"
	keyCurrentRatio    = "currentRatio"
	keyReturnOnEquity  = "returnOnEquity"
	keyReturnOnAssets  = "returnOnAssets"
	keyMarketCap       = "marketCap"
	keyEnterpriseValue = "enterpriseValue"
)

// Statement line items used for fallback derivations.
const (
	lineCurrentAssets      = "Total Current Assets"
	lineCurrentLiabilities = "Total Current Liabilities"
	lineTotalDebt          = "Total Debt"
	lineStockholderEquity  = "Total Stockholder Equity"
	lineTotalRevenue       = "Total Revenue"
	lineNetIncome          = "Net Income"
)

// Shape turns raw provider fundamentals into a point-in-time snapshot.
// Values present in the info map win over anything derived from the
// statements; derivations fill in only what the info map lacks, and only
// when both operands exist and the denominator is non-zero. Growth rates
// need the two most recent annual periods. A raw record with nothing
// usable shapes into an empty snapshot, which is a valid result, not an
// error.
func Shape(ticker string, raw *service.RawFundamentals, asOf time.Time) *models.FundamentalSnapshot {
	snap := &models.FundamentalSnapshot{Ticker: ticker, Date: asOf}
	if raw == nil {
		return snap
	}

	snap.PERatio = infoValue(raw.Info, keyTrailingPE)
	snap.PBRatio = infoValue(raw.Info, keyPriceToBook)
	snap.DebtToEquity = infoValue(raw.Info, keyDebtToEquity)
	snap.CurrentRatio = infoValue(raw.Info, keyCurrentRatio)
	snap.ROE = infoValue(raw.Info, keyReturnOnEquity)
	snap.ROA = infoValue(raw.Info, keyReturnOnAssets)
	snap.MarketCap = infoValue(raw.Info, keyMarketCap)
	snap.EnterpriseValue = infoValue(raw.Info, keyEnterpriseValue)

	if snap.CurrentRatio == nil {
		snap.CurrentRatio = statementRatio(raw.BalanceSheet, lineCurrentAssets, lineCurrentLiabilities)
	}
	if snap.DebtToEquity == nil {
		snap.DebtToEquity = statementRatio(raw.BalanceSheet, lineTotalDebt, lineStockholderEquity)
	}

	snap.RevenueGrowthYoY = yoyGrowth(raw.IncomeStmt, lineTotalRevenue)
	snap.EarningsGrowthYoY = yoyGrowth(raw.IncomeStmt, lineNetIncome)

	snap.Sector = raw.Sector
	snap.Industry = raw.Industry
	snap.SectorClassified, snap.SectorCode = ClassifySector(raw.Sector)
	snap.MarketCapCategory = ClassifyMarketCap(snap.MarketCap)
	return snap
}

func infoValue(info map[string]float64, key string) *float64 {
	if info == nil {
		return nil
	}
	v, ok := info[key]
	if !ok {
		return nil
	}
	return &v
}

// statementRatio divides two line items of the most recent period.
// Defined only when both items exist and the denominator is non-zero.
func statementRatio(periods []map[string]float64, numLine, denLine string) *float64 {
	if len(periods) == 0 {
		return nil
	}
	latest := periods[0]
	num, okNum := latest[numLine]
	den, okDen := latest[denLine]
	if !okNum || !okDen || den == 0 {
		return nil
	}
	v := num / den
	return &v
}

// yoyGrowth computes (current - previous) / previous over the two most
// recent periods. Defined only when the line item exists in both periods
// and the previous value is non-zero.
func yoyGrowth(periods []map[string]float64, line string) *float64 {
	if len(periods) < 2 {
		return nil
	}
	cur, okCur := periods[0][line]
	prev, okPrev := periods[1][line]
	if !okCur || !okPrev || prev == 0 {
		return nil
	}
	v := (cur - prev) / prev
	return &v
}
