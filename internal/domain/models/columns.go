package models

// Canonical column names shared across the feature, prediction, and
// backtest tables. CSV headers use these names verbatim.
const (
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColClose  = "Close"
	ColVolume = "Volume"

	ColSMA            = "SMA"
	ColRSI            = "RSI"
	ColEMA            = "EMA"
	ColDailyReturn    = "daily_return"
	ColVolatility20d  = "volatility_20d"
	ColVolatility60d  = "volatility_60d"
	ColMomentum5d     = "momentum_5d"
	ColMomentum20d    = "momentum_20d"
	ColMomentum60d    = "momentum_60d"
	ColVolumeSMA20    = "volume_sma_20"
	ColVolumeRatio    = "volume_ratio"
	ColPriceVsSMA     = "price_vs_sma_20"
	ColPriceVsEMA     = "price_vs_ema_20"
	ColBBUpper        = "bb_upper"
	ColBBMiddle       = "bb_middle"
	ColBBLower        = "bb_lower"
	ColBBPosition     = "bb_position"
	ColTargetReturn   = "target_return"
	ColStrategyReturn = "strategy_return"
	ColCumReturn      = "cumulative_return"

	ColPERatio           = "pe_ratio"
	ColPBRatio           = "pb_ratio"
	ColDebtToEquity      = "debt_to_equity"
	ColCurrentRatio      = "current_ratio"
	ColROE               = "roe"
	ColROA               = "roa"
	ColRevenueGrowthYoY  = "revenue_growth_yoy"
	ColEarningsGrowthYoY = "earnings_growth_yoy"
	ColMarketCap         = "market_cap"
	ColEnterpriseValue   = "enterprise_value"
	ColMarketCapEncoded  = "market_cap_category_encoded"
	ColSectorCodeEncoded = "sector_code_encoded"

	ColPredictedReturn = "predicted_return"
	ColPredictedLabel  = "predicted_label"
	ColFeaturesUsed    = "features_used"
	ColFeaturesMissing = "features_missing"
)

// PriceColumns is the canonical OHLCV column order.
var PriceColumns = []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}
