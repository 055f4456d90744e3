package backtest

import (
	"math"

	"StockCast/internal/domain/models"
)

// tradingDaysPerYear annualizes the risk-adjusted return ratio.
const tradingDaysPerYear = 252

// Run replays a labeled prediction table as a long/flat strategy: fully
// invested (earning the actual forward return) on rows labeled 1, in cash
// otherwise, compounding sequentially. Only rows where both the label and
// the actual return are defined participate; the curve is aligned to
// those rows. A table with no usable rows yields NaN metrics and an empty
// curve, never a panic. Returns models.ErrMalformedInput when the label
// or actual-return column is missing entirely.
func Run(t *models.FeatureTable, initialCash float64) (*models.BacktestResult, error) {
	if !t.HasColumn(models.ColPredictedLabel) || !t.HasColumn(models.ColTargetReturn) {
		return nil, models.ErrMalformedInput
	}
	labels := t.Column(models.ColPredictedLabel)
	actuals := t.Column(models.ColTargetReturn)

	res := &models.BacktestResult{
		Ticker:      t.Ticker,
		InitialCash: initialCash,
		TotalReturn: math.NaN(),
		WinRate:     math.NaN(),
		Sharpe:      math.NaN(),
	}

	var (
		returns []float64
		wins    int
		cash    = initialCash
	)
	for i := range labels {
		if math.IsNaN(labels[i]) || math.IsNaN(actuals[i]) {
			continue
		}
		r := strategyReturn(labels[i], actuals[i])
		cash *= 1 + r
		returns = append(returns, r)
		res.Curve = append(res.Curve, cash)
		res.Dates = append(res.Dates, t.Dates[i])
		if isWin(labels[i], actuals[i]) {
			wins++
		}
	}
	res.Rows = len(returns)
	if res.Rows == 0 {
		return res, nil
	}

	res.TotalReturn = cash/initialCash - 1
	res.WinRate = float64(wins) / float64(res.Rows)
	if std := populationStd(returns); std != 0 {
		res.Sharpe = mean(returns) / std * math.Sqrt(tradingDaysPerYear)
	}
	return res, nil
}

// Annotate adds strategy_return and cumulative_return columns aligned to
// every input row, NaN where the label or actual return is undefined. The
// cumulative value carries across undefined rows so the series stays a
// running equity curve. Returns a new table.
func Annotate(t *models.FeatureTable, initialCash float64) *models.FeatureTable {
	out := t.Clone()
	labels := out.Column(models.ColPredictedLabel)
	actuals := out.Column(models.ColTargetReturn)
	n := out.NumRows()
	stratCol := make([]float64, n)
	cumCol := make([]float64, n)
	cash := initialCash
	for i := 0; i < n; i++ {
		stratCol[i] = math.NaN()
		cumCol[i] = math.NaN()
		if i >= len(labels) || math.IsNaN(labels[i]) || math.IsNaN(actuals[i]) {
			continue
		}
		r := strategyReturn(labels[i], actuals[i])
		cash *= 1 + r
		stratCol[i] = r
		cumCol[i] = cash
	}
	out.MustAddColumn(models.ColStrategyReturn, stratCol)
	out.MustAddColumn(models.ColCumReturn, cumCol)
	return out
}

// strategyReturn is the per-row position rule: earn the realized return
// when labeled a buy, otherwise sit in cash.
func strategyReturn(label, actual float64) float64 {
	if label == 1 {
		return actual
	}
	return 0
}

// isWin compares the directional call against the realized sign. A buy
// wins on a positive return, a non-buy wins on a negative one. A realized
// return of exactly zero counts as a loss under either label.
func isWin(label, actual float64) bool {
	if label == 1 {
		return actual > 0
	}
	return actual < 0
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// populationStd is the ddof=0 standard deviation.
func populationStd(xs []float64) float64 {
	m := mean(xs)
	sum2 := 0.0
	for _, x := range xs {
		d := x - m
		sum2 += d * d
	}
	return math.Sqrt(sum2 / float64(len(xs)))
}
