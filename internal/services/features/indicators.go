package features

import (
	"math"

	"StockCast/internal/domain/models"
)

// IndicatorConfig holds the rolling-window sizes for the technical
// indicator engine. All windows are trailing: a value at row t only ever
// uses rows <= t.
type IndicatorConfig struct {
	SMAWindow int
	RSIWindow int
	EMAWindow int
}

// DefaultIndicatorConfig mirrors the historical defaults.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{SMAWindow: 14, RSIWindow: 14, EMAWindow: 14}
}

// Fixed secondary windows for the advanced feature block.
const (
	volShortWindow  = 20
	volLongWindow   = 60
	momShortWindow  = 5
	momMidWindow    = 20
	momLongWindow   = 60
	volumeSMAWindow = 20
	bbWindow        = 20
	bbStdDevs       = 2.0
)

// AddIndicators derives the full technical feature set over a bar table
// and returns a new table; the input is not modified. Leading rows where
// a window has insufficient history hold NaN, which is expected and not
// an error: a series shorter than the largest window still yields one
// output row per input bar, with the affected columns entirely undefined.
func AddIndicators(t *models.FeatureTable, cfg IndicatorConfig) *models.FeatureTable {
	out := t.Clone()
	closes := out.Column(models.ColClose)
	volumes := out.Column(models.ColVolume)

	sma := RollingMean(closes, cfg.SMAWindow)
	ema := EMA(closes, cfg.EMAWindow)
	out.MustAddColumn(models.ColSMA, sma)
	out.MustAddColumn(models.ColRSI, RSI(closes, cfg.RSIWindow))
	out.MustAddColumn(models.ColEMA, ema)

	rets := PercentChange(closes)
	out.MustAddColumn(models.ColDailyReturn, rets)
	out.MustAddColumn(models.ColVolatility20d, RollingStd(rets, volShortWindow))
	out.MustAddColumn(models.ColVolatility60d, RollingStd(rets, volLongWindow))

	out.MustAddColumn(models.ColMomentum5d, Momentum(closes, momShortWindow))
	out.MustAddColumn(models.ColMomentum20d, Momentum(closes, momMidWindow))
	out.MustAddColumn(models.ColMomentum60d, Momentum(closes, momLongWindow))

	volSMA := RollingMean(volumes, volumeSMAWindow)
	out.MustAddColumn(models.ColVolumeSMA20, volSMA)
	out.MustAddColumn(models.ColVolumeRatio, ratioOf(volumes, volSMA))

	out.MustAddColumn(models.ColPriceVsSMA, relativeTo(closes, sma))
	out.MustAddColumn(models.ColPriceVsEMA, relativeTo(closes, ema))

	addBollinger(out, closes)
	return out
}

// RollingMean computes the trailing-w arithmetic mean, inclusive of the
// current row. The first w-1 values are NaN.
func RollingMean(xs []float64, w int) []float64 {
	out := nanSlice(len(xs))
	if w < 1 || len(xs) < w {
		return out
	}
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= w {
			sum -= xs[i-w]
		}
		if i >= w-1 {
			out[i] = sum / float64(w)
		}
	}
	return out
}

// RollingStd computes the trailing-w sample standard deviation (ddof=1).
// A NaN anywhere in the window makes the result NaN, so a series whose
// first value is undefined (daily returns) is defined from row w onward.
func RollingStd(xs []float64, w int) []float64 {
	out := nanSlice(len(xs))
	if w < 2 || len(xs) < w {
		return out
	}
	for i := w - 1; i < len(xs); i++ {
		sum, sum2 := 0.0, 0.0
		ok := true
		for j := i - w + 1; j <= i; j++ {
			x := xs[j]
			if math.IsNaN(x) {
				ok = false
				break
			}
			sum += x
			sum2 += x * x
		}
		if !ok {
			continue
		}
		n := float64(w)
		mean := sum / n
		variance := (sum2 - n*mean*mean) / (n - 1)
		if variance < 0 {
			variance = 0
		}
		out[i] = math.Sqrt(variance)
	}
	return out
}

// EMA computes the exponential moving average with alpha = 2/(w+1),
// seeded with the SMA of the first w values at row w-1. The first w-1
// values are NaN.
func EMA(xs []float64, w int) []float64 {
	out := nanSlice(len(xs))
	if w < 1 || len(xs) < w {
		return out
	}
	seed := 0.0
	for i := 0; i < w; i++ {
		seed += xs[i]
	}
	seed /= float64(w)
	out[w-1] = seed
	alpha := 2.0 / (float64(w) + 1.0)
	prev := seed
	for i := w; i < len(xs); i++ {
		prev = alpha*xs[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// RSI computes Wilder's relative strength index over trailing w deltas.
// The first w values are NaN. A window with zero average loss maps to
// exactly 100, never a division by zero.
func RSI(xs []float64, w int) []float64 {
	out := nanSlice(len(xs))
	if w < 1 || len(xs) <= w {
		return out
	}
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= w; i++ {
		d := xs[i] - xs[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(w)
	avgLoss /= float64(w)
	out[w] = rsiValue(avgGain, avgLoss)
	for i := w + 1; i < len(xs); i++ {
		d := xs[i] - xs[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(w-1) + gain) / float64(w)
		avgLoss = (avgLoss*float64(w-1) + loss) / float64(w)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// PercentChange computes x(t)/x(t-1) - 1; row 0 is NaN.
func PercentChange(xs []float64) []float64 {
	out := nanSlice(len(xs))
	for i := 1; i < len(xs); i++ {
		if xs[i-1] == 0 || math.IsNaN(xs[i-1]) || math.IsNaN(xs[i]) {
			continue
		}
		out[i] = xs[i]/xs[i-1] - 1
	}
	return out
}

// Momentum computes x(t)/x(t-w) - 1; the first w rows are NaN.
func Momentum(xs []float64, w int) []float64 {
	out := nanSlice(len(xs))
	for i := w; i < len(xs); i++ {
		if xs[i-w] == 0 || math.IsNaN(xs[i-w]) || math.IsNaN(xs[i]) {
			continue
		}
		out[i] = xs[i]/xs[i-w] - 1
	}
	return out
}

func addBollinger(t *models.FeatureTable, closes []float64) {
	mid := RollingMean(closes, bbWindow)
	std := RollingStd(closes, bbWindow)
	n := len(closes)
	upper := nanSlice(n)
	lower := nanSlice(n)
	pos := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(mid[i]) || math.IsNaN(std[i]) {
			continue
		}
		upper[i] = mid[i] + bbStdDevs*std[i]
		lower[i] = mid[i] - bbStdDevs*std[i]
		width := upper[i] - lower[i]
		if width != 0 {
			pos[i] = (closes[i] - lower[i]) / width
		}
	}
	t.MustAddColumn(models.ColBBUpper, upper)
	t.MustAddColumn(models.ColBBMiddle, mid)
	t.MustAddColumn(models.ColBBLower, lower)
	t.MustAddColumn(models.ColBBPosition, pos)
}

func ratioOf(num, den []float64) []float64 {
	out := nanSlice(len(num))
	for i := range num {
		if math.IsNaN(num[i]) || math.IsNaN(den[i]) || den[i] == 0 {
			continue
		}
		out[i] = num[i] / den[i]
	}
	return out
}

func relativeTo(price, ref []float64) []float64 {
	out := nanSlice(len(price))
	for i := range price {
		if math.IsNaN(price[i]) || math.IsNaN(ref[i]) || ref[i] == 0 {
			continue
		}
		out[i] = price[i]/ref[i] - 1
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
