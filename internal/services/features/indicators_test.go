package features

import (
	"math"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

func barsFromCloses(closes []float64) *models.FeatureTable {
	bars := make([]models.PriceBar, len(closes))
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = models.PriceBar{Date: day.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return models.FromBars("TEST", bars)
}

func definedCount(xs []float64) int {
	n := 0
	for _, x := range xs {
		if !math.IsNaN(x) {
			n++
		}
	}
	return n
}

func TestRollingMeanDefinedCount(t *testing.T) {
	for _, tc := range []struct{ n, w int }{{10, 3}, {5, 5}, {4, 5}, {1, 1}} {
		xs := make([]float64, tc.n)
		for i := range xs {
			xs[i] = float64(i + 1)
		}
		got := definedCount(RollingMean(xs, tc.w))
		want := tc.n - tc.w + 1
		if want < 0 {
			want = 0
		}
		if got != want {
			t.Fatalf("n=%d w=%d: %d defined, want %d", tc.n, tc.w, got, want)
		}
	}
}

func TestRollingMeanValues(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	out := RollingMean(xs, 3)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatalf("expected leading NaN, got %v", out[:2])
	}
	if out[2] != 2 || out[3] != 3 || out[4] != 4 {
		t.Fatalf("unexpected means %v", out[2:])
	}
}

func TestEMASeedAndRecursion(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	out := EMA(xs, 3)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatalf("expected NaN before seed")
	}
	if out[2] != 2 { // SMA(3) seed
		t.Fatalf("seed = %v, want 2", out[2])
	}
	alpha := 2.0 / 4.0
	want := alpha*4 + (1-alpha)*2
	if math.Abs(out[3]-want) > 1e-12 {
		t.Fatalf("ema = %v, want %v", out[3], want)
	}
}

func TestRSIDefinedCountAndBounds(t *testing.T) {
	xs := []float64{44, 44.3, 44.1, 44.5, 44.9, 44.6, 45.2, 45.7, 45.5, 46.1}
	w := 4
	out := RSI(xs, w)
	if got := definedCount(out); got != len(xs)-w {
		t.Fatalf("defined = %d, want %d", got, len(xs)-w)
	}
	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Fatalf("rsi[%d] = %v out of [0,100]", i, v)
		}
	}
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6}
	out := RSI(xs, 3)
	for i := 3; i < len(out); i++ {
		if out[i] != 100 {
			t.Fatalf("rsi[%d] = %v, want 100 when avg loss is zero", i, out[i])
		}
	}
}

func TestMomentumAndPercentChange(t *testing.T) {
	xs := []float64{100, 110, 121}
	mom := Momentum(xs, 2)
	if !math.IsNaN(mom[0]) || !math.IsNaN(mom[1]) {
		t.Fatalf("expected NaN leading momentum")
	}
	if math.Abs(mom[2]-0.21) > 1e-12 {
		t.Fatalf("momentum = %v, want 0.21", mom[2])
	}
	rets := PercentChange(xs)
	if !math.IsNaN(rets[0]) {
		t.Fatalf("return[0] must be NaN")
	}
	if math.Abs(rets[1]-0.10) > 1e-12 {
		t.Fatalf("return[1] = %v, want 0.10", rets[1])
	}
}

func TestAddIndicatorsShortSeries(t *testing.T) {
	// Fewer rows than every window: all indicator columns fully
	// undefined, but still one row per input bar and no panic.
	in := barsFromCloses([]float64{100, 101, 102})
	out := AddIndicators(in, DefaultIndicatorConfig())
	if out.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", out.NumRows())
	}
	for _, col := range []string{models.ColSMA, models.ColRSI, models.ColEMA, models.ColVolatility20d, models.ColMomentum60d, models.ColVolumeRatio} {
		if out.DefinedCount(col) != 0 {
			t.Fatalf("column %s should be fully undefined on a short series", col)
		}
	}
}

func TestAddIndicatorsDoesNotMutateInput(t *testing.T) {
	in := barsFromCloses([]float64{100, 101, 102, 103, 104})
	cols := len(in.Columns)
	_ = AddIndicators(in, DefaultIndicatorConfig())
	if len(in.Columns) != cols {
		t.Fatalf("input table was mutated: %d columns, want %d", len(in.Columns), cols)
	}
}

func TestVolumeRatioWindow(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	out := AddIndicators(barsFromCloses(closes), DefaultIndicatorConfig())
	vr := out.Column(models.ColVolumeRatio)
	if !math.IsNaN(vr[18]) {
		t.Fatalf("volume_ratio defined before 20 bars")
	}
	if math.Abs(vr[19]-1.0) > 1e-12 { // constant volume
		t.Fatalf("volume_ratio = %v, want 1", vr[19])
	}
}
