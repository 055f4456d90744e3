package backtest

import (
	"errors"
	"math"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

func table(labels, actuals []float64) *models.FeatureTable {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, len(labels))
	for i := range labels {
		dates[i] = day.AddDate(0, 0, i)
	}
	t := models.NewFeatureTable("TEST", dates)
	t.MustAddColumn(models.ColPredictedLabel, labels)
	t.MustAddColumn(models.ColTargetReturn, actuals)
	return t
}

func TestRunWorkedExample(t *testing.T) {
	// labels [1,0,1,1] over actuals [0.02, 0.05, -0.01, 0.03] give
	// strategy returns [0.02, 0, -0.01, 0.03].
	res, err := Run(table([]float64{1, 0, 1, 1}, []float64{0.02, 0.05, -0.01, 0.03}), 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantCurve := []float64{1.02, 1.02, 1.0098, 1.040094}
	if len(res.Curve) != len(wantCurve) {
		t.Fatalf("curve length = %d, want %d", len(res.Curve), len(wantCurve))
	}
	for i, w := range wantCurve {
		if math.Abs(res.Curve[i]-w) > 1e-9 {
			t.Fatalf("curve[%d] = %v, want %v", i, res.Curve[i], w)
		}
	}
	if math.Abs(res.TotalReturn-0.040094) > 1e-9 {
		t.Fatalf("total return = %v, want 0.040094", res.TotalReturn)
	}
	// Wins: buy on +0.02, buy on +0.03; losses: hold during +0.05,
	// buy into -0.01.
	if res.WinRate != 0.5 {
		t.Fatalf("win rate = %v, want 0.5", res.WinRate)
	}
	if math.IsNaN(res.Sharpe) {
		t.Fatalf("sharpe must be defined for a non-flat strategy")
	}
}

func TestRunAllZeroLabelsIsFlat(t *testing.T) {
	res, err := Run(table([]float64{0, 0, 0}, []float64{0.1, -0.2, 0.3}), 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalReturn != 0 {
		t.Fatalf("total return = %v, want 0", res.TotalReturn)
	}
	for i, v := range res.Curve {
		if v != 1000 {
			t.Fatalf("curve[%d] = %v, want constant initial cash", i, v)
		}
	}
	if !math.IsNaN(res.Sharpe) {
		t.Fatalf("sharpe = %v, want NaN for zero-variance strategy", res.Sharpe)
	}
}

func TestRunEmptyInput(t *testing.T) {
	res, err := Run(table(nil, nil), 1.0)
	if err != nil {
		t.Fatalf("empty input must not error, got %v", err)
	}
	if !math.IsNaN(res.TotalReturn) || !math.IsNaN(res.WinRate) || !math.IsNaN(res.Sharpe) {
		t.Fatalf("empty input must yield NaN metrics: %+v", res)
	}
	if len(res.Curve) != 0 {
		t.Fatalf("empty input must yield an empty curve")
	}
}

func TestRunSkipsUndefinedRows(t *testing.T) {
	nan := math.NaN()
	res, err := Run(table([]float64{1, nan, 1}, []float64{0.02, 0.05, nan}), 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rows != 1 || len(res.Curve) != 1 {
		t.Fatalf("rows = %d, curve = %d, want 1 usable row", res.Rows, len(res.Curve))
	}
	if math.Abs(res.TotalReturn-0.02) > 1e-12 {
		t.Fatalf("total return = %v, want 0.02", res.TotalReturn)
	}
}

func TestRunZeroReturnNeverWins(t *testing.T) {
	res, err := Run(table([]float64{1, 0}, []float64{0, 0}), 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.WinRate != 0 {
		t.Fatalf("win rate = %v, want 0 when every realized return is zero", res.WinRate)
	}
}

func TestRunMissingColumns(t *testing.T) {
	bare := models.NewFeatureTable("TEST", nil)
	if _, err := Run(bare, 1.0); !errors.Is(err, models.ErrMalformedInput) {
		t.Fatalf("err = %v, want ErrMalformedInput", err)
	}
}

func TestAnnotateAlignsToAllRows(t *testing.T) {
	nan := math.NaN()
	in := table([]float64{1, nan, 1}, []float64{0.02, 0.05, 0.01})
	out := Annotate(in, 1.0)
	strat := out.Column(models.ColStrategyReturn)
	cum := out.Column(models.ColCumReturn)
	if len(strat) != 3 || len(cum) != 3 {
		t.Fatalf("annotation must cover every input row")
	}
	if !math.IsNaN(strat[1]) || !math.IsNaN(cum[1]) {
		t.Fatalf("undefined row must stay undefined in annotation")
	}
	if math.Abs(cum[2]-1.02*1.01) > 1e-12 {
		t.Fatalf("cumulative return must carry across undefined rows: %v", cum[2])
	}
	if in.HasColumn(models.ColStrategyReturn) {
		t.Fatalf("input table was mutated")
	}
}
