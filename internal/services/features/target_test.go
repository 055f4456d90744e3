package features

import (
	"math"
	"testing"

	"StockCast/internal/domain/models"
)

func TestAddTargetReturnWorkedExample(t *testing.T) {
	// closes [100,102,101,105,104,110], forward 2 days:
	// row 0: 101/100-1 = 0.01, row 3: 110/105-1 ~ 0.047619, last 2 NaN.
	in := barsFromCloses([]float64{100, 102, 101, 105, 104, 110})
	out := AddTargetReturn(in, 2)
	got := out.Column(models.ColTargetReturn)
	want := []float64{0.01, 105.0/102 - 1, 104.0/101 - 1, 110.0/105 - 1}
	for i, w := range want {
		if math.Abs(got[i]-w) > 1e-9 {
			t.Fatalf("target[%d] = %v, want %v", i, got[i], w)
		}
	}
	if !math.IsNaN(got[4]) || !math.IsNaN(got[5]) {
		t.Fatalf("last forward_days rows must be NaN, got %v %v", got[4], got[5])
	}
}

func TestAddTargetReturnShortSeries(t *testing.T) {
	in := barsFromCloses([]float64{100, 101})
	out := AddTargetReturn(in, 5)
	for i, v := range out.Column(models.ColTargetReturn) {
		if !math.IsNaN(v) {
			t.Fatalf("target[%d] = %v, want NaN when horizon exceeds history", i, v)
		}
	}
}

func TestLabelThresholdTieIsBuy(t *testing.T) {
	if Label(0.05, 0.05) != 1 {
		t.Fatalf("prediction equal to threshold must label 1")
	}
	if Label(0.0499, 0.05) != 0 {
		t.Fatalf("prediction below threshold must label 0")
	}
	if Label(-0.02, -0.05) != 1 {
		t.Fatalf("negative threshold: -0.02 >= -0.05 must label 1")
	}
}

func TestApplyLabelIdempotent(t *testing.T) {
	in := barsFromCloses([]float64{100, 101, 102})
	in.MustAddColumn(models.ColPredictedReturn, []float64{0.10, 0.02, math.NaN()})

	once := ApplyLabel(in, 0.05)
	twice := ApplyLabel(once, 0.05)

	a := once.Column(models.ColPredictedLabel)
	b := twice.Column(models.ColPredictedLabel)
	if a[0] != 1 || a[1] != 0 || !math.IsNaN(a[2]) {
		t.Fatalf("labels = %v, want [1 0 NaN]", a)
	}
	for i := range a {
		if math.IsNaN(a[i]) != math.IsNaN(b[i]) || (!math.IsNaN(a[i]) && a[i] != b[i]) {
			t.Fatalf("relabeling changed row %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestApplyLabelDoesNotTouchOtherColumns(t *testing.T) {
	in := barsFromCloses([]float64{100, 101})
	in.MustAddColumn(models.ColPredictedReturn, []float64{0.1, 0.0})
	out := ApplyLabel(in, 0.05)
	if out.Column(models.ColClose)[1] != 101 {
		t.Fatalf("close column corrupted by labeling")
	}
	if in.HasColumn(models.ColPredictedLabel) {
		t.Fatalf("input table was mutated")
	}
}
