package model

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

func TestGradientBoostLearnsThreshold(t *testing.T) {
	// y is a step function of a single feature; stumps should recover it
	// almost exactly.
	var X [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		v := float64(i)
		X = append(X, []float64{v})
		if v < 20 {
			y = append(y, -1)
		} else {
			y = append(y, 1)
		}
	}
	g := NewGradientBoost()
	if err := g.Fit(X, y); err != nil {
		t.Fatalf("fit: %v", err)
	}
	preds := g.Predict(X)
	for i, p := range preds {
		if math.Abs(p-y[i]) > 0.05 {
			t.Fatalf("pred[%d] = %v, want %v", i, p, y[i])
		}
	}
}

func TestGradientBoostConstantTarget(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	y := []float64{0.5, 0.5, 0.5}
	g := NewGradientBoost()
	if err := g.Fit(X, y); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if len(g.Stumps) != 0 {
		t.Fatalf("constant target must produce no splits, got %d", len(g.Stumps))
	}
	if p := g.Predict(X); p[0] != 0.5 {
		t.Fatalf("prediction = %v, want base 0.5", p[0])
	}
}

func TestGradientBoostEmptyInput(t *testing.T) {
	g := NewGradientBoost()
	if err := g.Fit(nil, nil); !errors.Is(err, models.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestFeatureImportanceSumsToOne(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 30; i++ {
		a, b := float64(i%5), float64(i)
		X = append(X, []float64{a, b})
		y = append(y, 2*b+a)
	}
	g := NewGradientBoost()
	if err := g.Fit(X, y); err != nil {
		t.Fatalf("fit: %v", err)
	}
	imp := g.FeatureImportance()
	sum := 0.0
	for _, v := range imp {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("importance sums to %v, want 1", sum)
	}
	if imp[1] < imp[0] {
		t.Fatalf("dominant feature ranked below the weak one: %v", imp)
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	g := NewGradientBoost()
	_ = g.Fit([][]float64{{0}, {1}, {2}, {3}}, []float64{0, 0, 1, 1})
	art := &Artifact{
		Version:    ArtifactVersion,
		Features:   []string{models.ColSMA, models.ColRSI},
		Importance: map[string]float64{models.ColSMA: 0.7, models.ColRSI: 0.3},
		Model:      g,
	}
	path := filepath.Join(t.TempDir(), "models", "model.json")
	if err := art.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadArtifact(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Version != ArtifactVersion || len(got.Features) != 2 {
		t.Fatalf("artifact fields lost: %+v", got)
	}
	in := [][]float64{{0.5}, {2.5}}
	a, b := art.Model.Predict(in), got.Model.Predict(in)
	if a[0] != b[0] || a[1] != b[1] {
		t.Fatalf("reloaded model predicts differently: %v vs %v", a, b)
	}
}

func TestLoadLegacyArtifact(t *testing.T) {
	// Older artifacts stored the bare regressor document.
	legacy := []byte(`{"rounds":10,"learning_rate":0.1,"base":0.02,"stumps":[]}`)
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, legacy, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	art, err := LoadArtifact(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{models.ColSMA, models.ColRSI, models.ColEMA}
	if len(art.Features) != len(want) {
		t.Fatalf("features = %v, want %v", art.Features, want)
	}
	for i := range want {
		if art.Features[i] != want[i] {
			t.Fatalf("features = %v, want %v", art.Features, want)
		}
	}
	if art.Model == nil || art.Model.Base != 0.02 {
		t.Fatalf("legacy regressor not preserved: %+v", art.Model)
	}
}

func trainingTable(n int) *models.FeatureTable {
	dates := make([]time.Time, n)
	sma := make([]float64, n)
	rsi := make([]float64, n)
	ema := make([]float64, n)
	target := make([]float64, n)
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		dates[i] = day.AddDate(0, 0, i)
		sma[i] = float64(i % 10)
		rsi[i] = 50 + float64(i%7)
		ema[i] = float64(i % 10)
		target[i] = 0.01 * sma[i]
	}
	t := models.NewFeatureTable("TRAIN", dates)
	t.MustAddColumn(models.ColSMA, sma)
	t.MustAddColumn(models.ColRSI, rsi)
	t.MustAddColumn(models.ColEMA, ema)
	t.MustAddColumn(models.ColTargetReturn, target)
	return t
}

func TestTrainProducesUsableArtifact(t *testing.T) {
	tbl := trainingTable(100)
	art, report, err := Train(tbl, DefaultTrainConfig())
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if len(art.Features) != 3 {
		t.Fatalf("features = %v, want the three core indicators", art.Features)
	}
	if report.RowsUsed != 100 {
		t.Fatalf("rows used = %d, want 100", report.RowsUsed)
	}
	if report.TrainR2 < 0.9 {
		t.Fatalf("train R2 = %v, expected a near-perfect fit on a deterministic target", report.TrainR2)
	}
	if math.IsNaN(report.TestR2) {
		t.Fatalf("test R2 undefined despite holdout rows")
	}
}

func TestTrainDropsUndefinedRows(t *testing.T) {
	tbl := trainingTable(50)
	tbl.Data[models.ColSMA][0] = math.NaN()
	tbl.Data[models.ColTargetReturn][49] = math.NaN()
	_, report, err := Train(tbl, DefaultTrainConfig())
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if report.RowsUsed != 48 {
		t.Fatalf("rows used = %d, want 48", report.RowsUsed)
	}
}

func TestTrainErrorTaxonomy(t *testing.T) {
	empty := models.NewFeatureTable("X", nil)
	if _, _, err := Train(empty, DefaultTrainConfig()); !errors.Is(err, models.ErrNoFeatures) {
		t.Fatalf("err = %v, want ErrNoFeatures", err)
	}

	tbl := trainingTable(10)
	for i := range tbl.Data[models.ColTargetReturn] {
		tbl.Data[models.ColTargetReturn][i] = math.NaN()
	}
	if _, _, err := Train(tbl, DefaultTrainConfig()); !errors.Is(err, models.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestPredictOnAvailableSubset(t *testing.T) {
	tbl := trainingTable(60)
	art, _, err := Train(tbl, DefaultTrainConfig())
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	// Score a table missing one declared feature.
	dates := tbl.Dates[:10]
	scored := models.NewFeatureTable("PRED", dates)
	scored.MustAddColumn(models.ColSMA, tbl.Data[models.ColSMA][:10])
	scored.MustAddColumn(models.ColRSI, tbl.Data[models.ColRSI][:10])

	out, missing, err := Predict(art, scored)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(missing) != 1 || missing[0] != models.ColEMA {
		t.Fatalf("missing = %v, want [EMA]", missing)
	}
	if out.DefinedCount(models.ColPredictedReturn) != 10 {
		t.Fatalf("predicted_return not defined on every row")
	}
	if out.Column(models.ColFeaturesUsed)[0] != 2 || out.Column(models.ColFeaturesMissing)[0] != 1 {
		t.Fatalf("observability columns wrong: used=%v missing=%v",
			out.Column(models.ColFeaturesUsed)[0], out.Column(models.ColFeaturesMissing)[0])
	}
	if scored.HasColumn(models.ColPredictedReturn) {
		t.Fatalf("input table was mutated")
	}
}

func TestPredictNoDeclaredFeatures(t *testing.T) {
	art := &Artifact{Features: []string{models.ColSMA}, Model: NewGradientBoost()}
	bare := models.NewFeatureTable("X", nil)
	if _, _, err := Predict(art, bare); !errors.Is(err, models.ErrNoFeatures) {
		t.Fatalf("err = %v, want ErrNoFeatures", err)
	}
}

func TestPredictFillsNaNWithZeroAtScoringOnly(t *testing.T) {
	tbl := trainingTable(40)
	art, _, err := Train(tbl, DefaultTrainConfig())
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	tbl.Data[models.ColSMA][5] = math.NaN()
	out, _, err := Predict(art, tbl)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if math.IsNaN(out.Column(models.ColPredictedReturn)[5]) {
		t.Fatalf("NaN feature cell must be scored as zero, not propagate")
	}
	if !math.IsNaN(out.Column(models.ColSMA)[5]) {
		t.Fatalf("the table's own feature cell must stay undefined")
	}
}
