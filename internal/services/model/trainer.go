package model

import (
	"math"

	"StockCast/internal/domain/models"
)

// candidateFeatures is the full ordered set of columns the trainer will
// use when present: the core indicators first, then the fundamental and
// extended technical blocks. Absent columns are simply skipped, so a
// price-only table trains on the core set alone.
var candidateFeatures = []string{
	models.ColSMA, models.ColRSI, models.ColEMA,
	models.ColPERatio, models.ColPBRatio, models.ColDebtToEquity,
	models.ColCurrentRatio, models.ColROE, models.ColROA,
	models.ColRevenueGrowthYoY, models.ColEarningsGrowthYoY,
	models.ColMarketCap, models.ColEnterpriseValue,
	models.ColMarketCapEncoded, models.ColSectorCodeEncoded,
	models.ColDailyReturn, models.ColVolatility20d, models.ColVolatility60d,
	models.ColMomentum5d, models.ColMomentum20d, models.ColMomentum60d,
	models.ColVolumeRatio, models.ColPriceVsSMA, models.ColPriceVsEMA,
	models.ColBBPosition,
}

// TrainConfig holds trainer hyperparameters.
type TrainConfig struct {
	TestSize     float64
	Rounds       int
	LearningRate float64
}

// DefaultTrainConfig matches the historical defaults: last 20% of rows
// held out for evaluation.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{TestSize: 0.2, Rounds: DefaultRounds, LearningRate: DefaultLearningRate}
}

// TrainReport summarizes a training run for logging and the dashboard.
type TrainReport struct {
	Features  []string
	RowsTotal int
	RowsUsed  int
	TrainR2   float64
	TestR2    float64
}

// Train fits a gradient-boosted regressor on the target-return column of
// a feature table. Rows with an undefined value in any selected feature
// or in the target are dropped. The train/test split is time-ordered
// (earlier rows train, later rows test), never shuffled, so the holdout
// always postdates the fit. Returns models.ErrNoFeatures when the table
// carries none of the candidate columns and models.ErrNoData when no row
// survives the NaN filter.
func Train(t *models.FeatureTable, cfg TrainConfig) (*Artifact, *TrainReport, error) {
	features := availableOf(t, candidateFeatures)
	if len(features) == 0 {
		return nil, nil, models.ErrNoFeatures
	}
	if !t.HasColumn(models.ColTargetReturn) {
		return nil, nil, models.ErrMalformedInput
	}

	clean := t.DropUndefinedRows(append(append([]string(nil), features...), models.ColTargetReturn))
	n := clean.NumRows()
	if n == 0 {
		return nil, nil, models.ErrNoData
	}

	X := matrixOf(clean, features)
	y := clean.Column(models.ColTargetReturn)

	splitIdx := int(float64(n) * (1 - cfg.TestSize))
	if splitIdx < 1 {
		splitIdx = 1
	}
	if splitIdx > n {
		splitIdx = n
	}

	booster := &GradientBoost{Rounds: cfg.Rounds, LearningRate: cfg.LearningRate}
	if err := booster.Fit(X[:splitIdx], y[:splitIdx]); err != nil {
		return nil, nil, err
	}

	importance := map[string]float64{}
	for i, share := range booster.FeatureImportance() {
		if i < len(features) {
			importance[features[i]] = share
		}
	}

	report := &TrainReport{
		Features:  features,
		RowsTotal: t.NumRows(),
		RowsUsed:  n,
		TrainR2:   rSquared(y[:splitIdx], booster.Predict(X[:splitIdx])),
		TestR2:    math.NaN(),
	}
	if splitIdx < n {
		report.TestR2 = rSquared(y[splitIdx:], booster.Predict(X[splitIdx:]))
	}

	artifact := &Artifact{
		Version:    ArtifactVersion,
		Features:   features,
		Importance: importance,
		Model:      booster,
	}
	return artifact, report, nil
}

func availableOf(t *models.FeatureTable, candidates []string) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if t.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// matrixOf builds a row-major design matrix over the given columns.
func matrixOf(t *models.FeatureTable, features []string) [][]float64 {
	cols := make([][]float64, len(features))
	for j, f := range features {
		cols[j] = t.Column(f)
	}
	X := make([][]float64, t.NumRows())
	for i := range X {
		row := make([]float64, len(features))
		for j := range features {
			row[j] = cols[j][i]
		}
		X[i] = row
	}
	return X
}

// rSquared is the coefficient of determination; NaN when the actuals are
// constant.
func rSquared(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return math.NaN()
	}
	m := mean(actual)
	ssTot, ssRes := 0.0, 0.0
	for i := range actual {
		dt := actual[i] - m
		dr := actual[i] - predicted[i]
		ssTot += dt * dt
		ssRes += dr * dr
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}
