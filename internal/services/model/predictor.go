package model

import (
	"math"

	"StockCast/internal/domain/models"
)

// Predict scores every row of a feature table with a loaded artifact and
// returns a new table carrying predicted_return plus the features_used /
// features_missing observability columns. The artifact's declared
// features that are absent from the table are skipped; prediction runs on
// the available subset. Undefined cells in used features are filled with
// zero at scoring time only, never in the table itself. Returns
// models.ErrNoFeatures when none of the declared features are present.
func Predict(art *Artifact, t *models.FeatureTable) (*models.FeatureTable, []string, error) {
	available := availableOf(t, art.Features)
	if len(available) == 0 {
		return nil, nil, models.ErrNoFeatures
	}
	missing := missingOf(t, art.Features)

	out := t.Clone()
	X := matrixOf(out, available)
	for _, row := range X {
		for j, v := range row {
			if math.IsNaN(v) {
				row[j] = 0
			}
		}
	}
	out.MustAddColumn(models.ColPredictedReturn, art.Model.Predict(X))
	_ = out.SetConstColumn(models.ColFeaturesUsed, float64(len(available)))
	_ = out.SetConstColumn(models.ColFeaturesMissing, float64(len(missing)))
	return out, missing, nil
}

func missingOf(t *models.FeatureTable, declared []string) []string {
	var out []string
	for _, f := range declared {
		if !t.HasColumn(f) {
			out = append(out, f)
		}
	}
	return out
}
