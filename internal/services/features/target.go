package features

import (
	"math"

	"StockCast/internal/domain/models"
)

// DefaultForwardDays is the historical forward-return horizon (about six
// trading months).
const DefaultForwardDays = 126

// AddTargetReturn derives the forward-looking training target:
// target_return(t) = close(t+forwardDays)/close(t) - 1. The last
// forwardDays rows are NaN because the look-ahead window exceeds the
// available future data; a target cell never depends on data earlier
// than its own date plus forwardDays. Returns a new table.
func AddTargetReturn(t *models.FeatureTable, forwardDays int) *models.FeatureTable {
	out := t.Clone()
	closes := out.Column(models.ColClose)
	target := nanSlice(len(closes))
	for i := 0; i+forwardDays < len(closes); i++ {
		cur, fwd := closes[i], closes[i+forwardDays]
		if cur == 0 || math.IsNaN(cur) || math.IsNaN(fwd) {
			continue
		}
		target[i] = fwd/cur - 1
	}
	out.MustAddColumn(models.ColTargetReturn, target)
	return out
}

// ApplyLabel derives predicted_label from predicted_return: 1 iff the
// prediction is at or above threshold (ties are buys), else 0. Pure and
// idempotent; reapplying with the same threshold replaces the column with
// identical values. Undefined predictions yield undefined labels.
func ApplyLabel(t *models.FeatureTable, threshold float64) *models.FeatureTable {
	out := t.Clone()
	preds := out.Column(models.ColPredictedReturn)
	labels := nanSlice(len(preds))
	for i, p := range preds {
		if math.IsNaN(p) {
			continue
		}
		labels[i] = Label(p, threshold)
	}
	if out.HasColumn(models.ColPredictedLabel) {
		out.Data[models.ColPredictedLabel] = labels
	} else {
		out.MustAddColumn(models.ColPredictedLabel, labels)
	}
	return out
}

// Label is the pure decision function: 1 if predictedReturn >= threshold,
// else 0. No bound is enforced on either argument.
func Label(predictedReturn, threshold float64) float64 {
	if predictedReturn >= threshold {
		return 1
	}
	return 0
}
