package models

import (
	"encoding/json"
	"math"
	"time"
)

// PredictionRow is one scored row as persisted to the prediction store.
// Undefined values stay NaN in memory and render as null on the wire.
type PredictionRow struct {
	RunID           string    `json:"run_id"`
	Ticker          string    `json:"ticker"`
	Date            time.Time `json:"date"`
	PredictedReturn float64   `json:"predicted_return"`
	PredictedLabel  float64   `json:"predicted_label"`
	ActualReturn    float64   `json:"actual_return"`
}

// MarshalJSON encodes NaN values as null, which encoding/json otherwise
// rejects.
func (r PredictionRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RunID           string    `json:"run_id"`
		Ticker          string    `json:"ticker"`
		Date            time.Time `json:"date"`
		PredictedReturn *float64  `json:"predicted_return"`
		PredictedLabel  *float64  `json:"predicted_label"`
		ActualReturn    *float64  `json:"actual_return"`
	}{
		RunID:           r.RunID,
		Ticker:          r.Ticker,
		Date:            r.Date,
		PredictedReturn: nanAsNull(r.PredictedReturn),
		PredictedLabel:  nanAsNull(r.PredictedLabel),
		ActualReturn:    nanAsNull(r.ActualReturn),
	})
}

func nanAsNull(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
