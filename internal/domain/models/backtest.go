package models

import (
	"encoding/json"
	"time"
)

// BacktestResult holds the outcome of replaying a labeled prediction
// series as a long/flat strategy. All metrics are NaN when the input was
// empty or the strategy never produced a return spread (flat Sharpe).
type BacktestResult struct {
	Ticker      string      `json:"ticker"`
	Rows        int         `json:"rows"`
	InitialCash float64     `json:"initial_cash"`
	TotalReturn float64     `json:"total_return"`
	WinRate     float64     `json:"win_rate"`
	Sharpe      float64     `json:"sharpe"`
	Curve       []float64   `json:"curve"` // cumulative return, aligned to input rows
	Dates       []time.Time `json:"dates,omitempty"`
}

// MarshalJSON encodes NaN metrics as null, which encoding/json otherwise
// rejects. Curve values are always defined.
func (r BacktestResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Ticker      string      `json:"ticker"`
		Rows        int         `json:"rows"`
		InitialCash float64     `json:"initial_cash"`
		TotalReturn *float64    `json:"total_return"`
		WinRate     *float64    `json:"win_rate"`
		Sharpe      *float64    `json:"sharpe"`
		Curve       []float64   `json:"curve"`
		Dates       []time.Time `json:"dates,omitempty"`
	}{
		Ticker:      r.Ticker,
		Rows:        r.Rows,
		InitialCash: r.InitialCash,
		TotalReturn: nanAsNull(r.TotalReturn),
		WinRate:     nanAsNull(r.WinRate),
		Sharpe:      nanAsNull(r.Sharpe),
		Curve:       r.Curve,
		Dates:       r.Dates,
	})
}
