package models

// Requests for the dashboard HTTP endpoints. Defined in domain for
// consistency and reuse.

type RunPipelineRequest struct {
	Ticker      string  `json:"ticker" validate:"required"`
	Start       string  `json:"start" validate:"required,datetime=2006-01-02"`
	End         string  `json:"end" validate:"required,datetime=2006-01-02"`
	Threshold   float64 `json:"threshold"`
	ForwardDays int     `json:"forward_days" default:"126" validate:"gte=1,lte=756"`
	SMAWindow   int     `json:"sma_window" default:"14" validate:"gte=1,lte=500"`
	RSIWindow   int     `json:"rsi_window" default:"14" validate:"gte=1,lte=500"`
	EMAWindow   int     `json:"ema_window" default:"14" validate:"gte=1,lte=500"`
	Retrain     bool    `json:"retrain"`
}

type BacktestRequest struct {
	RunID string `query:"run_id" json:"run_id" validate:"required"`
}

type QuoteRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type RunStatusRequest struct {
	RunID string `query:"run_id" json:"run_id" validate:"required"`
}

type FeaturesRequest struct {
	RunID string `query:"run_id" json:"run_id" validate:"required"`
}

type PredictionsRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
