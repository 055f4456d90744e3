package service

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
)

// PriceSource fetches historical daily bars for a ticker. A fetch that
// yields zero bars must surface models.ErrNoData rather than an empty
// success.
type PriceSource interface {
	FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]models.PriceBar, error)
}

// RawFundamentals carries the unshaped fundamentals of a ticker as
// returned by the provider: a free-form info map plus per-period
// statement line items, most recent period first.
type RawFundamentals struct {
	Info         map[string]float64
	Sector       string
	Industry     string
	IncomeStmt   []map[string]float64
	BalanceSheet []map[string]float64
	CashFlow     []map[string]float64
}

// FundamentalsSource fetches raw fundamentals for a ticker. An
// unreachable provider returns an error; a reachable provider with no
// usable fields returns an empty RawFundamentals, which downstream shapes
// into an empty snapshot.
type FundamentalsSource interface {
	FetchFundamentals(ctx context.Context, ticker string) (*RawFundamentals, error)
}

// QuoteStream exposes a live last-price feed for dashboard display.
type QuoteStream interface {
	Start(ctx context.Context) error
	Latest(symbol string) (models.Quote, bool)
	Close() error
}
