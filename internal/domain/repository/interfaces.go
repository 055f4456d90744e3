package repository

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
)

// BarStore persists and serves canonical daily bars.
type BarStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreBars(ctx context.Context, ticker string, bars []models.PriceBar) error
	GetBars(ctx context.Context, ticker string, from, to time.Time) ([]models.PriceBar, error)
	Health(ctx context.Context) error
	Close() error
}

// PredictionStore persists scored prediction rows for ad-hoc analysis
// across runs.
type PredictionStore interface {
	Init(ctx context.Context) error
	StorePredictions(ctx context.Context, runID string, t *models.FeatureTable) error
	LatestPredictions(ctx context.Context, ticker string, limit int) ([]models.PredictionRow, error)
}

// PredictionPublisher emits per-run prediction events to a message bus.
type PredictionPublisher interface {
	PublishRun(ctx context.Context, event any) error
	Close() error
}

// Metrics records pipeline observability signals.
type Metrics interface {
	RecordStage(stage, ticker string, seconds float64)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordRowsProcessed(stage string, rows int)
}
