package usecase

import (
	"fmt"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	domservice "StockCast/internal/domain/service"
)

// QuoteUseCase serves the latest streamed price for dashboard display.
type QuoteUseCase struct {
	stream  domservice.QuoteStream
	metrics domrepo.Metrics
}

func NewQuoteUseCase(stream domservice.QuoteStream, metrics domrepo.Metrics) *QuoteUseCase {
	return &QuoteUseCase{stream: stream, metrics: metrics}
}

// Latest returns the most recent quote for a symbol. A symbol the stream
// has not seen yet maps to models.ErrNoData.
func (uc *QuoteUseCase) Latest(symbol string) (models.Quote, error) {
	if symbol == "" {
		return models.Quote{}, fmt.Errorf("symbol required: %w", models.ErrMalformedInput)
	}
	q, ok := uc.stream.Latest(symbol)
	if !ok {
		return models.Quote{}, fmt.Errorf("quote %s: %w", symbol, models.ErrNoData)
	}
	if uc.metrics != nil {
		uc.metrics.RecordLastPrice(q.Symbol, q.Price)
	}
	return q, nil
}
