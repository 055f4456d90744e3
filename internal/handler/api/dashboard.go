package api

import (
	"os"
	"path/filepath"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"
	"StockCast/pkg/queue"

	"github.com/labstack/echo/v4"
)

// DashboardHandler exposes the forecasting pipeline over HTTP: runs are
// submitted to the worker queue and polled by request id, plus quote and
// diagnostics endpoints.
type DashboardHandler struct {
	logger   *xlogger.Logger
	queue    queue.QueueService
	registry *usecase.RunRegistry
	quotes   *usecase.QuoteUseCase
	preds    domrepo.PredictionStore // optional
}

func NewDashboardHandler(logger *xlogger.Logger, q queue.QueueService, registry *usecase.RunRegistry, quotes *usecase.QuoteUseCase) *DashboardHandler {
	return &DashboardHandler{logger: logger, queue: q, registry: registry, quotes: quotes}
}

// WithPredictionStore enables the cross-run prediction endpoint.
func (h *DashboardHandler) WithPredictionStore(p domrepo.PredictionStore) *DashboardHandler {
	h.preds = p
	return h
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/pipeline/run", h.SubmitRun)
	g.GET("/pipeline/status", h.RunStatus)
	g.GET("/backtest", h.Backtest)
	g.GET("/features", h.Features)
	g.GET("/quote", h.Quote)
	g.GET("/predictions", h.Predictions)
	g.GET("/errors", h.RecentErrors)
}

// SubmitRun validates a run request, enqueues it, and returns the request
// id to poll.
func (h *DashboardHandler) SubmitRun(c echo.Context) error {
	req := &models.RunPipelineRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	requestID := h.registry.NewRequestID(req.Ticker)
	state := h.registry.Submit(requestID, *req)
	payload := usecase.RunJobPayload{RequestID: requestID, Request: *req}
	if err := h.queue.PublishMessage(c.Request().Context(), usecase.RunJobType, payload); err != nil {
		h.logger.Error("enqueue pipeline run", xlogger.Error(err))
		h.registry.Complete(requestID, nil, err)
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.CreatedResponse(c, state)
}

// RunStatus reports the state of a submitted run.
func (h *DashboardHandler) RunStatus(c echo.Context) error {
	req := &models.RunStatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	state, ok := h.registry.Get(req.RunID)
	if !ok {
		return xhttp.NotFoundResponse(c, "run not found")
	}
	return xhttp.SuccessResponse(c, state)
}

// Backtest returns the evaluation of a finished run.
func (h *DashboardHandler) Backtest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	state, ok := h.registry.Get(req.RunID)
	if !ok {
		return xhttp.NotFoundResponse(c, "run not found")
	}
	if state.Status != usecase.RunDone || state.Result == nil {
		return xhttp.SuccessResponse(c, map[string]string{"status": state.Status})
	}
	return xhttp.SuccessResponse(c, state.Result.Backtest)
}

// Features streams the feature CSV persisted by a finished run. The table
// carries NaN for undefined cells, so it is served as CSV rather than
// re-encoded as JSON.
func (h *DashboardHandler) Features(c echo.Context) error {
	req := &models.FeaturesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	state, ok := h.registry.Get(req.RunID)
	if !ok {
		return xhttp.NotFoundResponse(c, "run not found")
	}
	if state.Status != usecase.RunDone || state.Result == nil {
		return xhttp.SuccessResponse(c, map[string]string{"status": state.Status})
	}
	path := filepath.Join(state.Result.RunDir, "features.csv")
	if _, err := os.Stat(path); err != nil {
		h.logger.Error("run feature table missing", xlogger.String("run_id", req.RunID), xlogger.Error(err))
		return xhttp.NotFoundResponse(c, "feature table unavailable for run")
	}
	return c.File(path)
}

// Quote serves the latest streamed price for a symbol.
func (h *DashboardHandler) Quote(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	q, err := h.quotes.Latest(req.Symbol)
	if err != nil {
		return xhttp.NotFoundResponse(c, "no quote seen for symbol")
	}
	return xhttp.SuccessResponse(c, q)
}

// Predictions serves the newest stored prediction rows for a ticker.
func (h *DashboardHandler) Predictions(c echo.Context) error {
	if h.preds == nil {
		return xhttp.NotFoundResponse(c, "prediction store disabled")
	}
	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.preds.LatestPredictions(c.Request().Context(), req.Ticker, req.Limit)
	if err != nil {
		return xhttp.NotFoundResponse(c, "no predictions stored for ticker")
	}
	return xhttp.SuccessResponse(c, rows)
}

// RecentErrors returns the newest captured error log entries.
func (h *DashboardHandler) RecentErrors(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.logger.RecentErrors())
}
