package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	domservice "StockCast/internal/domain/service"
	"StockCast/internal/repository"
	"StockCast/internal/services/backtest"
	"StockCast/internal/services/features"
	"StockCast/internal/services/fundamentals"
	"StockCast/internal/services/model"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// Stage names used in logs and metrics.
const (
	StageFetch        = "fetch"
	StageFundamentals = "fundamentals"
	StageFeatures     = "features"
	StageTrain        = "train"
	StagePredict      = "predict"
	StageBacktest     = "backtest"
)

// PipelineConfig carries the run defaults from configuration.
type PipelineConfig struct {
	SaveDir     string
	ModelPath   string
	InitialCash float64
	TestSize    float64
}

// PipelineUseCase orchestrates one full forecasting run: fetch prices and
// fundamentals, derive features, train or load the model, predict, label,
// and backtest. Each run works in its own directory under SaveDir so
// concurrent runs never collide on output files.
type PipelineUseCase struct {
	cfg       PipelineConfig
	prices    domservice.PriceSource
	funds     domservice.FundamentalsSource
	bars      domrepo.BarStore            // optional warm store
	preds     domrepo.PredictionStore     // optional scored-row store
	publisher domrepo.PredictionPublisher // optional event sink
	metrics   domrepo.Metrics             // optional
	csv       *repository.CSVStore
	l         *applogger.Logger
}

func NewPipelineUseCase(
	cfg PipelineConfig,
	prices domservice.PriceSource,
	funds domservice.FundamentalsSource,
	csv *repository.CSVStore,
	l *applogger.Logger,
) *PipelineUseCase {
	return &PipelineUseCase{cfg: cfg, prices: prices, funds: funds, csv: csv, l: l}
}

// WithBarStore attaches an optional bar store used as a fetch-through
// cache in front of the remote price source.
func (uc *PipelineUseCase) WithBarStore(bars domrepo.BarStore) *PipelineUseCase {
	uc.bars = bars
	return uc
}

// WithPredictionStore attaches an optional store for scored rows.
func (uc *PipelineUseCase) WithPredictionStore(p domrepo.PredictionStore) *PipelineUseCase {
	uc.preds = p
	return uc
}

// WithPublisher attaches an optional run-event publisher.
func (uc *PipelineUseCase) WithPublisher(p domrepo.PredictionPublisher) *PipelineUseCase {
	uc.publisher = p
	return uc
}

// WithMetrics attaches an optional metrics recorder.
func (uc *PipelineUseCase) WithMetrics(m domrepo.Metrics) *PipelineUseCase {
	uc.metrics = m
	return uc
}

// RunResult summarizes a completed pipeline run.
type RunResult struct {
	RunID     string                 `json:"run_id"`
	Ticker    string                 `json:"ticker"`
	RunDir    string                 `json:"run_dir"`
	Rows      int                    `json:"rows"`
	Features  []string               `json:"features"`
	Missing   []string               `json:"features_missing,omitempty"`
	Retrained bool                   `json:"retrained"`
	TrainR2   float64                `json:"train_r2"`
	TestR2    float64                `json:"test_r2"`
	Backtest  *models.BacktestResult `json:"backtest"`
}

// MarshalJSON encodes NaN R2 values as null. A constant holdout or an
// empty test split yields NaN from the trainer.
func (r RunResult) MarshalJSON() ([]byte, error) {
	type plain RunResult
	return json.Marshal(struct {
		plain
		TrainR2 *float64 `json:"train_r2"`
		TestR2  *float64 `json:"test_r2"`
	}{
		plain:   plain(r),
		TrainR2: nanAsNull(r.TrainR2),
		TestR2:  nanAsNull(r.TestR2),
	})
}

func nanAsNull(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// Run executes the whole pipeline for one request. Fundamentals failures
// degrade to a price-only feature set; every other stage failure aborts
// the run with an error naming the ticker and stage.
func (uc *PipelineUseCase) Run(ctx context.Context, req models.RunPipelineRequest) (*RunResult, error) {
	from, ok := util.ParseTime(req.Start)
	if !ok {
		return nil, fmt.Errorf("run %s: bad start date %q: %w", req.Ticker, req.Start, models.ErrMalformedInput)
	}
	to, ok := util.ParseTime(req.End)
	if !ok {
		return nil, fmt.Errorf("run %s: bad end date %q: %w", req.Ticker, req.End, models.ErrMalformedInput)
	}
	if from.After(to) {
		return nil, fmt.Errorf("run %s: start after end: %w", req.Ticker, models.ErrMalformedInput)
	}

	runID := fmt.Sprintf("%s-%d", req.Ticker, time.Now().UnixNano())
	runDir := filepath.Join(uc.cfg.SaveDir, "runs", runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("run %s: create run dir: %w", req.Ticker, err)
	}

	bars, err := uc.fetchBars(ctx, req.Ticker, from, to)
	if err != nil {
		uc.recordError(StageFetch)
		return nil, err
	}
	if err := uc.csv.WriteBars(filepath.Join(runDir, "prices.csv"), req.Ticker, bars); err != nil {
		return nil, fmt.Errorf("run %s: %w", req.Ticker, err)
	}

	snap := uc.fetchFundamentals(ctx, req.Ticker, runDir)

	table, err := uc.buildFeatures(req, bars, snap, runDir)
	if err != nil {
		uc.recordError(StageFeatures)
		return nil, err
	}

	artifact, report, retrained, err := uc.trainOrLoad(req, table)
	if err != nil {
		uc.recordError(StageTrain)
		return nil, err
	}

	predicted, missing, err := uc.predict(ctx, runID, req, artifact, table, runDir)
	if err != nil {
		uc.recordError(StagePredict)
		return nil, err
	}

	btResult, err := uc.backtest(req.Ticker, predicted, runDir)
	if err != nil {
		uc.recordError(StageBacktest)
		return nil, err
	}

	result := &RunResult{
		RunID:     runID,
		Ticker:    req.Ticker,
		RunDir:    runDir,
		Rows:      predicted.NumRows(),
		Features:  artifact.Features,
		Missing:   missing,
		Retrained: retrained,
		Backtest:  btResult,
	}
	if report != nil {
		result.TrainR2 = report.TrainR2
		result.TestR2 = report.TestR2
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishRun(ctx, result); err != nil {
			// Downstream consumers are best-effort; the run itself succeeded.
			uc.l.Warn("publish run event failed",
				applogger.String("run_id", runID), applogger.Error(err))
		}
	}
	uc.l.Info("pipeline run complete",
		applogger.String("run_id", runID),
		applogger.String("ticker", req.Ticker),
		applogger.Int("rows", result.Rows),
		applogger.Bool("retrained", retrained),
	)
	return result, nil
}

// RunMonthly replays the pipeline once per calendar month boundary in
// the requested range, retraining each slice on all history from the
// requested start up to that month's end. The final slice always ends at
// the requested end date. A failed slice aborts the loop; the results of
// completed slices are still returned.
func (uc *PipelineUseCase) RunMonthly(ctx context.Context, req models.RunPipelineRequest) ([]*RunResult, error) {
	from, ok := util.ParseTime(req.Start)
	if !ok {
		return nil, fmt.Errorf("monthly %s: bad start date %q: %w", req.Ticker, req.Start, models.ErrMalformedInput)
	}
	to, ok := util.ParseTime(req.End)
	if !ok {
		return nil, fmt.Errorf("monthly %s: bad end date %q: %w", req.Ticker, req.End, models.ErrMalformedInput)
	}
	if from.After(to) {
		return nil, fmt.Errorf("monthly %s: start after end: %w", req.Ticker, models.ErrMalformedInput)
	}

	var ends []time.Time
	for cur := util.MonthStart(from).AddDate(0, 1, 0); !cur.After(to); cur = cur.AddDate(0, 1, 0) {
		ends = append(ends, cur.AddDate(0, 0, -1))
	}
	if len(ends) == 0 || ends[len(ends)-1].Before(to) {
		ends = append(ends, to)
	}

	results := make([]*RunResult, 0, len(ends))
	for _, end := range ends {
		slice := req
		slice.End = util.FormatDate(end)
		slice.Retrain = true
		res, err := uc.Run(ctx, slice)
		if err != nil {
			return results, fmt.Errorf("monthly %s ending %s: %w", req.Ticker, slice.End, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// fetchBars serves from the bar store when possible and falls back to the
// remote source, warming the store afterwards.
func (uc *PipelineUseCase) fetchBars(ctx context.Context, ticker string, from, to time.Time) ([]models.PriceBar, error) {
	start := time.Now()
	defer uc.recordStage(StageFetch, ticker, start)

	if uc.bars != nil {
		if cached, err := uc.bars.GetBars(ctx, ticker, from, to); err == nil {
			uc.l.Debug("bars served from store",
				applogger.String("ticker", ticker), applogger.Int("rows", len(cached)))
			return cached, nil
		}
	}
	bars, err := uc.prices.FetchDailyBars(ctx, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s..%s: %w",
			ticker, util.FormatDate(from), util.FormatDate(to), err)
	}
	if uc.bars != nil {
		if err := uc.bars.StoreBars(ctx, ticker, bars); err != nil {
			uc.l.Warn("store bars failed",
				applogger.String("ticker", ticker), applogger.Error(err))
		}
	}
	uc.recordRows(StageFetch, len(bars))
	return bars, nil
}

// fetchFundamentals never fails the run: a broken or empty fundamentals
// source degrades to an empty snapshot and a price-only feature set.
func (uc *PipelineUseCase) fetchFundamentals(ctx context.Context, ticker, runDir string) *models.FundamentalSnapshot {
	start := time.Now()
	defer uc.recordStage(StageFundamentals, ticker, start)

	raw, err := uc.funds.FetchFundamentals(ctx, ticker)
	if err != nil {
		uc.recordError(StageFundamentals)
		uc.l.Warn("fundamentals unavailable, continuing with price-only features",
			applogger.String("ticker", ticker), applogger.Error(err))
		return &models.FundamentalSnapshot{Ticker: ticker, Date: time.Now().UTC()}
	}
	snap := fundamentals.Shape(ticker, raw, time.Now().UTC())
	if err := uc.csv.WriteSnapshot(filepath.Join(runDir, "ratios.csv"), snap); err != nil {
		uc.l.Warn("write ratios csv failed",
			applogger.String("ticker", ticker), applogger.Error(err))
	}
	return snap
}

func (uc *PipelineUseCase) buildFeatures(req models.RunPipelineRequest, bars []models.PriceBar, snap *models.FundamentalSnapshot, runDir string) (*models.FeatureTable, error) {
	start := time.Now()
	defer uc.recordStage(StageFeatures, req.Ticker, start)

	cfg := features.IndicatorConfig{
		SMAWindow: req.SMAWindow,
		RSIWindow: req.RSIWindow,
		EMAWindow: req.EMAWindow,
	}
	table := features.AddIndicators(models.FromBars(req.Ticker, bars), cfg)
	table = features.MergeFundamentals(table, snap)
	table = features.AddTargetReturn(table, req.ForwardDays)

	if err := uc.csv.WriteTable(filepath.Join(runDir, "features.csv"), table); err != nil {
		return nil, fmt.Errorf("run %s: %w", req.Ticker, err)
	}
	uc.recordRows(StageFeatures, table.NumRows())
	return table, nil
}

// trainOrLoad retrains when asked, when no artifact exists, or when the
// stored artifact predates the current month (scheduled monthly refresh).
// Otherwise the stored artifact is loaded and treated as read-only.
func (uc *PipelineUseCase) trainOrLoad(req models.RunPipelineRequest, table *models.FeatureTable) (*model.Artifact, *model.TrainReport, bool, error) {
	start := time.Now()
	defer uc.recordStage(StageTrain, req.Ticker, start)

	if !req.Retrain {
		if info, err := os.Stat(uc.cfg.ModelPath); err == nil && !info.ModTime().Before(util.MonthStart(time.Now())) {
			artifact, err := model.LoadArtifact(uc.cfg.ModelPath)
			if err == nil {
				return artifact, nil, false, nil
			}
			uc.l.Warn("stored model unreadable, retraining", applogger.Error(err))
		}
	}

	trainCfg := model.DefaultTrainConfig()
	if uc.cfg.TestSize > 0 {
		trainCfg.TestSize = uc.cfg.TestSize
	}
	artifact, report, err := model.Train(table, trainCfg)
	if err != nil {
		return nil, nil, false, fmt.Errorf("train %s: %w", req.Ticker, err)
	}
	if err := artifact.Save(uc.cfg.ModelPath); err != nil {
		return nil, nil, false, fmt.Errorf("train %s: %w", req.Ticker, err)
	}
	uc.l.Info("model trained",
		applogger.String("ticker", req.Ticker),
		applogger.Int("rows", report.RowsUsed),
		applogger.Int("features", len(report.Features)),
		applogger.Any("test_r2", report.TestR2),
	)
	return artifact, report, true, nil
}

func (uc *PipelineUseCase) predict(ctx context.Context, runID string, req models.RunPipelineRequest, artifact *model.Artifact, table *models.FeatureTable, runDir string) (*models.FeatureTable, []string, error) {
	start := time.Now()
	defer uc.recordStage(StagePredict, req.Ticker, start)

	predicted, missing, err := model.Predict(artifact, table)
	if err != nil {
		return nil, nil, fmt.Errorf("predict %s: %w", req.Ticker, err)
	}
	if len(missing) > 0 {
		uc.l.Warn("predicting on feature subset",
			applogger.String("ticker", req.Ticker),
			applogger.Strings("missing", missing))
	}
	predicted = features.ApplyLabel(predicted, req.Threshold)
	if err := uc.csv.WriteTable(filepath.Join(runDir, "predictions.csv"), predicted); err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", req.Ticker, err)
	}
	if uc.preds != nil {
		// The store is an analysis convenience; a write failure must not
		// fail a run whose prediction CSV already exists.
		if err := uc.preds.StorePredictions(ctx, runID, predicted); err != nil {
			uc.l.Warn("store predictions failed",
				applogger.String("ticker", req.Ticker), applogger.Error(err))
		}
	}
	uc.recordRows(StagePredict, predicted.NumRows())
	return predicted, missing, nil
}

func (uc *PipelineUseCase) backtest(ticker string, predicted *models.FeatureTable, runDir string) (*models.BacktestResult, error) {
	start := time.Now()
	defer uc.recordStage(StageBacktest, ticker, start)

	initialCash := uc.cfg.InitialCash
	if initialCash == 0 {
		initialCash = 1.0
	}
	result, err := backtest.Run(predicted, initialCash)
	if err != nil {
		return nil, fmt.Errorf("backtest %s: %w", ticker, err)
	}
	annotated := backtest.Annotate(predicted, initialCash)
	if err := uc.csv.WriteTable(filepath.Join(runDir, "backtest.csv"), annotated); err != nil {
		return nil, fmt.Errorf("run %s: %w", ticker, err)
	}
	return result, nil
}

func (uc *PipelineUseCase) recordStage(stage, ticker string, start time.Time) {
	if uc.metrics != nil {
		uc.metrics.RecordStage(stage, ticker, time.Since(start).Seconds())
	}
}

func (uc *PipelineUseCase) recordError(kind string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(kind)
	}
}

func (uc *PipelineUseCase) recordRows(stage string, rows int) {
	if uc.metrics != nil {
		uc.metrics.RecordRowsProcessed(stage, rows)
	}
}
