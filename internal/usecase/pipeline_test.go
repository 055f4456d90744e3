package usecase

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	domservice "StockCast/internal/domain/service"
	"StockCast/internal/repository"
	applogger "StockCast/pkg/logger"
)

type fakePriceSource struct {
	bars []models.PriceBar
	err  error
}

func (f *fakePriceSource) FetchDailyBars(_ context.Context, _ string, _, _ time.Time) ([]models.PriceBar, error) {
	return f.bars, f.err
}

type fakeFundamentalsSource struct {
	raw *domservice.RawFundamentals
	err error
}

func (f *fakeFundamentalsSource) FetchFundamentals(_ context.Context, _ string) (*domservice.RawFundamentals, error) {
	return f.raw, f.err
}

type capturingPublisher struct {
	events []any
}

func (p *capturingPublisher) PublishRun(_ context.Context, event any) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func syntheticBars(n int) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < n; i++ {
		// Gentle drift with a deterministic wobble so targets vary.
		price *= 1 + 0.001 + 0.01*math.Sin(float64(i)/7)
		bars[i] = models.PriceBar{
			Date: day.AddDate(0, 0, i), Open: price, High: price * 1.01,
			Low: price * 0.99, Close: price, Volume: 1e6 + float64(i%50)*1e4,
		}
	}
	return bars
}

func testRequest() models.RunPipelineRequest {
	return models.RunPipelineRequest{
		Ticker:      "AAPL",
		Start:       "2024-01-02",
		End:         "2024-12-31",
		Threshold:   0.0,
		ForwardDays: 5,
		SMAWindow:   3,
		RSIWindow:   3,
		EMAWindow:   3,
	}
}

func newTestPipeline(t *testing.T, prices domservice.PriceSource, funds domservice.FundamentalsSource) (*PipelineUseCase, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := PipelineConfig{
		SaveDir:     dir,
		ModelPath:   filepath.Join(dir, "models", "model.json"),
		InitialCash: 1.0,
		TestSize:    0.2,
	}
	return NewPipelineUseCase(cfg, prices, funds, repository.NewCSVStore(), testLogger(t)), dir
}

func TestRunEndToEnd(t *testing.T) {
	pe := 20.0
	funds := &fakeFundamentalsSource{raw: &domservice.RawFundamentals{
		Info:   map[string]float64{"trailingPE": pe, "marketCap": 50e9},
		Sector: "Technology",
	}}
	uc, _ := newTestPipeline(t, &fakePriceSource{bars: syntheticBars(200)}, funds)
	pub := &capturingPublisher{}
	uc.WithPublisher(pub)

	res, err := uc.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Retrained {
		t.Fatalf("first run must train a model")
	}
	if res.Backtest == nil || res.Backtest.Rows == 0 {
		t.Fatalf("backtest missing from result: %+v", res)
	}
	if len(pub.events) != 1 {
		t.Fatalf("run event not published")
	}
	for _, name := range []string{"prices.csv", "ratios.csv", "features.csv", "predictions.csv", "backtest.csv"} {
		if _, err := os.Stat(filepath.Join(res.RunDir, name)); err != nil {
			t.Fatalf("stage output %s missing: %v", name, err)
		}
	}
}

func TestRunIsolatesWorkingDirectories(t *testing.T) {
	uc, _ := newTestPipeline(t, &fakePriceSource{bars: syntheticBars(150)}, &fakeFundamentalsSource{})
	a, err := uc.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("run a: %v", err)
	}
	b, err := uc.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("run b: %v", err)
	}
	if a.RunDir == b.RunDir {
		t.Fatalf("runs share a working directory: %s", a.RunDir)
	}
}

func TestRunReusesFreshModel(t *testing.T) {
	uc, _ := newTestPipeline(t, &fakePriceSource{bars: syntheticBars(150)}, &fakeFundamentalsSource{})
	first, err := uc.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !first.Retrained {
		t.Fatalf("first run must train")
	}
	second, err := uc.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if second.Retrained {
		t.Fatalf("second run must reuse the fresh artifact")
	}
}

func TestRunForcedRetrain(t *testing.T) {
	uc, _ := newTestPipeline(t, &fakePriceSource{bars: syntheticBars(150)}, &fakeFundamentalsSource{})
	if _, err := uc.Run(context.Background(), testRequest()); err != nil {
		t.Fatalf("run: %v", err)
	}
	req := testRequest()
	req.Retrain = true
	res, err := uc.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Retrained {
		t.Fatalf("retrain request ignored")
	}
}

func TestRunFundamentalsFailureDegrades(t *testing.T) {
	funds := &fakeFundamentalsSource{err: errors.New("provider down")}
	uc, _ := newTestPipeline(t, &fakePriceSource{bars: syntheticBars(150)}, funds)
	res, err := uc.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("fundamentals failure must not abort the run: %v", err)
	}
	for _, f := range res.Features {
		if f == models.ColPERatio {
			t.Fatalf("fundamental feature present despite failed source")
		}
	}
}

func TestRunMonthlySlicesByCalendarMonth(t *testing.T) {
	uc, _ := newTestPipeline(t, &fakePriceSource{bars: syntheticBars(200)}, &fakeFundamentalsSource{})
	req := testRequest()
	req.Start, req.End = "2024-01-02", "2024-03-15"
	results, err := uc.RunMonthly(context.Background(), req)
	if err != nil {
		t.Fatalf("monthly run: %v", err)
	}
	// Jan 31, Feb 29, and the requested end make three slices.
	if len(results) != 3 {
		t.Fatalf("slices = %d, want 3", len(results))
	}
	for i, res := range results {
		if !res.Retrained {
			t.Fatalf("slice %d did not retrain", i)
		}
	}
}

func TestRunPriceFetchFailureAborts(t *testing.T) {
	prices := &fakePriceSource{err: models.ErrNoData}
	uc, _ := newTestPipeline(t, prices, &fakeFundamentalsSource{})
	if _, err := uc.Run(context.Background(), testRequest()); !errors.Is(err, models.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestRunRejectsBadDates(t *testing.T) {
	uc, _ := newTestPipeline(t, &fakePriceSource{bars: syntheticBars(10)}, &fakeFundamentalsSource{})
	req := testRequest()
	req.Start, req.End = "2024-12-31", "2024-01-02"
	if _, err := uc.Run(context.Background(), req); !errors.Is(err, models.ErrMalformedInput) {
		t.Fatalf("err = %v, want ErrMalformedInput", err)
	}
}
