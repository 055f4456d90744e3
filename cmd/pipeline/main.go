package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/repository"
	"StockCast/internal/service/marketdata"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
)

// pipeline runs the full forecasting pipeline for one ticker without the
// server: fetch, fundamentals, features, train, predict, backtest. The
// run summary is printed as JSON; stage CSVs land under --save_dir.
//
//	pipeline --start 2023-01-01 --end 2023-12-31 --save_dir ./data AAPL
func main() {
	start := flag.String("start", "", "range start (YYYY-MM-DD)")
	end := flag.String("end", "", "range end (YYYY-MM-DD)")
	threshold := flag.Float64("threshold", 0.0, "buy threshold on predicted return")
	smaWindow := flag.Int("sma_window", 14, "SMA window")
	rsiWindow := flag.Int("rsi_window", 14, "RSI window")
	emaWindow := flag.Int("ema_window", 14, "EMA window")
	forwardDays := flag.Int("forward_days", 5, "forward-return horizon in rows")
	saveDir := flag.String("save_dir", "data", "directory for run outputs")
	modelPath := flag.String("model_path", "", "model artifact path (default SAVE_DIR/models/model.json)")
	testSize := flag.Float64("test_size", 0.2, "held-out fraction for the time-ordered split")
	initialCash := flag.Float64("initial_cash", 1.0, "starting cash for the backtest")
	retrain := flag.Bool("retrain", false, "force retraining even when the stored model is fresh")
	monthly := flag.Bool("monthly", false, "replay once per calendar month of the range, retraining each slice")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall run timeout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pipeline [flags] TICKER")
		os.Exit(2)
	}
	ticker := flag.Arg(0)

	apiKey := os.Getenv("FINNHUB_API_KEY")
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "pipeline %s: FINNHUB_API_KEY is not set\n", ticker)
		os.Exit(2)
	}

	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline %s: logger: %v\n", ticker, err)
		os.Exit(1)
	}
	client := marketdata.NewClient(xhttp.NewClient(xhttp.WithTimeout(30*time.Second)), l, "", apiKey)

	if *modelPath == "" {
		*modelPath = filepath.Join(*saveDir, "models", "model.json")
	}
	uc := usecase.NewPipelineUseCase(usecase.PipelineConfig{
		SaveDir:     *saveDir,
		ModelPath:   *modelPath,
		InitialCash: *initialCash,
		TestSize:    *testSize,
	}, client, client, repository.NewCSVStore(), l)

	req := models.RunPipelineRequest{
		Ticker:      ticker,
		Start:       *start,
		End:         *end,
		Threshold:   *threshold,
		ForwardDays: *forwardDays,
		SMAWindow:   *smaWindow,
		RSIWindow:   *rsiWindow,
		EMAWindow:   *emaWindow,
		Retrain:     *retrain,
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var out any
	if *monthly {
		out, err = uc.RunMonthly(ctx, req)
	} else {
		out, err = uc.Run(ctx, req)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline %s %s..%s: %v\n", ticker, *start, *end, err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "pipeline %s: encode result: %v\n", ticker, err)
		os.Exit(1)
	}
}
