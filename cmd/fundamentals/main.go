package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"StockCast/internal/repository"
	"StockCast/internal/service/marketdata"
	"StockCast/internal/services/fundamentals"
	xhttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
)

// fundamentals fetches company ratios for one ticker and writes a
// one-row snapshot CSV.
//
//	fundamentals AAPL ratios.csv
func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: fundamentals [flags] TICKER OUT.csv")
		os.Exit(2)
	}
	ticker, out := flag.Arg(0), flag.Arg(1)

	apiKey := os.Getenv("FINNHUB_API_KEY")
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "fundamentals %s: FINNHUB_API_KEY is not set\n", ticker)
		os.Exit(2)
	}

	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fundamentals %s: logger: %v\n", ticker, err)
		os.Exit(1)
	}
	client := marketdata.NewClient(xhttp.NewClient(xhttp.WithTimeout(*timeout)), l, "", apiKey)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	raw, err := client.FetchFundamentals(ctx, ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fundamentals %s: %v\n", ticker, err)
		os.Exit(1)
	}

	snap := fundamentals.Shape(ticker, raw, time.Now().UTC())
	if err := repository.NewCSVStore().WriteSnapshot(out, snap); err != nil {
		fmt.Fprintf(os.Stderr, "fundamentals %s: write %s: %v\n", ticker, out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s snapshot (%s, %s cap) to %s\n",
		ticker, snap.SectorCode, snap.MarketCapCategory, out)
}
