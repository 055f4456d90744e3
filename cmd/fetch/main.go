package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"StockCast/internal/repository"
	"StockCast/internal/service/marketdata"
	xhttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// fetch downloads daily bars for one ticker and writes them as a price CSV.
//
//	fetch --start 2023-01-01 --end 2023-12-31 AAPL prices.csv
func main() {
	start := flag.String("start", "", "range start (YYYY-MM-DD)")
	end := flag.String("end", "", "range end (YYYY-MM-DD)")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: fetch [flags] TICKER OUT.csv")
		os.Exit(2)
	}
	ticker, out := flag.Arg(0), flag.Arg(1)

	from, ok := util.ParseTime(*start)
	if !ok {
		fmt.Fprintf(os.Stderr, "fetch %s: bad --start %q\n", ticker, *start)
		os.Exit(2)
	}
	to, ok := util.ParseTime(*end)
	if !ok {
		fmt.Fprintf(os.Stderr, "fetch %s: bad --end %q\n", ticker, *end)
		os.Exit(2)
	}

	apiKey := os.Getenv("FINNHUB_API_KEY")
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "fetch %s: FINNHUB_API_KEY is not set\n", ticker)
		os.Exit(2)
	}

	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch %s: logger: %v\n", ticker, err)
		os.Exit(1)
	}
	client := marketdata.NewClient(xhttp.NewClient(xhttp.WithTimeout(*timeout)), l, "", apiKey)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	bars, err := client.FetchDailyBars(ctx, ticker, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch %s %s..%s: %v\n", ticker, *start, *end, err)
		os.Exit(1)
	}

	if err := repository.NewCSVStore().WriteBars(out, ticker, bars); err != nil {
		fmt.Fprintf(os.Stderr, "fetch %s: write %s: %v\n", ticker, out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d bars for %s to %s\n", len(bars), ticker, out)
}
