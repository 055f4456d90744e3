package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"StockCast/internal/repository"
	"StockCast/internal/services/backtest"
)

// backtest replays a prediction CSV as a long/flat strategy, writes the
// annotated equity-curve CSV, and prints the summary metrics as JSON.
//
//	backtest --initial_cash 10000 AAPL predictions.csv backtest.csv
func main() {
	initialCash := flag.Float64("initial_cash", 1.0, "starting cash for the equity curve")
	flag.Parse()

	if flag.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "usage: backtest [flags] TICKER PREDICTIONS.csv OUT.csv")
		os.Exit(2)
	}
	ticker, in, out := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	store := repository.NewCSVStore()
	table, err := store.ReadTable(in, ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backtest %s: read %s: %v\n", ticker, in, err)
		os.Exit(1)
	}

	result, err := backtest.Run(table, *initialCash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backtest %s: %v\n", ticker, err)
		os.Exit(1)
	}
	if err := store.WriteTable(out, backtest.Annotate(table, *initialCash)); err != nil {
		fmt.Fprintf(os.Stderr, "backtest %s: write %s: %v\n", ticker, out, err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "backtest %s: encode result: %v\n", ticker, err)
		os.Exit(1)
	}
}
