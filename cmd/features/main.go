package main

import (
	"flag"
	"fmt"
	"os"

	"StockCast/internal/domain/models"
	"StockCast/internal/repository"
	"StockCast/internal/services/features"
)

// features derives the technical + fundamental feature table from a
// price CSV and writes the processed CSV used for training.
//
//	features --forward_days 5 --ratios ratios.csv AAPL prices.csv features.csv
func main() {
	smaWindow := flag.Int("sma_window", 14, "SMA window")
	rsiWindow := flag.Int("rsi_window", 14, "RSI window")
	emaWindow := flag.Int("ema_window", 14, "EMA window")
	forwardDays := flag.Int("forward_days", 5, "forward-return horizon in rows")
	ratios := flag.String("ratios", "", "optional fundamentals snapshot CSV")
	flag.Parse()

	if flag.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "usage: features [flags] TICKER PRICES.csv OUT.csv")
		os.Exit(2)
	}
	ticker, in, out := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	store := repository.NewCSVStore()
	bars, err := store.ReadBars(in, ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "features %s: read %s: %v\n", ticker, in, err)
		os.Exit(1)
	}

	table := features.AddIndicators(models.FromBars(ticker, bars), features.IndicatorConfig{
		SMAWindow: *smaWindow,
		RSIWindow: *rsiWindow,
		EMAWindow: *emaWindow,
	})

	if *ratios != "" {
		snap, err := store.ReadSnapshot(*ratios)
		if err != nil {
			fmt.Fprintf(os.Stderr, "features %s: read %s: %v\n", ticker, *ratios, err)
			os.Exit(1)
		}
		table = features.MergeFundamentals(table, snap)
	}

	table = features.AddTargetReturn(table, *forwardDays)
	if err := store.WriteTable(out, table); err != nil {
		fmt.Fprintf(os.Stderr, "features %s: write %s: %v\n", ticker, out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d rows x %d columns for %s to %s\n",
		table.NumRows(), len(table.Columns), ticker, out)
}
