package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"StockCast/internal/repository"
	"StockCast/internal/services/features"
	"StockCast/internal/services/model"
)

// predict scores a feature CSV with a saved model artifact, labels the
// predictions, and writes the prediction CSV.
//
//	predict --threshold 0.01 AAPL features.csv model.json predictions.csv
func main() {
	threshold := flag.Float64("threshold", 0.0, "buy threshold on predicted return")
	flag.Parse()

	if flag.NArg() != 4 {
		fmt.Fprintln(os.Stderr, "usage: predict [flags] TICKER FEATURES.csv MODEL.json OUT.csv")
		os.Exit(2)
	}
	ticker, in, modelPath, out := flag.Arg(0), flag.Arg(1), flag.Arg(2), flag.Arg(3)

	store := repository.NewCSVStore()
	table, err := store.ReadTable(in, ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "predict %s: read %s: %v\n", ticker, in, err)
		os.Exit(1)
	}
	artifact, err := model.LoadArtifact(modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "predict %s: load %s: %v\n", ticker, modelPath, err)
		os.Exit(1)
	}

	predicted, missing, err := model.Predict(artifact, table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "predict %s: model wants [%s]: %v\n",
			ticker, strings.Join(artifact.Features, " "), err)
		os.Exit(1)
	}
	if len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "predict %s: scoring without [%s]\n",
			ticker, strings.Join(missing, " "))
	}

	predicted = features.ApplyLabel(predicted, *threshold)
	if err := store.WriteTable(out, predicted); err != nil {
		fmt.Fprintf(os.Stderr, "predict %s: write %s: %v\n", ticker, out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d predictions for %s to %s\n", predicted.NumRows(), ticker, out)
}
