package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"StockCast/internal/repository"
	"StockCast/internal/services/model"
)

// train fits the return regressor on a feature CSV and saves the model
// artifact.
//
//	train --test_size 0.2 AAPL features.csv model.json
func main() {
	testSize := flag.Float64("test_size", 0.2, "held-out fraction for the time-ordered split")
	rounds := flag.Int("rounds", model.DefaultRounds, "boosting rounds")
	learningRate := flag.Float64("learning_rate", model.DefaultLearningRate, "boosting learning rate")
	flag.Parse()

	if flag.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "usage: train [flags] TICKER FEATURES.csv MODEL.json")
		os.Exit(2)
	}
	ticker, in, out := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	table, err := repository.NewCSVStore().ReadTable(in, ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "train %s: read %s: %v\n", ticker, in, err)
		os.Exit(1)
	}

	artifact, report, err := model.Train(table, model.TrainConfig{
		TestSize:     *testSize,
		Rounds:       *rounds,
		LearningRate: *learningRate,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "train %s: %v\n", ticker, err)
		os.Exit(1)
	}
	if err := artifact.Save(out); err != nil {
		fmt.Fprintf(os.Stderr, "train %s: save %s: %v\n", ticker, out, err)
		os.Exit(1)
	}
	fmt.Printf("trained on %d/%d rows, features [%s], train R2 %.4f, test R2 %.4f\n",
		report.RowsUsed, report.RowsTotal, strings.Join(report.Features, " "),
		report.TrainR2, report.TestR2)
}
