package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"StockCast/internal/domain/models"
	pkgch "StockCast/pkg/clickhouse"
	applogger "StockCast/pkg/logger"
)

const predictionsTable = "stockcast.predictions"

var predictionsSchema = []string{
	`CREATE DATABASE IF NOT EXISTS stockcast`,
	`CREATE TABLE IF NOT EXISTS ` + predictionsTable + ` (
        run_id           String,
        ticker           LowCardinality(String),
        date             Date,
        predicted_return Float64,
        predicted_label  Float64,
        actual_return    Float64
    ) ENGINE = ReplacingMergeTree
    ORDER BY (ticker, date, run_id)`,
}

// CHPredictionStore implements PredictionStore backed by ClickHouse,
// keeping scored rows queryable across runs. Undefined values are stored
// as NaN, which ClickHouse Float64 round-trips.
type CHPredictionStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewCHPredictionStore(ch *pkgch.Client) *CHPredictionStore {
	return &CHPredictionStore{ch: ch, db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHPredictionStore) SetLogger(l *applogger.Logger) { s.l = l }

// Init ensures the database and prediction table exist. Idempotent.
func (s *CHPredictionStore) Init(ctx context.Context) error {
	for _, stmt := range predictionsSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init prediction schema: %w", err)
		}
	}
	return nil
}

// StorePredictions writes the scored rows of a prediction table in one
// batch. Rows without a defined prediction are skipped.
func (s *CHPredictionStore) StorePredictions(ctx context.Context, runID string, t *models.FeatureTable) error {
	preds := t.Column(models.ColPredictedReturn)
	labels := t.Column(models.ColPredictedLabel)
	actuals := t.Column(models.ColTargetReturn)
	if preds == nil {
		return fmt.Errorf("store predictions %s: %w", t.Ticker, models.ErrMalformedInput)
	}

	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+predictionsTable+` (run_id, ticker, date, predicted_return, predicted_label, actual_return) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	stored := 0
	for i := range t.Dates {
		if math.IsNaN(preds[i]) {
			continue
		}
		label, actual := math.NaN(), math.NaN()
		if labels != nil {
			label = labels[i]
		}
		if actuals != nil {
			actual = actuals[i]
		}
		if _, err := stmt.ExecContext(ctx, runID, t.Ticker, t.Dates[i], preds[i], label, actual); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert prediction %s %s: %w", t.Ticker, t.Dates[i].Format("2006-01-02"), err)
		}
		stored++
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit predictions: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse store_predictions ok",
			applogger.String("run_id", runID),
			applogger.String("ticker", t.Ticker),
			applogger.Int("rows", stored),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

// LatestPredictions returns the newest limit rows for a ticker, date
// ascending. An empty result maps to models.ErrNoData.
func (s *CHPredictionStore) LatestPredictions(ctx context.Context, ticker string, limit int) ([]models.PredictionRow, error) {
	start := time.Now()
	const q = `
        SELECT run_id, ticker, date, predicted_return, predicted_label, actual_return
        FROM ` + predictionsTable + ` FINAL
        WHERE ticker = ?
        ORDER BY date DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, ticker, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_predictions query error",
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("latest predictions: %w", err)
	}
	defer rows.Close()

	out := make([]models.PredictionRow, 0, limit)
	for rows.Next() {
		var p models.PredictionRow
		if err := rows.Scan(&p.RunID, &p.Ticker, &p.Date, &p.PredictedReturn, &p.PredictedLabel, &p.ActualReturn); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("predictions %s: %w", ticker, models.ErrNoData)
	}
	// reverse to ASC
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse latest_predictions ok",
			applogger.String("ticker", ticker),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}
