package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	pkgch "StockCast/pkg/clickhouse"
	applogger "StockCast/pkg/logger"
)

const barsTable = "stockcast.daily_bars"

var barsSchema = []string{
	`CREATE DATABASE IF NOT EXISTS stockcast`,
	`CREATE TABLE IF NOT EXISTS ` + barsTable + ` (
        ticker LowCardinality(String),
        date   Date,
        open   Float64,
        high   Float64,
        low    Float64,
        close  Float64,
        volume Float64
    ) ENGINE = ReplacingMergeTree
    ORDER BY (ticker, date)`,
}

// CHBarStore implements BarStore backed by ClickHouse. Re-fetching a
// range upserts: the ReplacingMergeTree keeps one row per (ticker, date).
type CHBarStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client) *CHBarStore {
	return &CHBarStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

// Init ensures the database and bar table exist. Idempotent.
func (s *CHBarStore) Init(ctx context.Context) error {
	for _, stmt := range barsSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init bar schema: %w", err)
		}
	}
	return nil
}

// StoreBars writes a fetched bar series in one batch.
func (s *CHBarStore) StoreBars(ctx context.Context, ticker string, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+barsTable+` (ticker, date, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, ticker, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert bar %s %s: %w", ticker, b.Date.Format("2006-01-02"), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bars: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse store_bars ok",
			applogger.String("ticker", ticker),
			applogger.Int("rows", len(bars)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

// GetBars reads the stored series for [from, to], date ascending. An
// empty result maps to models.ErrNoData so callers can fall back to the
// remote source.
func (s *CHBarStore) GetBars(ctx context.Context, ticker string, from, to time.Time) ([]models.PriceBar, error) {
	start := time.Now()
	const q = `
        SELECT date, open, high, low, close, volume
        FROM ` + barsTable + ` FINAL
        WHERE ticker = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
    `
	rows, err := s.db.QueryContext(ctx, q, ticker, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_bars query error",
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.PriceBar, 0, 1024)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_bars scan error",
					applogger.String("ticker", ticker),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("bars %s %s..%s: %w",
			ticker, from.Format("2006-01-02"), to.Format("2006-01-02"), models.ErrNoData)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_bars ok",
			applogger.String("ticker", ticker),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// Health pings the pool.
func (s *CHBarStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pooled client owns the connection lifecycle.
// Close is a no-op; the shared ClickHouse client is owned by the app.
func (s *CHBarStore) Close() error { return nil }
