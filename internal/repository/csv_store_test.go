package repository

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

func TestWriteReadTableRoundTrip(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	in := models.NewFeatureTable("AAPL", dates)
	in.MustAddColumn(models.ColClose, []float64{100.5, 101.25})
	in.MustAddColumn(models.ColSMA, []float64{math.NaN(), 100.875})

	store := NewCSVStore()
	path := filepath.Join(t.TempDir(), "out", "features.csv")
	if err := store.WriteTable(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := store.ReadTable(path, "AAPL")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.NumRows() != 2 || len(out.Columns) != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", out.NumRows(), len(out.Columns))
	}
	if !math.IsNaN(out.Column(models.ColSMA)[0]) {
		t.Fatalf("undefined cell must survive the round trip as NaN")
	}
	if out.Column(models.ColClose)[1] != 101.25 {
		t.Fatalf("close[1] = %v, want 101.25", out.Column(models.ColClose)[1])
	}
	if !out.Dates[0].Equal(dates[0]) {
		t.Fatalf("dates lost: %v", out.Dates)
	}
}

func TestReadTableCoercionFailureBecomesNaN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	data := "Date,Open,High,Low,Close,Volume\n2024-01-02,1,2,0.5,not-a-number,100\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := NewCSVStore().ReadTable(path, "X")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !math.IsNaN(out.Column(models.ColClose)[0]) {
		t.Fatalf("unparsable numeric cell must load as NaN")
	}
	if out.Column(models.ColVolume)[0] != 100 {
		t.Fatalf("neighboring cells must still parse")
	}
}

func TestReadTableBadDateIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	data := "Date,Close\nnot-a-date,100\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewCSVStore().ReadTable(path, "X"); !errors.Is(err, models.ErrMalformedInput) {
		t.Fatalf("err = %v, want ErrMalformedInput", err)
	}
}

func TestReadBarsEmptyBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	data := "Date,Open,High,Low,Close,Volume\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewCSVStore().ReadBars(path, "X"); !errors.Is(err, models.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestWriteReadBarsRoundTrip(t *testing.T) {
	bars := []models.PriceBar{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: 200},
	}
	store := NewCSVStore()
	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := store.WriteBars(path, "AAPL", bars); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := store.ReadBars(path, "AAPL")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[1].Close != 2.5 || !got[0].Date.Equal(bars[0].Date) {
		t.Fatalf("bars lost in round trip: %+v", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	pe := 21.5
	snap := &models.FundamentalSnapshot{
		Ticker:            "AAPL",
		Date:              time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		PERatio:           &pe,
		Sector:            "Technology",
		SectorClassified:  "Technology",
		SectorCode:        "TEC",
		MarketCapCategory: "Large",
	}
	store := NewCSVStore()
	path := filepath.Join(t.TempDir(), "ratios.csv")
	if err := store.WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := store.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Ticker != "AAPL" || got.PERatio == nil || *got.PERatio != 21.5 {
		t.Fatalf("snapshot lost in round trip: %+v", got)
	}
	if got.PBRatio != nil {
		t.Fatalf("undefined field became defined on read")
	}
	if got.SectorCode != "TEC" || got.MarketCapCategory != "Large" {
		t.Fatalf("classification fields lost: %+v", got)
	}
}
