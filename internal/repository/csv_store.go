package repository

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/pkg/util"
)

// dateHeader is the first column of every table CSV.
const dateHeader = "Date"

// snapshotNumericColumns fixes the ratios-CSV header order regardless of
// which fields a particular ticker's snapshot defines.
var snapshotNumericColumns = []string{
	models.ColPERatio, models.ColPBRatio, models.ColDebtToEquity,
	models.ColCurrentRatio, models.ColROE, models.ColROA,
	models.ColRevenueGrowthYoY, models.ColEarningsGrowthYoY,
	models.ColMarketCap, models.ColEnterpriseValue,
}

// CSVStore reads and writes the tabular files exchanged between pipeline
// stages: price, feature, prediction, and fundamental-ratio CSVs. Files
// are written whole, never appended. On read, numeric cells that fail to
// parse become undefined (NaN) rather than errors; only a missing or
// unparsable date is fatal, since row identity depends on it.
type CSVStore struct{}

// NewCSVStore returns a stateless CSV store.
func NewCSVStore() *CSVStore { return &CSVStore{} }

// WriteTable writes a feature table: header {Date, columns...}, one row
// per date, undefined cells rendered as empty strings. Parent directories
// are created.
func (s *CSVStore) WriteTable(path string, t *models.FeatureTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{dateHeader}, t.Columns...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(header))
	for i := 0; i < t.NumRows(); i++ {
		row[0] = util.FormatDate(t.Dates[i])
		for j, col := range t.Columns {
			row[j+1] = formatCell(t.Data[col][i])
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// ReadTable reads a table CSV back into a feature table. Column order
// follows the header. Cells that do not parse as numbers (including
// empty cells) load as NaN.
func (s *CSVStore) ReadTable(path, ticker string) (*models.FeatureTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, models.ErrMalformedInput)
	}
	header := records[0]
	if len(header) == 0 || header[0] != dateHeader {
		return nil, fmt.Errorf("%s: missing %s column: %w", path, dateHeader, models.ErrMalformedInput)
	}
	body := records[1:]

	dates := make([]time.Time, len(body))
	for i, rec := range body {
		d, ok := util.ParseTime(rec[0])
		if !ok {
			return nil, fmt.Errorf("%s row %d: bad date %q: %w", path, i+1, rec[0], models.ErrMalformedInput)
		}
		dates[i] = d
	}

	t := models.NewFeatureTable(ticker, dates)
	for j := 1; j < len(header); j++ {
		vals := make([]float64, len(body))
		for i, rec := range body {
			vals[i] = parseCell(rec, j)
		}
		if err := t.AddColumn(header[j], vals); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return t, nil
}

// ReadBars reads a price CSV into a bar series. The file must carry the
// OHLCV columns; an empty body maps to models.ErrNoData.
func (s *CSVStore) ReadBars(path, ticker string) ([]models.PriceBar, error) {
	t, err := s.ReadTable(path, ticker)
	if err != nil {
		return nil, err
	}
	for _, col := range models.PriceColumns {
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("%s: missing %s column: %w", path, col, models.ErrMalformedInput)
		}
	}
	if t.NumRows() == 0 {
		return nil, fmt.Errorf("%s: %w", path, models.ErrNoData)
	}
	bars := make([]models.PriceBar, t.NumRows())
	for i := range bars {
		bars[i] = models.PriceBar{
			Date:   t.Dates[i],
			Open:   t.Data[models.ColOpen][i],
			High:   t.Data[models.ColHigh][i],
			Low:    t.Data[models.ColLow][i],
			Close:  t.Data[models.ColClose][i],
			Volume: t.Data[models.ColVolume][i],
		}
	}
	return bars, nil
}

// WriteBars writes a bar series as a price CSV.
func (s *CSVStore) WriteBars(path, ticker string, bars []models.PriceBar) error {
	return s.WriteTable(path, models.FromBars(ticker, bars))
}

// WriteSnapshot writes the single-row fundamental ratios CSV: ticker and
// date first, then every defined snapshot field under its canonical
// column name. Undefined fields are written as empty cells so the header
// stays stable across tickers.
func (s *CSVStore) WriteSnapshot(path string, snap *models.FundamentalSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	_, vals := snap.RatioFields()
	header := []string{"ticker", "date"}
	row := []string{snap.Ticker, util.FormatDate(snap.Date)}
	for _, name := range snapshotNumericColumns {
		header = append(header, name)
		if v, ok := vals[name]; ok {
			row = append(row, formatCell(v))
		} else {
			row = append(row, "")
		}
	}
	header = append(header, "sector", "industry", "sector_classified", "sector_code", "market_cap_category")
	row = append(row, snap.Sector, snap.Industry, snap.SectorClassified, snap.SectorCode, snap.MarketCapCategory)

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// ReadSnapshot reads the ratios CSV written by WriteSnapshot. Numeric
// cells that fail coercion load as undefined fields, not errors.
func (s *CSVStore) ReadSnapshot(path string) (*models.FundamentalSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: %w", path, models.ErrNoData)
	}
	header, row := records[0], records[1]

	cell := func(name string) (string, bool) {
		for j, h := range header {
			if h == name && j < len(row) {
				return row[j], true
			}
		}
		return "", false
	}
	num := func(name string) *float64 {
		raw, ok := cell(name)
		if !ok || raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		return &v
	}
	str := func(name string) string {
		raw, _ := cell(name)
		return raw
	}

	snap := &models.FundamentalSnapshot{
		Ticker:            str("ticker"),
		PERatio:           num(models.ColPERatio),
		PBRatio:           num(models.ColPBRatio),
		DebtToEquity:      num(models.ColDebtToEquity),
		CurrentRatio:      num(models.ColCurrentRatio),
		ROE:               num(models.ColROE),
		ROA:               num(models.ColROA),
		RevenueGrowthYoY:  num(models.ColRevenueGrowthYoY),
		EarningsGrowthYoY: num(models.ColEarningsGrowthYoY),
		MarketCap:         num(models.ColMarketCap),
		EnterpriseValue:   num(models.ColEnterpriseValue),
		Sector:            str("sector"),
		Industry:          str("industry"),
		SectorClassified:  str("sector_classified"),
		SectorCode:        str("sector_code"),
		MarketCapCategory: str("market_cap_category"),
	}
	if d, ok := util.ParseTime(str("date")); ok {
		snap.Date = d
	}
	return snap, nil
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseCell(rec []string, j int) float64 {
	if j >= len(rec) || rec[j] == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(rec[j], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
