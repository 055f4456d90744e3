package models

import (
	"fmt"
	"math"
	"time"
)

// FeatureTable is an in-memory columnar table: one row per trading day,
// named float64 columns with NaN marking undefined cells. Columns keep
// insertion order so CSV output is stable. A column that was never added
// is absent, which is how downstream consumers detect feature
// availability (absence, not sentinel values).
//
// Stages never mutate a table they received; each stage derives a new
// table via Clone and adds to it.
type FeatureTable struct {
	Ticker  string
	Dates   []time.Time
	Columns []string
	Data    map[string][]float64
}

// NewFeatureTable creates an empty table over the given date index.
func NewFeatureTable(ticker string, dates []time.Time) *FeatureTable {
	return &FeatureTable{
		Ticker: ticker,
		Dates:  dates,
		Data:   make(map[string][]float64),
	}
}

// FromBars builds a table holding the raw OHLCV columns of a bar series.
func FromBars(ticker string, bars []PriceBar) *FeatureTable {
	dates := make([]time.Time, len(bars))
	open := make([]float64, len(bars))
	high := make([]float64, len(bars))
	low := make([]float64, len(bars))
	cls := make([]float64, len(bars))
	vol := make([]float64, len(bars))
	for i, b := range bars {
		dates[i] = b.Date
		open[i], high[i], low[i], cls[i], vol[i] = b.Open, b.High, b.Low, b.Close, b.Volume
	}
	t := NewFeatureTable(ticker, dates)
	t.MustAddColumn(ColOpen, open)
	t.MustAddColumn(ColHigh, high)
	t.MustAddColumn(ColLow, low)
	t.MustAddColumn(ColClose, cls)
	t.MustAddColumn(ColVolume, vol)
	return t
}

// NumRows returns the number of rows (dates) in the table.
func (t *FeatureTable) NumRows() int { return len(t.Dates) }

// HasColumn reports whether the named column is present.
func (t *FeatureTable) HasColumn(name string) bool {
	_, ok := t.Data[name]
	return ok
}

// Column returns the named column values, or nil if absent.
func (t *FeatureTable) Column(name string) []float64 {
	return t.Data[name]
}

// AddColumn appends a new column. Length must match the row count and the
// name must not already exist (the derivation chain is append-only).
func (t *FeatureTable) AddColumn(name string, values []float64) error {
	if len(values) != len(t.Dates) {
		return fmt.Errorf("column %s: %d values for %d rows", name, len(values), len(t.Dates))
	}
	if t.HasColumn(name) {
		return fmt.Errorf("column %s already exists", name)
	}
	t.Columns = append(t.Columns, name)
	t.Data[name] = values
	return nil
}

// MustAddColumn is AddColumn for columns built in the same function as the
// table, where a mismatch is a programming error.
func (t *FeatureTable) MustAddColumn(name string, values []float64) {
	if err := t.AddColumn(name, values); err != nil {
		panic(err)
	}
}

// SetConstColumn adds a column holding the same value in every row.
func (t *FeatureTable) SetConstColumn(name string, value float64) error {
	vals := make([]float64, t.NumRows())
	for i := range vals {
		vals[i] = value
	}
	return t.AddColumn(name, vals)
}

// Clone returns a deep copy sharing nothing with the receiver.
func (t *FeatureTable) Clone() *FeatureTable {
	out := &FeatureTable{
		Ticker:  t.Ticker,
		Dates:   append([]time.Time(nil), t.Dates...),
		Columns: append([]string(nil), t.Columns...),
		Data:    make(map[string][]float64, len(t.Data)),
	}
	for name, vals := range t.Data {
		out.Data[name] = append([]float64(nil), vals...)
	}
	return out
}

// DefinedCount returns how many cells of the named column are defined
// (non-NaN). Absent columns count as zero.
func (t *FeatureTable) DefinedCount(name string) int {
	n := 0
	for _, v := range t.Data[name] {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// DropUndefinedRows returns a new table keeping only rows where every one
// of the given columns is defined. Columns absent from the table are
// ignored, matching the original training behavior.
func (t *FeatureTable) DropUndefinedRows(cols []string) *FeatureTable {
	present := make([]string, 0, len(cols))
	for _, c := range cols {
		if t.HasColumn(c) {
			present = append(present, c)
		}
	}
	keep := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		ok := true
		for _, c := range present {
			if math.IsNaN(t.Data[c][i]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}
	out := NewFeatureTable(t.Ticker, selectIndices(t.Dates, keep))
	for _, name := range t.Columns {
		src := t.Data[name]
		vals := make([]float64, len(keep))
		for j, i := range keep {
			vals[j] = src[i]
		}
		out.MustAddColumn(name, vals)
	}
	return out
}

// SliceRows returns a new table holding rows [from, to).
func (t *FeatureTable) SliceRows(from, to int) *FeatureTable {
	if from < 0 {
		from = 0
	}
	if to > t.NumRows() {
		to = t.NumRows()
	}
	out := NewFeatureTable(t.Ticker, append([]time.Time(nil), t.Dates[from:to]...))
	for _, name := range t.Columns {
		out.MustAddColumn(name, append([]float64(nil), t.Data[name][from:to]...))
	}
	return out
}

func selectIndices(dates []time.Time, idx []int) []time.Time {
	out := make([]time.Time, len(idx))
	for j, i := range idx {
		out[j] = dates[i]
	}
	return out
}
