package features

import (
	"math"
	"testing"

	"StockCast/internal/domain/models"
)

func fptr(v float64) *float64 { return &v }

func TestMergeFundamentalsBroadcast(t *testing.T) {
	in := barsFromCloses([]float64{100, 101, 102})
	snap := &models.FundamentalSnapshot{
		Ticker:            "TEST",
		PERatio:           fptr(21.5),
		ROE:               fptr(0.18),
		MarketCapCategory: "Large",
		SectorCode:        "TEC",
	}
	out := MergeFundamentals(in, snap)

	pe := out.Column(models.ColPERatio)
	for i, v := range pe {
		if v != 21.5 {
			t.Fatalf("pe_ratio[%d] = %v, want 21.5 on every row", i, v)
		}
	}
	if out.Column(models.ColMarketCapEncoded)[0] != 3 {
		t.Fatalf("Large must encode to 3")
	}
	if out.Column(models.ColSectorCodeEncoded)[2] != 1 {
		t.Fatalf("TEC must encode to 1")
	}
	// Fields the snapshot does not carry must stay absent, not NaN-filled.
	if out.HasColumn(models.ColPBRatio) {
		t.Fatalf("pb_ratio column present despite undefined snapshot field")
	}
}

func TestMergeFundamentalsEmptySnapshot(t *testing.T) {
	in := barsFromCloses([]float64{100, 101})
	for _, snap := range []*models.FundamentalSnapshot{nil, {}} {
		out := MergeFundamentals(in, snap)
		if len(out.Columns) != len(in.Columns) {
			t.Fatalf("empty snapshot added columns: %v", out.Columns)
		}
		if out.NumRows() != in.NumRows() {
			t.Fatalf("row count changed")
		}
	}
}

func TestMergeFundamentalsDoesNotMutateInput(t *testing.T) {
	in := barsFromCloses([]float64{100})
	snap := &models.FundamentalSnapshot{PERatio: fptr(10)}
	_ = MergeFundamentals(in, snap)
	if in.HasColumn(models.ColPERatio) {
		t.Fatalf("input table gained a fundamental column")
	}
}

func TestMergeFundamentalsNaNFieldStaysDefinedColumn(t *testing.T) {
	// A defined pointer holding NaN still broadcasts: presence of the
	// column is what signals the field was supplied.
	in := barsFromCloses([]float64{100, 101})
	snap := &models.FundamentalSnapshot{DebtToEquity: fptr(math.NaN())}
	out := MergeFundamentals(in, snap)
	if !out.HasColumn(models.ColDebtToEquity) {
		t.Fatalf("supplied field must appear as a column")
	}
}
