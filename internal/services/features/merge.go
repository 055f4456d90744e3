package features

import "StockCast/internal/domain/models"

// MergeFundamentals broadcasts every defined field of a single
// point-in-time snapshot over all rows of a technical feature table and
// returns a new table. Categorical fields are encoded through the fixed
// lookup tables in encode.go, so the result is fully numeric apart from
// ticker and date. A field absent from the snapshot is simply not added
// as a column: consumers detect feature availability by column presence,
// never by sentinel values. A nil or empty snapshot is a valid, common
// case and yields the technical table unchanged (still a copy).
func MergeFundamentals(t *models.FeatureTable, snap *models.FundamentalSnapshot) *models.FeatureTable {
	out := t.Clone()
	if snap.IsEmpty() {
		return out
	}
	names, vals := snap.RatioFields()
	for _, name := range names {
		// broadcast: constant across the ticker's whole table
		_ = out.SetConstColumn(name, vals[name])
	}
	if snap.MarketCapCategory != "" {
		_ = out.SetConstColumn(models.ColMarketCapEncoded, float64(EncodeMarketCapCategory(snap.MarketCapCategory)))
	}
	if snap.SectorCode != "" {
		_ = out.SetConstColumn(models.ColSectorCodeEncoded, float64(EncodeSectorCode(snap.SectorCode)))
	}
	return out
}
