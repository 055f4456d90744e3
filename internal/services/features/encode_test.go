package features

import "testing"

func TestEncodeMarketCapCategory(t *testing.T) {
	cases := map[string]int{
		"Large":   3,
		"Mid":     2,
		"Small":   1,
		"Unknown": 0,
		"Mega":    0, // not in the table
		"":        0,
	}
	for in, want := range cases {
		if got := EncodeMarketCapCategory(in); got != want {
			t.Fatalf("EncodeMarketCapCategory(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestEncodeSectorCode(t *testing.T) {
	cases := map[string]int{
		"TEC": 1,
		"HEA": 2,
		"FIN": 3,
		"UTI": 11,
		"UNK": 0,
		"XYZ": 0,
		"":    0,
	}
	for in, want := range cases {
		if got := EncodeSectorCode(in); got != want {
			t.Fatalf("EncodeSectorCode(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestSectorCodesAreDistinct(t *testing.T) {
	seen := map[int]string{}
	for name, code := range sectorCodes {
		if code == 0 && name != "UNK" {
			t.Fatalf("sector %s maps to the UNK code", name)
		}
		if prev, ok := seen[code]; ok {
			t.Fatalf("sectors %s and %s share code %d", prev, name, code)
		}
		seen[code] = name
	}
}
