package features

// Versioned categorical lookup tables. These are fixed enumerations, not
// learned encodings: changing a code is a breaking change for any stored
// model artifact, so additions get new codes and existing codes are never
// reassigned.

// EncodingVersion identifies the lookup tables below.
const EncodingVersion = 1

// marketCapCodes maps market-cap tiers to small integer codes.
var marketCapCodes = map[string]int{
	"Large":   3,
	"Mid":     2,
	"Small":   1,
	"Unknown": 0,
}

// sectorCodes maps three-letter sector codes to small integer codes.
var sectorCodes = map[string]int{
	"TEC": 1,  // Technology
	"HEA": 2,  // Healthcare
	"FIN": 3,  // Financial
	"CON": 4,  // Consumer Discretionary
	"STA": 5,  // Consumer Staples
	"COM": 6,  // Communication Services
	"IND": 7,  // Industrials
	"ENE": 8,  // Energy
	"MAT": 9,  // Materials
	"REA": 10, // Real Estate
	"UTI": 11, // Utilities
	"UNK": 0,  // Unknown
}

// EncodeMarketCapCategory maps a tier name to its code; unrecognized
// tiers encode as Unknown.
func EncodeMarketCapCategory(category string) int {
	if code, ok := marketCapCodes[category]; ok {
		return code
	}
	return marketCapCodes["Unknown"]
}

// EncodeSectorCode maps a three-letter sector code to its integer code;
// unrecognized codes encode as UNK.
func EncodeSectorCode(sector string) int {
	if code, ok := sectorCodes[sector]; ok {
		return code
	}
	return sectorCodes["UNK"]
}
