package models

import "errors"

// Error taxonomy for pipeline stages. no-data means an upstream fetch
// returned nothing for the requested ticker/range and must never be
// reported as an empty success. malformed-input is fatal for the stage
// that hit it. Missing model features are reported but not fatal.
var (
	ErrNoData         = errors.New("no data for requested ticker/date range")
	ErrMalformedInput = errors.New("malformed input")
	ErrNoFeatures     = errors.New("no model features available in input")
)
