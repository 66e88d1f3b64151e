package data

import "errors"

// Format is the on-disk encoding of a candle file
type Format string

// Supported candle file formats
const (
	CSV     Format = "csv"
	Parquet Format = "parquet"
)

var (
	// ErrUnsupportedFormat is returned for file formats with no loader
	ErrUnsupportedFormat = errors.New("unsupported candle file format")

	errNoPaths = errors.New("no candle files supplied")
)
