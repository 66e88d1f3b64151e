package kline

import (
	"errors"
	"regexp"
	"time"
)

var (
	// ErrInvalidTimeframe is returned when a timeframe label cannot be
	// mapped to a bucket duration
	ErrInvalidTimeframe = errors.New("invalid timeframe")
	// ErrNoData is returned when no valid candle data remains to run against
	ErrNoData = errors.New("no valid candle data")

	errInvalidPrice     = errors.New("price is not a finite number")
	errInvalidTimestamp = errors.New("invalid timestamp")

	timeframeRegex = regexp.MustCompile(`^(\d+)(m|h|d)$`)
)

// Candle holds one OHLCV bar for a fixed time bucket
type Candle struct {
	Time   time.Time `json:"timestamp"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Row is a raw, unvalidated tabular candle row
type Row struct {
	Timestamp string
	Open      string
	High      string
	Low       string
	Close     string
	Volume    string
}

// Interval type for kline Interval usage
type Interval time.Duration

// Dataset maps a timeframe label to its time ascending aggregated candles
type Dataset map[string][]Candle
