package base

import (
	"errors"

	"github.com/candlelab/backtester/backtester/data/kline"
)

var (
	// ErrCustomSettingsUnsupported used when custom settings are found in the config when they shouldn't be
	ErrCustomSettingsUnsupported = errors.New("custom settings not supported")
	// ErrStrategyNotFound used when strategy specified in the config does not exist
	ErrStrategyNotFound = errors.New("not found. Please ensure the strategy field 'name' is spelled properly in your config")
	// ErrInvalidCustomSettings used when bad custom settings are found in the config
	ErrInvalidCustomSettings = errors.New("invalid custom settings in config")
	// ErrNilContext used when a strategy is invoked without a context
	ErrNilContext = errors.New("nil strategy context")
)

// Action is the decision a strategy makes for a single step
type Action string

// Supported actions. Anything else is treated as Hold
const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// DefaultSize is used when a signal does not carry a positive size
const DefaultSize = 1.0

// Signal is a strategy's per-step decision
type Signal struct {
	Action Action  `json:"action"`
	Size   float64 `json:"size,omitempty"`
	Meta   any     `json:"meta,omitempty"`
}

// State is the run scoped key/value bag owned by the strategy. The same
// instance is handed to every step of one run
type State map[string]any

// Context is the read view handed to a strategy at one step
type Context struct {
	// Candles is the primary timeline prefix [0..Index]
	Candles []kline.Candle
	Index   int
	Candle  kline.Candle
	Params  map[string]any
	State   State
	// Timeframes holds, per label, the aggregated candles whose bucket
	// end is at or before the current primary timestamp
	Timeframes map[string][]kline.Candle
}

// Strategy is base implementation of the Handler interface
type Strategy struct{}
