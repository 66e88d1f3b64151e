package engine

import (
	"errors"
	"time"

	"github.com/candlelab/backtester/backtester/eventhandlers/portfolio"
	"github.com/candlelab/backtester/backtester/eventhandlers/statistics"
	"github.com/gofrs/uuid"
)

// Default run settings
const (
	DefaultCommission      = 0.001
	DefaultSlippage        = 0.0005
	DefaultInitialCapital  = 10000.0
	DefaultTimeframe       = "1h"
	DefaultStrategyTimeout = time.Second
)

var (
	errNilStrategy    = errors.New("nil strategy")
	errNilEngine      = errors.New("nil engine")
	errInvalidTimeout = errors.New("strategy timeout must not be negative")
)

// Settings hold the cost model and timing parameters of a run
type Settings struct {
	Commission      float64
	Slippage        float64
	InitialCapital  float64
	Timeframes      []string
	StrategyTimeout time.Duration
}

// Engine replays a candle series against a strategy. An Engine holds no
// run state and may be shared between goroutines
type Engine struct {
	settings Settings
}

// Result is everything a single run produced
type Result struct {
	ID               uuid.UUID                `json:"id"`
	Strategy         string                   `json:"strategy"`
	PrimaryTimeframe string                   `json:"primaryTimeframe,omitempty"`
	Steps            int                      `json:"steps"`
	StrategyErrors   int                      `json:"strategyErrors"`
	Trades           []portfolio.Trade        `json:"trades"`
	Metrics          statistics.Metrics       `json:"metrics"`
	FinalCapital     float64                  `json:"finalCapital"`
	Equity           []statistics.EquityPoint `json:"equity"`
}
