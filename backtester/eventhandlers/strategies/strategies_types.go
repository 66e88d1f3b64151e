package strategies

import (
	"context"
	"errors"

	"github.com/candlelab/backtester/backtester/eventhandlers/strategies/base"
)

var (
	// ErrStrategyFailed wraps any error, panic or timeout raised by a
	// strategy during a single step
	ErrStrategyFailed = errors.New("strategy call failed")

	errStrategyAlreadyExists = errors.New("strategy already exists")
	errNilStrategy           = errors.New("nil strategy")
)

// Handler defines all functions required to run strategies against data events
type Handler interface {
	Name() string
	Description() string
	OnSignal(context.Context, *base.Context) (base.Signal, error)
	SetCustomSettings(map[string]any) error
	SetDefaults()
}
