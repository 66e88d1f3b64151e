package holdforever

import (
	"context"

	"github.com/candlelab/backtester/backtester/eventhandlers/strategies/base"
)

const (
	// Name is the strategy name
	Name        = "hold-forever"
	description = `Never trades. Useful as a baseline, the final capital always equals the initial capital`
)

// Strategy is an implementation of the Handler interface
type Strategy struct {
	base.Strategy
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// OnSignal always holds
func (s *Strategy) OnSignal(_ context.Context, c *base.Context) (base.Signal, error) {
	if c == nil {
		return base.Signal{}, base.ErrNilContext
	}
	return base.Signal{Action: base.Hold}, nil
}
