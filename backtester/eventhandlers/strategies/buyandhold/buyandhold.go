package buyandhold

import (
	"context"
	"fmt"

	"github.com/candlelab/backtester/backtester/eventhandlers/strategies/base"
)

const (
	// Name is the strategy name
	Name            = "buy-and-hold"
	positionSizeKey = "size"
	description     = `Buys on the first funded step and holds the position until the run ends. An entry that cannot be funded is retried on the next step`
)

// Strategy is an implementation of the Handler interface
type Strategy struct {
	base.Strategy
	size float64
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// OnSignal returns a buy signal on every step. The context carries no
// position, so the strategy relies on the engine ignoring BUY while a
// position is open. An unfunded entry is therefore retried on later steps
func (s *Strategy) OnSignal(_ context.Context, c *base.Context) (base.Signal, error) {
	if c == nil {
		return base.Signal{}, base.ErrNilContext
	}
	return base.Signal{Action: base.Buy, Size: s.size}, nil
}

// SetCustomSettings allows the position size to be set
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		switch k {
		case positionSizeKey:
			var size float64
			switch n := v.(type) {
			case float64:
				size = n
			case int:
				size = float64(n)
			}
			if size <= 0 {
				return fmt.Errorf("%w provided size value could not be parsed: %v", base.ErrInvalidCustomSettings, v)
			}
			s.size = size
		default:
			return fmt.Errorf("%w unrecognised custom setting key %v with value %v. Cannot apply", base.ErrInvalidCustomSettings, k, v)
		}
	}
	return nil
}

// SetDefaults sets the custom settings to their default values
func (s *Strategy) SetDefaults() {
	s.size = base.DefaultSize
}
