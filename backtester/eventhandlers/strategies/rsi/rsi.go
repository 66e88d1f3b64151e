package rsi

import (
	"context"
	"fmt"

	"github.com/candlelab/backtester/backtester/data/kline"
	"github.com/candlelab/backtester/backtester/eventhandlers/strategies/base"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"
)

const (
	// Name is the strategy name
	Name            = "rsi"
	rsiPeriodKey    = "rsi-period"
	rsiLowKey       = "rsi-low"
	rsiHighKey      = "rsi-high"
	rsiTimeframeKey = "rsi-timeframe"
	positionSizeKey = "size"
	description     = `The relative strength index is a technical indicator used in the analysis of financial markets. It is intended to chart the current and historical strength or weakness of a stock or market based on the closing prices of a recent trading period`
)

// Strategy is an implementation of the Handler interface
type Strategy struct {
	base.Strategy
	rsiPeriod decimal.Decimal
	rsiLow    decimal.Decimal
	rsiHigh   decimal.Decimal
	size      decimal.Decimal
	timeframe string
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
// be it definition of terms or to highlight its purpose
func (s *Strategy) Description() string {
	return description
}

// OnSignal returns a buy signal when rsi is at or below the low level and a
// sell signal when it is at or above the high level. With a timeframe set,
// rsi is calculated against that timeframe's aggregated closes
func (s *Strategy) OnSignal(_ context.Context, c *base.Context) (base.Signal, error) {
	if c == nil {
		return base.Signal{}, base.ErrNilContext
	}
	candles := c.Candles
	if s.timeframe != "" {
		var ok bool
		candles, ok = c.Timeframes[s.timeframe]
		if !ok {
			return base.Signal{}, fmt.Errorf("%w timeframe %q is not part of the dataset", base.ErrInvalidCustomSettings, s.timeframe)
		}
	}
	period := int(s.rsiPeriod.IntPart())
	if len(candles) <= period {
		return base.Signal{Action: base.Hold, Meta: "Not enough data for signal generation"}, nil
	}

	rsi := indicators.RSI(kline.Closes(candles), period)
	if len(rsi) == 0 {
		return base.Signal{Action: base.Hold, Meta: "Not enough data for signal generation"}, nil
	}
	latestRSIValue := decimal.NewFromFloat(rsi[len(rsi)-1])

	sig := base.Signal{
		Action: base.Hold,
		Size:   s.size.InexactFloat64(),
		Meta:   fmt.Sprintf("RSI at %v", latestRSIValue.Round(2)),
	}
	switch {
	case latestRSIValue.GreaterThanOrEqual(s.rsiHigh):
		sig.Action = base.Sell
	case latestRSIValue.LessThanOrEqual(s.rsiLow):
		sig.Action = base.Buy
	}
	return sig, nil
}

// SetCustomSettings allows a user to modify the RSI limits in their config
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		switch k {
		case rsiHighKey:
			rsiHigh, ok := toFloat(v)
			if !ok || rsiHigh <= 0 {
				return fmt.Errorf("%w provided rsi-high value could not be parsed: %v", base.ErrInvalidCustomSettings, v)
			}
			s.rsiHigh = decimal.NewFromFloat(rsiHigh)
		case rsiLowKey:
			rsiLow, ok := toFloat(v)
			if !ok || rsiLow <= 0 {
				return fmt.Errorf("%w provided rsi-low value could not be parsed: %v", base.ErrInvalidCustomSettings, v)
			}
			s.rsiLow = decimal.NewFromFloat(rsiLow)
		case rsiPeriodKey:
			rsiPeriod, ok := toFloat(v)
			if !ok || rsiPeriod <= 0 {
				return fmt.Errorf("%w provided rsi-period value could not be parsed: %v", base.ErrInvalidCustomSettings, v)
			}
			s.rsiPeriod = decimal.NewFromFloat(rsiPeriod)
		case positionSizeKey:
			size, ok := toFloat(v)
			if !ok || size <= 0 {
				return fmt.Errorf("%w provided size value could not be parsed: %v", base.ErrInvalidCustomSettings, v)
			}
			s.size = decimal.NewFromFloat(size)
		case rsiTimeframeKey:
			tf, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w provided rsi-timeframe value could not be parsed: %v", base.ErrInvalidCustomSettings, v)
			}
			if _, err := kline.ParseInterval(tf); err != nil {
				return fmt.Errorf("%w %w", base.ErrInvalidCustomSettings, err)
			}
			s.timeframe = tf
		default:
			return fmt.Errorf("%w unrecognised custom setting key %v with value %v. Cannot apply", base.ErrInvalidCustomSettings, k, v)
		}
	}
	if s.rsiLow.GreaterThanOrEqual(s.rsiHigh) {
		return fmt.Errorf("%w rsi-low %v must be below rsi-high %v", base.ErrInvalidCustomSettings, s.rsiLow, s.rsiHigh)
	}
	return nil
}

// SetDefaults sets the custom settings to their default values
func (s *Strategy) SetDefaults() {
	s.rsiHigh = decimal.NewFromInt(70)
	s.rsiLow = decimal.NewFromInt(30)
	s.rsiPeriod = decimal.NewFromInt(14)
	s.size = decimal.NewFromInt(1)
	s.timeframe = ""
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
