package base

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/candlelab/backtester/backtester/data/kline"
)

// SetDefaults is a no-op for strategies without settings
func (s *Strategy) SetDefaults() {}

// SetCustomSettings rejects any settings for strategies that do not
// support them
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	if len(customSettings) > 0 {
		return ErrCustomSettingsUnsupported
	}
	return nil
}

// ParseAction converts a loosely typed action into an Action. Matching is
// case insensitive and unknown values are Hold
func ParseAction(v any) Action {
	str, ok := v.(string)
	if !ok {
		return Hold
	}
	switch a := Action(strings.ToUpper(strings.TrimSpace(str))); a {
	case Buy, Sell:
		return a
	default:
		return Hold
	}
}

// Normalise returns the signal with an upper case, recognised action
func (s Signal) Normalise() Signal {
	s.Action = ParseAction(string(s.Action))
	return s
}

// OrderSize returns the requested size, or DefaultSize when the signal size
// is missing, non-positive or not finite
func (s Signal) OrderSize() float64 {
	if s.Size <= 0 || math.IsNaN(s.Size) || math.IsInf(s.Size, 0) {
		return DefaultSize
	}
	return s.Size
}

// SignalFromMap builds a signal from a loosely typed key/value result. The
// decision may be named under "action" or "signal"
func SignalFromMap(m map[string]any) Signal {
	if m == nil {
		return Signal{Action: Hold}
	}
	raw, ok := m["action"]
	if !ok {
		raw = m["signal"]
	}
	sig := Signal{
		Action: ParseAction(raw),
		Meta:   m["meta"],
	}
	if size, err := toFloat(m["size"]); err == nil {
		sig.Size = size
	}
	return sig
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("unsupported size type %T", v)
	}
}

// Closes returns the close prices of the primary timeline prefix
func (c *Context) Closes() []float64 {
	if c == nil {
		return nil
	}
	return kline.Closes(c.Candles)
}
