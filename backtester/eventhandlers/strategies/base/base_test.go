package base

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/candlelab/backtester/backtester/data/kline"
	"github.com/stretchr/testify/assert"
)

func TestParseAction(t *testing.T) {
	t.Parallel()
	for in, expected := range map[any]Action{
		"buy":     Buy,
		" Sell ":  Sell,
		"HOLD":    Hold,
		"short":   Hold,
		"":        Hold,
		5:         Hold,
		nil:       Hold,
		"BUY":     Buy,
		"sElL":    Sell,
		"buy now": Hold,
	} {
		assert.Equal(t, expected, ParseAction(in), "%v", in)
	}
}

func TestNormalise(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Buy, Signal{Action: "buy"}.Normalise().Action)
	assert.Equal(t, Hold, Signal{}.Normalise().Action)
}

func TestOrderSize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultSize, Signal{}.OrderSize())
	assert.Equal(t, DefaultSize, Signal{Size: -2}.OrderSize())
	assert.Equal(t, DefaultSize, Signal{Size: math.NaN()}.OrderSize())
	assert.Equal(t, 2.5, Signal{Size: 2.5}.OrderSize())
}

func TestSignalFromMap(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Signal{Action: Hold}, SignalFromMap(nil))

	s := SignalFromMap(map[string]any{"action": "buy", "size": int64(3), "meta": "why"})
	assert.Equal(t, Buy, s.Action)
	assert.Equal(t, 3.0, s.Size)
	assert.Equal(t, "why", s.Meta)

	s = SignalFromMap(map[string]any{"signal": "SELL", "size": json.Number("0.5")})
	assert.Equal(t, Sell, s.Action)
	assert.Equal(t, 0.5, s.Size)

	s = SignalFromMap(map[string]any{"action": "hold", "signal": "buy"})
	assert.Equal(t, Hold, s.Action, "action takes precedence over signal")

	s = SignalFromMap(map[string]any{"size": "big"})
	assert.Equal(t, Hold, s.Action)
	assert.Zero(t, s.Size)
}

func TestSetCustomSettings(t *testing.T) {
	t.Parallel()
	s := &Strategy{}
	s.SetDefaults()
	assert.NoError(t, s.SetCustomSettings(nil))
	assert.ErrorIs(t, s.SetCustomSettings(map[string]any{"a": 1}), ErrCustomSettingsUnsupported)
}

func TestContextCloses(t *testing.T) {
	t.Parallel()
	var c *Context
	assert.Nil(t, c.Closes())
	c = &Context{Candles: []kline.Candle{{Close: 1}, {Close: 2}}}
	assert.Equal(t, []float64{1, 2}, c.Closes())
}
