package buyandhold

import (
	"context"
	"testing"

	"github.com/candlelab/backtester/backtester/eventhandlers/strategies/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCustomSettings(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	s.SetDefaults()
	assert.Equal(t, base.DefaultSize, s.size)
	require.NoError(t, s.SetCustomSettings(map[string]any{positionSizeKey: 3}))
	assert.Equal(t, 3.0, s.size)
	assert.ErrorIs(t, s.SetCustomSettings(map[string]any{positionSizeKey: "3"}), base.ErrInvalidCustomSettings)
	assert.ErrorIs(t, s.SetCustomSettings(map[string]any{"lol": 1.0}), base.ErrInvalidCustomSettings)
}

func TestOnSignal(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	s.SetDefaults()
	_, err := s.OnSignal(context.Background(), nil)
	assert.ErrorIs(t, err, base.ErrNilContext)

	c := &base.Context{State: base.State{}}
	for i := 0; i < 3; i++ {
		c.Index = i
		sig, err := s.OnSignal(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, base.Buy, sig.Action, "an entry that was not funded must be retried")
		assert.Equal(t, base.DefaultSize, sig.Size)
	}
	assert.Empty(t, c.State)
}
