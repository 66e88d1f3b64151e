package holdforever

import (
	"context"
	"testing"

	"github.com/candlelab/backtester/backtester/eventhandlers/strategies/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	assert.Equal(t, Name, s.Name())
	assert.NotEmpty(t, s.Description())
}

func TestOnSignal(t *testing.T) {
	t.Parallel()
	s := Strategy{}
	_, err := s.OnSignal(context.Background(), nil)
	assert.ErrorIs(t, err, base.ErrNilContext)

	sig, err := s.OnSignal(context.Background(), &base.Context{})
	require.NoError(t, err)
	assert.Equal(t, base.Hold, sig.Action)
}
