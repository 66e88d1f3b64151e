package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New(0, 0.001, 0.0005)
	assert.ErrorIs(t, err, errInvalidInitialCapital)
	_, err = New(math.NaN(), 0.001, 0.0005)
	assert.ErrorIs(t, err, errInvalidInitialCapital)
	_, err = New(1000, -0.1, 0.0005)
	assert.ErrorIs(t, err, errInvalidRate)
	_, err = New(1000, 0.001, 1)
	assert.ErrorIs(t, err, errInvalidRate)

	p, err := New(10000, 0.001, 0.0005)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, p.Capital())
	assert.Equal(t, 10000.0, p.InitialCapital())
	assert.False(t, p.HasPosition())
	assert.Empty(t, p.Trades())
}

func TestOpenCloseLong(t *testing.T) {
	t.Parallel()
	p, err := New(10000, 0.001, 0.0005)
	require.NoError(t, err)

	require.NoError(t, p.Open(Long, 101, 1, tt, 0, "why"))
	pos, ok := p.Position()
	require.True(t, ok)
	assert.Equal(t, "101.0505", pos.EntryPrice.String())
	assert.Equal(t, "101.1515505", pos.TotalCost.String())
	assert.InDelta(t, 9898.8484495, p.Capital(), 1e-9)
	assert.InDelta(t, 10000.9495, p.Equity(102), 1e-9)

	assert.ErrorIs(t, p.Open(Long, 101, 1, tt, 1, nil), ErrPositionAlreadyOpen)

	trade, err := p.Close(103.5, tt.Add(4*time.Hour), 4)
	require.NoError(t, err)
	assert.Equal(t, Long, trade.Side)
	assert.InDelta(t, 101*1.0005, trade.EntryPrice, 1e-9)
	assert.InDelta(t, 103.5*0.9995, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 2.19325125, trade.PnL, 1e-9)
	assert.InDelta(t, 2.19325125/101.1515505*100, trade.PnLPercent, 1e-9)
	assert.Equal(t, 0, trade.EntryIndex)
	assert.Equal(t, 4, trade.ExitIndex)
	assert.Equal(t, "why", trade.Meta)
	assert.InDelta(t, 10002.19325125, p.Capital(), 1e-9)
	assert.False(t, p.HasPosition())
	assert.Len(t, p.Trades(), 1)

	_, err = p.Close(100, tt, 5)
	assert.ErrorIs(t, err, ErrNoOpenPosition)
}

func TestOpenCloseShort(t *testing.T) {
	t.Parallel()
	p, err := New(10000, 0.001, 0.0005)
	require.NoError(t, err)

	require.NoError(t, p.Open(Short, 100, 1, tt, 0, nil))
	pos, ok := p.Position()
	require.True(t, ok)
	assert.Equal(t, "99.95", pos.EntryPrice.String())
	assert.InDelta(t, 10000+9.95, p.Equity(90), 1e-9, "short gains when price falls")

	trade, err := p.Close(90, tt, 1)
	require.NoError(t, err)
	assert.Equal(t, Short, trade.Side)
	assert.InDelta(t, 89.955, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 10.184905, trade.PnL, 1e-9)
	assert.InDelta(t, 10010.184905, p.Capital(), 1e-9)

	require.NoError(t, p.Open(Short, 100, 1, tt, 2, nil))
	trade, err = p.Close(110, tt, 3)
	require.NoError(t, err)
	assert.Negative(t, trade.PnL, "short loses when price rises")
}

func TestOpenInsufficientFunds(t *testing.T) {
	t.Parallel()
	p, err := New(100, 0.001, 0.0005)
	require.NoError(t, err)
	assert.ErrorIs(t, p.Open(Long, 100, 1, tt, 0, nil), ErrInsufficientFunds)
	assert.ErrorIs(t, p.Open(Short, 100.1, 1, tt, 0, nil), ErrInsufficientFunds)
	assert.Equal(t, 100.0, p.Capital(), "failed orders must not touch capital")
	assert.False(t, p.HasPosition())

	require.NoError(t, p.Open(Long, 10, 9.5, tt, 0, nil))
}

func TestOpenInvalid(t *testing.T) {
	t.Parallel()
	p, err := New(100, 0, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, p.Open(Long, 0, 1, tt, 0, nil), errInvalidPrice)
	assert.ErrorIs(t, p.Open(Long, 1, math.Inf(1), tt, 0, nil), errInvalidPrice)
	assert.ErrorIs(t, p.Open("SIDEWAYS", 1, 1, tt, 0, nil), errInvalidSide)
}

func TestUnrealisedPnL(t *testing.T) {
	t.Parallel()
	p, err := New(1000, 0, 0)
	require.NoError(t, err)
	assert.True(t, p.UnrealisedPnL(10).IsZero())
	assert.Equal(t, 1000.0, p.Equity(10))

	require.NoError(t, p.Open(Long, 10, 2, tt, 0, nil))
	assert.Equal(t, "4", p.UnrealisedPnL(12).String())
	assert.Equal(t, 1004.0, p.Equity(12))
}
