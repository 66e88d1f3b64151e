package statistics

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/candlelab/backtester/backtester/eventhandlers/portfolio"
	gctmath "github.com/candlelab/backtester/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trades(pnls ...float64) []portfolio.Trade {
	resp := make([]portfolio.Trade, len(pnls))
	for i := range pnls {
		resp[i] = portfolio.Trade{PnL: pnls[i], EntryIndex: i, ExitIndex: i + 1}
	}
	return resp
}

func equity(values ...float64) []EquityPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	resp := make([]EquityPoint, len(values))
	for i := range values {
		resp[i] = EquityPoint{Time: start.Add(time.Duration(i) * time.Hour), Equity: values[i]}
	}
	return resp
}

func TestComputeMetricsNoTrades(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Metrics{}, ComputeMetrics(nil, equity(100, 50, 120), 100))
}

func TestComputeMetrics(t *testing.T) {
	t.Parallel()
	eq := equity(10000, 10100, 9900, 10050, 10150)
	m := ComputeMetrics(trades(100, -50, 0, 150), eq, 10000)

	assert.Equal(t, 4, m.TotalTrades)
	assert.Equal(t, 2, m.Wins)
	assert.Equal(t, 1, m.Losses, "zero pnl counts as neither win nor loss")
	assert.Equal(t, 50.0, m.WinRate)
	assert.Equal(t, m.WinRate, m.Accuracy)
	assert.Equal(t, 200.0, m.NetPnL)
	assert.Equal(t, 2.0, m.ROI)
	assert.Equal(t, 125.0, m.AverageWin)
	assert.Equal(t, 50.0, m.AverageLoss)
	assert.Equal(t, 37.5, m.Expectancy)
	assert.Equal(t, ProfitFactor(5), m.ProfitFactor)
	assert.Equal(t, 250.0, m.GrossProfit)
	assert.Equal(t, 50.0, m.GrossLoss)
	assert.Equal(t, 150.0, m.LargestWin)
	assert.Equal(t, 50.0, m.LargestLoss)
	assert.Equal(t, 200.0, m.MaxDrawdown)
	assert.Equal(t, gctmath.RoundFloat(200.0/10100*100, 2), m.MaxDrawdownPercent)

	values := []float64{10000, 10100, 9900, 10050, 10150}
	expectedSharpe := gctmath.CalculateAnnualisedSharpeRatio(gctmath.SimpleReturns(values), 252)
	assert.Equal(t, gctmath.RoundFloat(expectedSharpe, 2), m.SharpeRatio)
	assert.NotZero(t, m.SharpeRatio)
}

func TestComputeMetricsEmptyEquity(t *testing.T) {
	t.Parallel()
	m := ComputeMetrics(trades(10), nil, 1000)
	assert.Zero(t, m.MaxDrawdown)
	assert.Zero(t, m.MaxDrawdownPercent)
	assert.Zero(t, m.SharpeRatio)
	assert.Equal(t, 100.0, m.WinRate)
}

func TestComputeMetricsIdempotent(t *testing.T) {
	t.Parallel()
	tr := trades(12.345, -3.21, 7.7)
	eq := equity(1000, 1012.35, 1009.14, 1016.84)
	assert.Equal(t, ComputeMetrics(tr, eq, 1000), ComputeMetrics(tr, eq, 1000))
}

func TestProfitFactor(t *testing.T) {
	t.Parallel()
	m := ComputeMetrics(trades(10, 20), nil, 1000)
	assert.True(t, m.ProfitFactor.IsUnbounded())
	assert.Equal(t, "Infinity", m.ProfitFactor.String())

	m = ComputeMetrics(trades(0, 0), nil, 1000)
	assert.Zero(t, float64(m.ProfitFactor))
	assert.Zero(t, m.WinRate)

	m = ComputeMetrics(trades(-10), nil, 1000)
	assert.Zero(t, float64(m.ProfitFactor))
	assert.Equal(t, -10.0, m.Expectancy)

	for _, tr := range [][]portfolio.Trade{trades(1), trades(-1), trades(1, -3), trades(0), trades(5, 0, -1)} {
		pf := ComputeMetrics(tr, nil, 100).ProfitFactor
		assert.False(t, math.IsNaN(float64(pf)))
		assert.GreaterOrEqual(t, float64(pf), 0.0)
	}
}

func TestWinRateBounds(t *testing.T) {
	t.Parallel()
	for _, tr := range [][]portfolio.Trade{trades(1), trades(-1), trades(1, -1, 0), trades(0)} {
		m := ComputeMetrics(tr, nil, 100)
		assert.GreaterOrEqual(t, m.WinRate, 0.0)
		assert.LessOrEqual(t, m.WinRate, 100.0)
		assert.Equal(t, m.WinRate, m.Accuracy)
	}
}

func TestProfitFactorJSON(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(Metrics{ProfitFactor: ProfitFactor(math.Inf(1))})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"profitFactor":"Infinity"`)

	var m Metrics
	require.NoError(t, json.Unmarshal(data, &m))
	assert.True(t, m.ProfitFactor.IsUnbounded())

	data, err = json.Marshal(ProfitFactor(1.5))
	require.NoError(t, err)
	assert.Equal(t, "1.5", string(data))

	var pf ProfitFactor
	assert.ErrorIs(t, json.Unmarshal([]byte(`-1`), &pf), errInvalidProfitFactor)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"nope"`), &pf), errInvalidProfitFactor)
}

func TestPrintResults(t *testing.T) {
	t.Parallel()
	m := ComputeMetrics(trades(1, -1), equity(100, 101, 100), 100)
	m.PrintResults()
}
