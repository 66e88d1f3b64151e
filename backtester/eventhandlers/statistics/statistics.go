package statistics

import (
	"fmt"
	"math"
	"strconv"

	"github.com/candlelab/backtester/backtester/eventhandlers/portfolio"
	gctmath "github.com/candlelab/backtester/common/math"
	"github.com/candlelab/backtester/log"
)

// ComputeMetrics derives the run report from the closed trades and the
// equity series. Zero trades produce an all zero report
func ComputeMetrics(trades []portfolio.Trade, equity []EquityPoint, initialCapital float64) Metrics {
	if len(trades) == 0 {
		return Metrics{}
	}
	var (
		m         Metrics
		sumWins   float64
		sumLosses float64
	)
	m.TotalTrades = len(trades)
	for i := range trades {
		pnl := trades[i].PnL
		m.NetPnL += pnl
		switch {
		case pnl > 0:
			m.Wins++
			sumWins += pnl
			m.LargestWin = math.Max(m.LargestWin, pnl)
		case pnl < 0:
			m.Losses++
			sumLosses += -pnl
			m.LargestLoss = math.Max(m.LargestLoss, -pnl)
		}
	}
	winRate := float64(m.Wins) / float64(m.TotalTrades) * 100
	if m.Wins > 0 {
		m.AverageWin = sumWins / float64(m.Wins)
	}
	if m.Losses > 0 {
		m.AverageLoss = sumLosses / float64(m.Losses)
	}
	m.Expectancy = winRate/100*m.AverageWin - (1-winRate/100)*m.AverageLoss
	m.ROI = gctmath.CalculatePercentageGainOrLoss(initialCapital+m.NetPnL, initialCapital)
	m.GrossProfit = sumWins
	m.GrossLoss = sumLosses
	switch {
	case sumLosses > 0:
		m.ProfitFactor = ProfitFactor(sumWins / sumLosses)
	case sumWins > 0:
		m.ProfitFactor = ProfitFactor(math.Inf(1))
	}

	values := make([]float64, len(equity))
	for i := range equity {
		values[i] = equity[i].Equity
	}
	m.MaxDrawdown, m.MaxDrawdownPercent = gctmath.MaxDrawdown(values)
	m.SharpeRatio = gctmath.CalculateAnnualisedSharpeRatio(gctmath.SimpleReturns(values), gctmath.TradingDaysPerYear)

	m.WinRate = gctmath.RoundFloat(winRate, roundTo2)
	m.Accuracy = m.WinRate
	m.NetPnL = gctmath.RoundFloat(m.NetPnL, roundTo2)
	m.ROI = gctmath.RoundFloat(m.ROI, roundTo2)
	m.AverageWin = gctmath.RoundFloat(m.AverageWin, roundTo2)
	m.AverageLoss = gctmath.RoundFloat(m.AverageLoss, roundTo2)
	m.Expectancy = gctmath.RoundFloat(m.Expectancy, roundTo2)
	m.MaxDrawdown = gctmath.RoundFloat(m.MaxDrawdown, roundTo2)
	m.MaxDrawdownPercent = gctmath.RoundFloat(m.MaxDrawdownPercent, roundTo2)
	m.ProfitFactor = ProfitFactor(gctmath.RoundFloat(float64(m.ProfitFactor), roundTo2))
	m.SharpeRatio = gctmath.RoundFloat(m.SharpeRatio, roundTo2)
	m.GrossProfit = gctmath.RoundFloat(m.GrossProfit, roundTo2)
	m.GrossLoss = gctmath.RoundFloat(m.GrossLoss, roundTo2)
	m.LargestWin = gctmath.RoundFloat(m.LargestWin, roundTo2)
	m.LargestLoss = gctmath.RoundFloat(m.LargestLoss, roundTo2)
	return m
}

// PrintResults outputs the metrics to the command line
func (m *Metrics) PrintResults() {
	sep := "------------------Results----------------------------"
	log.Info(log.BackTester, sep)
	log.Infof(log.BackTester, "Total trades: %d", m.TotalTrades)
	log.Infof(log.BackTester, "Wins: %d Losses: %d", m.Wins, m.Losses)
	log.Infof(log.BackTester, "Win rate: %v%%", m.WinRate)
	log.Infof(log.BackTester, "Net P&L: $%v", m.NetPnL)
	log.Infof(log.BackTester, "ROI: %v%%", m.ROI)
	log.Infof(log.BackTester, "Average win: $%v Average loss: $%v", m.AverageWin, m.AverageLoss)
	log.Infof(log.BackTester, "Largest win: $%v Largest loss: $%v", m.LargestWin, m.LargestLoss)
	log.Infof(log.BackTester, "Expectancy: $%v", m.Expectancy)
	log.Infof(log.BackTester, "Profit factor: %v", m.ProfitFactor)
	log.Infof(log.BackTester, "Max drawdown: $%v (%v%%)", m.MaxDrawdown, m.MaxDrawdownPercent)
	log.Infof(log.BackTester, "Sharpe ratio: %v", m.SharpeRatio)
}

// IsUnbounded returns whether there was profit and no loss
func (p ProfitFactor) IsUnbounded() bool {
	return math.IsInf(float64(p), 1)
}

// String implements fmt.Stringer
func (p ProfitFactor) String() string {
	if p.IsUnbounded() {
		return "Infinity"
	}
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}

// MarshalJSON writes unbounded profit factors as the string "Infinity"
func (p ProfitFactor) MarshalJSON() ([]byte, error) {
	if p.IsUnbounded() {
		return []byte(`"Infinity"`), nil
	}
	return []byte(strconv.FormatFloat(float64(p), 'f', -1, 64)), nil
}

// UnmarshalJSON reads profit factors written by MarshalJSON
func (p *ProfitFactor) UnmarshalJSON(data []byte) error {
	if string(data) == `"Infinity"` {
		*p = ProfitFactor(math.Inf(1))
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || f < 0 || math.IsNaN(f) {
		return fmt.Errorf("%w: %s", errInvalidProfitFactor, data)
	}
	*p = ProfitFactor(f)
	return nil
}
