package statistics

import (
	"errors"
	"time"
)

const roundTo2 = 2

var errInvalidProfitFactor = errors.New("invalid profit factor")

// EquityPoint is a snapshot of cash plus unrealised profit at one step
type EquityPoint struct {
	Time   time.Time `json:"timestamp"`
	Equity float64   `json:"equity"`
}

// ProfitFactor is gross profit divided by gross loss. It is unbounded when
// there is profit and no loss, and is serialised as "Infinity" in that case
type ProfitFactor float64

// Metrics is the summary report of one run. Monetary and percentage values
// are rounded to two decimal places
type Metrics struct {
	TotalTrades        int          `json:"totalTrades"`
	Wins               int          `json:"wins"`
	Losses             int          `json:"losses"`
	WinRate            float64      `json:"winRate"`
	Accuracy           float64      `json:"accuracy"`
	NetPnL             float64      `json:"netPnL"`
	ROI                float64      `json:"roi"`
	AverageWin         float64      `json:"averageWin"`
	AverageLoss        float64      `json:"averageLoss"`
	Expectancy         float64      `json:"expectancy"`
	MaxDrawdown        float64      `json:"maxDrawdown"`
	MaxDrawdownPercent float64      `json:"maxDrawdownPercent"`
	ProfitFactor       ProfitFactor `json:"profitFactor"`
	SharpeRatio        float64      `json:"sharpeRatio"`
	GrossProfit        float64      `json:"grossProfit"`
	GrossLoss          float64      `json:"grossLoss"`
	LargestWin         float64      `json:"largestWin"`
	LargestLoss        float64      `json:"largestLoss"`
}
