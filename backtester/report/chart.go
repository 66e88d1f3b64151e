package report

import (
	"fmt"

	"github.com/candlelab/backtester/backtester/eventhandlers/portfolio"
	"github.com/candlelab/backtester/backtester/eventhandlers/statistics"
	"github.com/candlelab/backtester/common"
	"github.com/shopspring/decimal"
)

// createEquityChart used for creating a chart in the HTML report
// to show how the account value moved over time
func createEquityChart(items []statistics.EquityPoint) (*Chart, error) {
	if items == nil {
		return nil, fmt.Errorf("%w missing equity series", common.ErrNilPointer)
	}
	plots := make([]LinePlot, len(items))
	for i := range items {
		plots[i] = LinePlot{
			Value:     items[i].Equity,
			UnixMilli: items[i].Time.UnixMilli(),
		}
	}
	return &Chart{
		AxisType: "linear",
		Data:     []ChartLine{{Name: "Equity", LinePlots: plots}},
	}, nil
}

// createPnLChart shows per trade and cumulative realised P&L at each exit
func createPnLChart(trades []portfolio.Trade) (*Chart, error) {
	if trades == nil {
		return nil, fmt.Errorf("%w missing trades", common.ErrNilPointer)
	}
	realised := ChartLine{Name: "Realised P&L", LinePlots: make([]LinePlot, len(trades))}
	cumulative := ChartLine{Name: "Cumulative P&L", LinePlots: make([]LinePlot, len(trades))}
	running := decimal.Zero
	for i := range trades {
		running = running.Add(decimal.NewFromFloat(trades[i].PnL))
		exit := trades[i].ExitTime.UnixMilli()
		realised.LinePlots[i] = LinePlot{Value: trades[i].PnL, UnixMilli: exit}
		cumulative.LinePlots[i] = LinePlot{Value: running.InexactFloat64(), UnixMilli: exit}
	}
	return &Chart{
		AxisType: "linear",
		Data:     []ChartLine{realised, cumulative},
	}, nil
}
