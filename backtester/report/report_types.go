package report

import (
	"errors"
	"time"

	"github.com/candlelab/backtester/backtester/engine"
)

// Output extensions
const (
	CSVExtension  = ".csv"
	JSONExtension = ".json"
	HTMLExtension = ".html"
)

var (
	errNilResult       = errors.New("nil result")
	errUnsupportedType = errors.New("unsupported report extension")
)

var tradeHeader = []string{"entry time", "exit time", "side", "size", "entry price", "exit price", "P&L", "P&L%"}

// Data holds everything the HTML report template renders
type Data struct {
	Result *engine.Result
	// Interval is the primary candle spacing, eg 1h
	Interval    string
	EquityChart *Chart
	PnLChart    *Chart
	GeneratedAt time.Time
}

// Chart holds chart data along with an axis
type Chart struct {
	AxisType string      `json:"axisType"`
	Data     []ChartLine `json:"data"`
}

// ChartLine holds chart plot data
// to render charts in the report
type ChartLine struct {
	Name      string     `json:"name"`
	LinePlots []LinePlot `json:"linePlots"`
}

// LinePlot holds value data
// for a chart
type LinePlot struct {
	Value     float64 `json:"value"`
	UnixMilli int64   `json:"unixMilli"`
}
