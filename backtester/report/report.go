package report

import (
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/candlelab/backtester/backtester/data/kline"
	"github.com/candlelab/backtester/backtester/engine"
	"github.com/candlelab/backtester/backtester/eventhandlers/portfolio"
	"github.com/candlelab/backtester/common/file"
	"github.com/candlelab/backtester/log"
)

//go:embed tpl.gohtml
var reportTemplate string

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"rfc3339": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"fixed":   func(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) },
}).Parse(reportTemplate))

// ExportTrades writes trades to a CSV file at path
func ExportTrades(trades []portfolio.Trade, path string) error {
	w, err := file.Writer(path)
	if err != nil {
		return err
	}
	err = WriteTrades(w, trades)
	if cErr := w.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		return err
	}
	log.Infof(log.Report, "Wrote %d trades to %s", len(trades), path)
	return nil
}

// WriteTrades writes a header row followed by one row per trade
func WriteTrades(w io.Writer, trades []portfolio.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeHeader); err != nil {
		return err
	}
	for i := range trades {
		if err := cw.Write(tradeRecord(&trades[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func tradeRecord(t *portfolio.Trade) []string {
	return []string{
		t.EntryTime.UTC().Format(time.RFC3339),
		t.ExitTime.UTC().Format(time.RFC3339),
		string(t.Side),
		strconv.FormatFloat(t.Size, 'f', -1, 64),
		strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
		strconv.FormatFloat(t.ExitPrice, 'f', -1, 64),
		strconv.FormatFloat(t.PnL, 'f', -1, 64),
		strconv.FormatFloat(t.PnLPercent, 'f', -1, 64),
	}
}

// WriteResult writes the full run result as indented JSON
func WriteResult(res *engine.Result, path string) error {
	if res == nil {
		return errNilResult
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if err = file.Write(path, data); err != nil {
		return err
	}
	log.Infof(log.Report, "Wrote result %v to %s", res.ID, path)
	return nil
}

// GenerateReport sends final data from a run to a template
// to create a lovely final report for someone to view
func GenerateReport(res *engine.Result, path string) error {
	d, err := NewData(res)
	if err != nil {
		return err
	}
	w, err := file.Writer(path)
	if err != nil {
		return err
	}
	err = tmpl.Execute(w, d)
	if cErr := w.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		return err
	}
	log.Infof(log.Report, "Wrote HTML report %v to %s", res.ID, path)
	return nil
}

// NewData builds the charts rendered by the HTML report
func NewData(res *engine.Result) (*Data, error) {
	if res == nil {
		return nil, errNilResult
	}
	equity, err := createEquityChart(res.Equity)
	if err != nil {
		return nil, err
	}
	pnl, err := createPnLChart(res.Trades)
	if err != nil {
		return nil, err
	}
	return &Data{
		Result:      res,
		Interval:    primaryInterval(res),
		EquityChart: equity,
		PnLChart:    pnl,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// primaryInterval labels the primary timeline. Runs over raw candles carry no
// label so the spacing of the first two steps is used instead
func primaryInterval(res *engine.Result) string {
	if res.PrimaryTimeframe != "" {
		if i, err := kline.ParseInterval(res.PrimaryTimeframe); err == nil {
			return i.Short()
		}
		return res.PrimaryTimeframe
	}
	if len(res.Equity) < 2 {
		return ""
	}
	if d := res.Equity[1].Time.Sub(res.Equity[0].Time); d > 0 {
		return kline.Interval(d).Short()
	}
	return ""
}

// Write picks the output format from the extension of path
func Write(res *engine.Result, path string) error {
	if res == nil {
		return errNilResult
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case CSVExtension:
		return ExportTrades(res.Trades, path)
	case JSONExtension:
		return WriteResult(res, path)
	case HTMLExtension:
		return GenerateReport(res, path)
	default:
		return fmt.Errorf("%w %q", errUnsupportedType, filepath.Ext(path))
	}
}
