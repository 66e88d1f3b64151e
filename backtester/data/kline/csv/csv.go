package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/candlelab/backtester/backtester/data/kline"
	"github.com/candlelab/backtester/log"
)

var (
	errMissingColumn = errors.New("missing required column")
	errEmptyFile     = errors.New("no header row")
)

var timestampHeaders = []string{"timestamp", "time", "date", "datetime"}

type columns struct {
	timestamp, open, high, low, close, volume int
}

// LoadFromFile reads candle rows from a CSV file with a header row
func LoadFromFile(file string) (out []kline.Candle, err error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil {
			log.Errorln(log.Loader, cErr)
		}
	}()
	out, err = Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	log.Infof(log.Loader, "loaded %d candles from %s", len(out), file)
	return out, nil
}

// Load parses candle rows from r. Header names are matched case
// insensitively. Rows with an unparsable timestamp or price are skipped
func Load(r io.Reader) ([]kline.Candle, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyFile
		}
		return nil, err
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var (
		out     []kline.Candle
		skipped int
		line    = 1
	)
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line++
				skipped++
				log.Debugf(log.Loader, "skipping line %d: %v", line, err)
				continue
			}
			return nil, err
		}
		line++
		c, err := kline.ParseRow(cols.row(record))
		if err != nil {
			skipped++
			log.Debugf(log.Loader, "skipping line %d: %v", line, err)
			continue
		}
		out = append(out, c)
	}
	if skipped > 0 {
		log.Warnf(log.Loader, "skipped %d malformed rows", skipped)
	}
	return out, nil
}

func mapColumns(header []string) (*columns, error) {
	cols := &columns{-1, -1, -1, -1, -1, -1}
	for i := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
		switch name {
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.close = i
		case "volume":
			cols.volume = i
		default:
			for _, h := range timestampHeaders {
				if name == h && cols.timestamp == -1 {
					cols.timestamp = i
				}
			}
		}
	}
	for name, idx := range map[string]int{
		"timestamp": cols.timestamp,
		"open":      cols.open,
		"high":      cols.high,
		"low":       cols.low,
		"close":     cols.close,
	} {
		if idx == -1 {
			return nil, fmt.Errorf("%w %q", errMissingColumn, name)
		}
	}
	return cols, nil
}

func (c *columns) row(record []string) *kline.Row {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return record[i]
	}
	return &kline.Row{
		Timestamp: field(c.timestamp),
		Open:      field(c.open),
		High:      field(c.high),
		Low:       field(c.low),
		Close:     field(c.close),
		Volume:    field(c.volume),
	}
}
