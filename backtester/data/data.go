package data

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/candlelab/backtester/backtester/data/kline"
	"github.com/candlelab/backtester/backtester/data/kline/csv"
	"github.com/candlelab/backtester/backtester/data/kline/parquet"
	"github.com/candlelab/backtester/log"
)

// ParseFormat returns the format named by s. An empty s infers the format
// from the extension of path
func ParseFormat(s, path string) (Format, error) {
	if s == "" {
		s = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch f := Format(strings.ToLower(s)); f {
	case CSV, Parquet:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, s)
	}
}

// Load reads a candle file and returns its candles in ascending time order.
// An empty result is not an error here; callers decide whether to proceed
func Load(path string, format Format) ([]kline.Candle, error) {
	var (
		candles []kline.Candle
		err     error
	)
	switch format {
	case CSV:
		candles, err = csv.LoadFromFile(path)
	case Parquet:
		candles, err = parquet.LoadFromFile(path)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return SortCandles(candles), nil
}

// LoadDataset reads one pre-aggregated candle file per timeframe label
func LoadDataset(paths map[string]string, format Format) (kline.Dataset, error) {
	if len(paths) == 0 {
		return nil, errNoPaths
	}
	labels := make([]string, 0, len(paths))
	for label := range paths {
		labels = append(labels, label)
	}
	if err := kline.ValidateTimeframes(labels); err != nil {
		return nil, err
	}
	ds := make(kline.Dataset, len(paths))
	for label, path := range paths {
		candles, err := Load(path, format)
		if err != nil {
			return nil, fmt.Errorf("timeframe %s: %w", label, err)
		}
		ds[label] = candles
	}
	return ds, nil
}

// SortCandles orders candles by time in place when they are not already
// ascending. Candles sharing a timestamp keep their file order
func SortCandles(candles []kline.Candle) []kline.Candle {
	sorted := sort.SliceIsSorted(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})
	if sorted {
		return candles
	}
	log.Warnf(log.Loader, "candles were not in time order, sorting %d candles", len(candles))
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})
	return candles
}

// Empty reports whether a dataset holds no candles in any timeframe
func Empty(ds kline.Dataset) bool {
	for _, candles := range ds {
		if len(candles) > 0 {
			return false
		}
	}
	return true
}
