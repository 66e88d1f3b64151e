package parquet

import (
	"fmt"
	"time"

	"github.com/candlelab/backtester/backtester/data/kline"
	"github.com/candlelab/backtester/common/file"
	"github.com/candlelab/backtester/log"
	"github.com/parquet-go/parquet-go"
)

// CandleRecord is the on-disk row layout of a candle parquet file
type CandleRecord struct {
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// LoadFromFile reads every record of a candle parquet file, skipping
// records with a missing timestamp or non finite price
func LoadFromFile(path string) ([]kline.Candle, error) {
	rows, err := parquet.ReadFile[CandleRecord](path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make([]kline.Candle, 0, len(rows))
	var skipped int
	for i := range rows {
		if rows[i].Timestamp == 0 {
			skipped++
			continue
		}
		c := kline.Candle{
			Time:   time.UnixMilli(rows[i].Timestamp).UTC(),
			Open:   rows[i].Open,
			High:   rows[i].High,
			Low:    rows[i].Low,
			Close:  rows[i].Close,
			Volume: rows[i].Volume,
		}
		if err := c.Validate(); err != nil {
			skipped++
			log.Debugf(log.Loader, "skipping record %d: %v", i, err)
			continue
		}
		out = append(out, c)
	}
	if skipped > 0 {
		log.Warnf(log.Loader, "skipped %d malformed records", skipped)
	}
	log.Infof(log.Loader, "loaded %d candles from %s", len(out), path)
	return out, nil
}

// WriteFile stores candles as a parquet file, creating parent directories
// and truncating any existing file
func WriteFile(path string, candles []kline.Candle) error {
	records := make([]CandleRecord, len(candles))
	for i := range candles {
		records[i] = CandleRecord{
			Timestamp: candles[i].Time.UnixMilli(),
			Open:      candles[i].Open,
			High:      candles[i].High,
			Low:       candles[i].Low,
			Close:     candles[i].Close,
			Volume:    candles[i].Volume,
		}
	}
	w, err := file.Writer(path)
	if err != nil {
		return err
	}
	err = parquet.Write(w, records)
	if cErr := w.Close(); err == nil {
		err = cErr
	}
	return err
}
