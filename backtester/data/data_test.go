package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/candlelab/backtester/backtester/data/kline"
	"github.com/candlelab/backtester/backtester/data/kline/parquet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestParseFormat(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name, format, path string
		expected           Format
		err                error
	}{
		{name: "explicit", format: "CSV", expected: CSV},
		{name: "extension", path: "x/y.parquet", expected: Parquet},
		{name: "explicit wins", format: "csv", path: "y.parquet", expected: CSV},
		{name: "unknown", path: "y.xlsx", err: ErrUnsupportedFormat},
		{name: "nothing", err: ErrUnsupportedFormat},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f, err := ParseFormat(tc.format, tc.path)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, f)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "c.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("timestamp,open,high,low,close,volume\n"+
		"2024-01-01T02:00:00Z,3,3,3,3,1\n"+
		"2024-01-01T00:00:00Z,1,1,1,1,1\n"+
		"2024-01-01T01:00:00Z,2,2,2,2,1\n"), 0o600))

	candles, err := Load(csvPath, CSV)
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, []float64{1, 2, 3}, kline.Closes(candles), "out of order rows are sorted")

	pqPath := filepath.Join(dir, "c.parquet")
	require.NoError(t, parquet.WriteFile(pqPath, candles))
	fromParquet, err := Load(pqPath, Parquet)
	require.NoError(t, err)
	assert.Equal(t, kline.Closes(candles), kline.Closes(fromParquet))

	_, err = Load(csvPath, "xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = Load(filepath.Join(dir, "missing.csv"), CSV)
	assert.Error(t, err)
}

func TestLoadDataset(t *testing.T) {
	t.Parallel()
	_, err := LoadDataset(nil, CSV)
	assert.ErrorIs(t, err, errNoPaths)
	_, err = LoadDataset(map[string]string{"1y": "x.csv"}, CSV)
	assert.ErrorIs(t, err, kline.ErrInvalidTimeframe)

	dir := t.TempDir()
	hourly := make([]kline.Candle, 4)
	for i := range hourly {
		hourly[i] = kline.Candle{Time: start.Add(time.Duration(i) * time.Hour), Open: 1, High: 1, Low: 1, Close: float64(i + 1)}
	}
	daily, err := kline.Aggregate(hourly, "1d")
	require.NoError(t, err)
	require.NoError(t, parquet.WriteFile(filepath.Join(dir, "1h.parquet"), hourly))
	require.NoError(t, parquet.WriteFile(filepath.Join(dir, "1d.parquet"), daily))

	ds, err := LoadDataset(map[string]string{
		"1h": filepath.Join(dir, "1h.parquet"),
		"1d": filepath.Join(dir, "1d.parquet"),
	}, Parquet)
	require.NoError(t, err)
	assert.Len(t, ds["1h"], 4)
	assert.Len(t, ds["1d"], 1)
	assert.False(t, Empty(ds))

	_, err = LoadDataset(map[string]string{"1h": filepath.Join(dir, "missing.parquet")}, Parquet)
	assert.Error(t, err)
}

func TestEmpty(t *testing.T) {
	t.Parallel()
	assert.True(t, Empty(nil))
	assert.True(t, Empty(kline.Dataset{"1h": nil, "4h": {}}))
	assert.False(t, Empty(kline.Dataset{"1h": {{Time: start, Close: 1}}}))
}
