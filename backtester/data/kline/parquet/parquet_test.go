package parquet

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/candlelab/backtester/backtester/data/kline"
	"github.com/candlelab/backtester/common/file"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadCandles(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := []kline.Candle{
		{Time: start, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Time: start.Add(time.Hour), Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: 20},
	}
	path := filepath.Join(t.TempDir(), "nested", "candles.parquet")
	require.NoError(t, WriteFile(path, candles))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, start.Equal(got[0].Time))
	assert.Equal(t, candles[1].High, got[1].High)
	assert.Equal(t, candles[1].Volume, got[1].Volume)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Zero(t, info.Mode().Perm()&^os.FileMode(file.DefaultDirPermissions), "parent directories use the shared permissions")
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Mode().Perm()&^os.FileMode(file.DefaultFilePermissions), "files are written with the shared permissions")

	require.NoError(t, WriteFile(path, candles[:1]))
	got, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 1, "an existing file is truncated")

	assert.Error(t, WriteFile("", candles))
}

func TestLoadSkipsBadRecords(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.parquet")
	require.NoError(t, parquet.WriteFile(path, []CandleRecord{
		{Timestamp: 0, Open: 1, High: 1, Low: 1, Close: 1},
		{Timestamp: 1709251200000, Open: math.NaN(), High: 1, Low: 1, Close: 1},
		{Timestamp: 1709254800000, Open: 1, High: 1, Low: 1, Close: 1},
	}))
	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.Error(t, err)
}
