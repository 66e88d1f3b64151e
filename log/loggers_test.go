package log

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/candlelab/backtester/common/convert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Levels{Info: true, Debug: true, Warn: true, Error: true}, splitLevel("INFO|DEBUG|WARN|ERROR"))
	assert.Equal(t, Levels{Warn: true}, splitLevel("warn"))
	assert.Equal(t, Levels{}, splitLevel(""))
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()
	var a, b bytes.Buffer
	mw, err := MultiWriter(&a, &b)
	require.NoError(t, err)
	require.ErrorIs(t, mw.Add(&a), errWriterAlreadyLoaded)

	n, err := mw.Write([]byte("candles"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "candles", a.String())
	assert.Equal(t, "candles", b.String())

}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) - 1, nil }

type failWriter struct{}

var errFailWrite = errors.New("write failed")

func (failWriter) Write([]byte) (int, error) { return 0, errFailWrite }

func TestMultiWriterErrors(t *testing.T) {
	t.Parallel()
	mw, err := MultiWriter(shortWriter{})
	require.NoError(t, err)
	_, err = mw.Write([]byte("abc"))
	require.ErrorIs(t, err, io.ErrShortWrite)

	mw, err = MultiWriter(failWriter{})
	require.NoError(t, err)
	_, err = mw.Write([]byte("abc"))
	require.ErrorIs(t, err, errFailWrite)
}

func TestGetWriters(t *testing.T) {
	t.Parallel()
	_, err := getWriters(nil)
	require.ErrorIs(t, err, errSubloggerConfigIsNil)
	_, err = getWriters(&SubLoggerConfig{Output: "printer"})
	require.ErrorIs(t, err, errUnhandledOutputWriter)
	w, err := getWriters(&SubLoggerConfig{Output: "stdout|stderr"})
	require.NoError(t, err)
	assert.NotNil(t, w)
}

func TestStageRespectsLevels(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	sl := &SubLogger{name: "TEST", output: &buf, levels: Levels{Warn: true}}
	Infof(sl, "hidden %d", 1)
	assert.Empty(t, buf.String())
	Warnf(sl, "shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "[WARN]")
}

func TestNilSubLogger(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() {
		Info(nil, "nothing")
		Errorf(nil, "nothing %v", 1)
	})
	var sl *SubLogger
	assert.Empty(t, sl.Name())
}

func TestSetupGlobalLogger(t *testing.T) {
	cfg := GenDefaultSettings()
	cfg.LoggerFileConfig = &loggerFileConfig{FileName: filepath.Join(t.TempDir(), "logs", "backtester.log")}
	cfg.Output = "file"
	cfg.SubLoggers = []SubLoggerConfig{{Name: "strategy", Level: "DEBUG", Output: "file"}}
	require.NoError(t, SetupGlobalLogger(&cfg))
	defer func() {
		require.NoError(t, CloseLogger())
		require.NoError(t, SetupGlobalLogger(nil))
	}()
	assert.True(t, Strategy.levels.Debug)
	assert.False(t, Strategy.levels.Info)
	assert.True(t, BackTester.levels.Info)

	cfg.SubLoggers = []SubLoggerConfig{{Name: "unknown", Level: "DEBUG", Output: "stdout"}}
	require.ErrorIs(t, SetupGlobalLogger(&cfg), errSubLoggerNotFound)

	cfg.SubLoggers = nil
	cfg.Enabled = convert.BoolPtr(false)
	require.NoError(t, SetupGlobalLogger(&cfg))
	assert.Equal(t, Levels{}, BackTester.levels)
}
