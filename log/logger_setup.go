package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/candlelab/backtester/common/convert"
)

var (
	errSubloggerConfigIsNil  = errors.New("sublogger config is nil")
	errUnhandledOutputWriter = errors.New("unhandled output writer")
	errFileLoggingNotSetup   = errors.New("file output requested but no log file is configured")
	errSubLoggerNotFound     = errors.New("sub logger not found")
)

func getWriters(s *SubLoggerConfig) (io.Writer, error) {
	if s == nil {
		return nil, errSubloggerConfigIsNil
	}
	mw, err := MultiWriter()
	if err != nil {
		return nil, err
	}
	outputWriters := strings.Split(s.Output, "|")
	for x := range outputWriters {
		var writer io.Writer
		switch strings.ToLower(strings.TrimSpace(outputWriters[x])) {
		case "stdout", "console":
			writer = os.Stdout
		case "stderr":
			writer = os.Stderr
		case "file":
			if logFile == nil {
				return nil, errFileLoggingNotSetup
			}
			writer = logFile
		default:
			return nil, fmt.Errorf("%w: %s", errUnhandledOutputWriter, outputWriters[x])
		}
		err = mw.Add(writer)
		if err != nil {
			return nil, err
		}
	}
	return mw, nil
}

// GenDefaultSettings return struct with known sane/working logger settings
func GenDefaultSettings() Config {
	return Config{
		Enabled: convert.BoolPtr(true),
		SubLoggerConfig: SubLoggerConfig{
			Level:  "INFO|WARN|ERROR",
			Output: "console",
		},
		AdvancedSettings: advancedSettings{
			ShowLogSystemName: convert.BoolPtr(true),
			Spacer:            spacer,
			TimeStampFormat:   timestampFormat,
			Headers: headers{
				Info:  "[INFO]",
				Warn:  "[WARN]",
				Debug: "[DEBUG]",
				Error: "[ERROR]",
			},
		},
	}
}

// SetupGlobalLogger applies the supplied configuration to every registered
// sub logger and then applies any per sub logger overrides
func SetupGlobalLogger(cfg *Config) error {
	if cfg == nil {
		defaults := GenDefaultSettings()
		cfg = &defaults
	}
	mu.Lock()
	defer mu.Unlock()
	globalLogConfig = cfg
	if cfg.LoggerFileConfig != nil && cfg.LoggerFileConfig.FileName != "" {
		if err := openLogFile(cfg.LoggerFileConfig.FileName); err != nil {
			return err
		}
	}
	enabled := cfg.Enabled == nil || *cfg.Enabled
	for _, sl := range subLoggers {
		if !enabled {
			sl.levels = Levels{}
			continue
		}
		output, err := getWriters(&cfg.SubLoggerConfig)
		if err != nil {
			return err
		}
		sl.levels = splitLevel(cfg.Level)
		sl.output = output
	}
	logger = newLogger(cfg)
	if !enabled {
		return nil
	}
	return setupSubLoggers(cfg.SubLoggers)
}

// CloseLogger releases the log file if one was opened
func CloseLogger() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func openLogFile(name string) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o770); err != nil {
		return err
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return err
	}
	if logFile != nil {
		displayError(logFile.Close())
	}
	logFile = f
	return nil
}

func newLogger(c *Config) Logger {
	return Logger{
		TimestampFormat:   c.AdvancedSettings.TimeStampFormat,
		Spacer:            c.AdvancedSettings.Spacer,
		ErrorHeader:       c.AdvancedSettings.Headers.Error,
		InfoHeader:        c.AdvancedSettings.Headers.Info,
		WarnHeader:        c.AdvancedSettings.Headers.Warn,
		DebugHeader:       c.AdvancedSettings.Headers.Debug,
		ShowLogSystemName: c.AdvancedSettings.ShowLogSystemName != nil && *c.AdvancedSettings.ShowLogSystemName,
	}
}

// setupSubLoggers configures individual sub loggers with provided configuration values
func setupSubLoggers(s []SubLoggerConfig) error {
	for x := range s {
		output, err := getWriters(&s[x])
		if err != nil {
			return err
		}
		sl, ok := subLoggers[strings.ToUpper(s[x].Name)]
		if !ok {
			return fmt.Errorf("%w: %v", errSubLoggerNotFound, s[x].Name)
		}
		sl.output = output
		sl.levels = splitLevel(s[x].Level)
	}
	return nil
}

func splitLevel(level string) (l Levels) {
	enabledLevels := strings.Split(strings.ToUpper(level), "|")
	for x := range enabledLevels {
		switch strings.TrimSpace(enabledLevels[x]) {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return
}

func registerNewSubLogger(name string) *SubLogger {
	temp := &SubLogger{
		name:   strings.ToUpper(name),
		output: os.Stdout,
		levels: splitLevel("INFO|WARN|ERROR"),
	}
	subLoggers[temp.name] = temp
	return temp
}

// register all loggers at package init()
func init() {
	Global = registerNewSubLogger("LOG")
	BackTester = registerNewSubLogger("BACKTESTER")
	Strategy = registerNewSubLogger("STRATEGY")
	Loader = registerNewSubLogger("LOADER")
	Script = registerNewSubLogger("SCRIPT")
	Report = registerNewSubLogger("REPORT")
	ConfigMgr = registerNewSubLogger("CONFIG")

	defaults := GenDefaultSettings()
	logger = newLogger(&defaults)
}
