package log

import (
	"io"
	"sync"
)

const (
	timestampFormat = " 02/01/2006 15:04:05 "
	spacer          = " | "
)

var (
	logger = Logger{}
	// globalLogConfig holds global configuration options for logger
	globalLogConfig = &Config{}
	// logFile is the shared file writer used when a sub logger outputs to "file"
	logFile io.WriteCloser

	// read/write mutex for logger
	mu = &sync.RWMutex{}
)

// Config holds configuration settings loaded from the run config
type Config struct {
	Enabled *bool `json:"enabled" yaml:"enabled"`
	SubLoggerConfig `yaml:",inline"`
	LoggerFileConfig *loggerFileConfig `json:"fileSettings,omitempty" yaml:"fileSettings,omitempty"`
	AdvancedSettings advancedSettings  `json:"advancedSettings" yaml:"advancedSettings"`
	SubLoggers       []SubLoggerConfig `json:"subloggers,omitempty" yaml:"subloggers,omitempty"`
}

type advancedSettings struct {
	ShowLogSystemName *bool   `json:"showLogSystemName" yaml:"showLogSystemName"`
	Spacer            string  `json:"spacer" yaml:"spacer"`
	TimeStampFormat   string  `json:"timeStampFormat" yaml:"timeStampFormat"`
	Headers           headers `json:"headers" yaml:"headers"`
}

type headers struct {
	Info  string `json:"info" yaml:"info"`
	Warn  string `json:"warn" yaml:"warn"`
	Debug string `json:"debug" yaml:"debug"`
	Error string `json:"error" yaml:"error"`
}

// SubLoggerConfig holds sub logger configuration settings loaded from the run config
type SubLoggerConfig struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Level  string `json:"level" yaml:"level"`
	Output string `json:"output" yaml:"output"`
}

type loggerFileConfig struct {
	FileName string `json:"filename,omitempty" yaml:"filename,omitempty"`
}

// Logger each instance of logger settings
type Logger struct {
	ShowLogSystemName                                bool
	TimestampFormat                                  string
	InfoHeader, ErrorHeader, DebugHeader, WarnHeader string
	Spacer                                           string
}

// Levels flags for each sub logger type
type Levels struct {
	Info, Debug, Warn, Error bool
}

type multiWriter struct {
	writers []io.Writer
	mu      sync.RWMutex
}
