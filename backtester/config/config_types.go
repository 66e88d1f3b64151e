package config

import (
	"errors"

	"github.com/candlelab/backtester/log"
)

// Environment variables that override file settings
const (
	EnvCommission     = "BACKTESTER_COMMISSION"
	EnvSlippage       = "BACKTESTER_SLIPPAGE"
	EnvInitialCapital = "BACKTESTER_INITIAL_CAPITAL"
	EnvLogLevel       = "BACKTESTER_LOG_LEVEL"
)

var (
	errNoStrategy          = errors.New("strategy name or script must be set")
	errNoDataPath          = errors.New("data path or per timeframe paths must be set")
	errBothDataSources     = errors.New("data path and per timeframe paths are mutually exclusive")
	errInvalidRate         = errors.New("rate must be between 0 and 1")
	errInvalidCapital      = errors.New("initial capital must be greater than zero")
	errInvalidTimeout      = errors.New("invalid strategy timeout")
	errUnsupportedFileType = errors.New("unsupported config file type")
	errInvalidEnvOverride  = errors.New("invalid environment override")
)

// Config defines a single backtest run
type Config struct {
	Nickname string           `json:"nickname,omitempty" yaml:"nickname,omitempty"`
	Goal     string           `json:"goal,omitempty" yaml:"goal,omitempty"`
	Strategy StrategySettings `json:"strategy" yaml:"strategy"`
	Data     DataSettings     `json:"data" yaml:"data"`
	Run      RunSettings      `json:"run" yaml:"run"`
	Output   OutputSettings   `json:"output" yaml:"output"`
	Logging  *log.Config      `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// StrategySettings selects the strategy. Script takes precedence over Name
type StrategySettings struct {
	Name           string         `json:"name,omitempty" yaml:"name,omitempty"`
	Script         string         `json:"script,omitempty" yaml:"script,omitempty"`
	CustomSettings map[string]any `json:"custom-settings,omitempty" yaml:"custom-settings,omitempty"`
	Params         map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// DataSettings points at the candle files. Path holds base resolution
// candles, Timeframes maps labels to already aggregated files
type DataSettings struct {
	Path       string            `json:"path,omitempty" yaml:"path,omitempty"`
	Format     string            `json:"format,omitempty" yaml:"format,omitempty"`
	Timeframes map[string]string `json:"timeframes,omitempty" yaml:"timeframes,omitempty"`
}

// RunSettings is the cost model and timing of a run
type RunSettings struct {
	Commission      float64  `json:"commission" yaml:"commission"`
	Slippage        float64  `json:"slippage" yaml:"slippage"`
	InitialCapital  float64  `json:"initial-capital" yaml:"initial-capital"`
	Timeframes      []string `json:"timeframes" yaml:"timeframes"`
	StrategyTimeout string   `json:"strategy-timeout" yaml:"strategy-timeout"`
}

// OutputSettings names the files written after a run. Empty paths are skipped
type OutputSettings struct {
	TradesCSV  string `json:"trades-csv,omitempty" yaml:"trades-csv,omitempty"`
	ResultJSON string `json:"result-json,omitempty" yaml:"result-json,omitempty"`
	ReportHTML string `json:"report-html,omitempty" yaml:"report-html,omitempty"`
}
