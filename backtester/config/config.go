package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/candlelab/backtester/backtester/data"
	"github.com/candlelab/backtester/backtester/data/kline"
	"github.com/candlelab/backtester/backtester/engine"
	"github.com/candlelab/backtester/backtester/eventhandlers/strategies"
	"github.com/candlelab/backtester/common"
	"github.com/candlelab/backtester/common/file"
	"github.com/candlelab/backtester/log"
	"gopkg.in/yaml.v3"
)

// Default returns a config holding the default run settings
func Default() *Config {
	s := engine.DefaultSettings()
	return &Config{
		Run: RunSettings{
			Commission:      s.Commission,
			Slippage:        s.Slippage,
			InitialCapital:  s.InitialCapital,
			Timeframes:      s.Timeframes,
			StrategyTimeout: s.StrategyTimeout.String(),
		},
	}
}

// ReadConfigFromFile will take a config from a path and apply any
// environment overrides
func ReadConfigFromFile(path string) (*Config, error) {
	if !file.Exists(path) {
		return nil, fmt.Errorf("config %s: %w", path, os.ErrNotExist)
	}
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := LoadConfig(fileData, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err = c.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadConfig unmarshalls byte data over the defaults. ext selects JSON or
// YAML decoding
func LoadConfig(fileData []byte, ext string) (*Config, error) {
	c := Default()
	var err error
	switch strings.ToLower(ext) {
	case ".json":
		err = json.Unmarshal(fileData, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(fileData, c)
	default:
		return nil, fmt.Errorf("%w %q", errUnsupportedFileType, ext)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes the config to path, encoded by its extension
func (c *Config) Save(path string) error {
	var (
		fileData []byte
		err      error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		fileData, err = json.MarshalIndent(c, "", "  ")
	case ".yaml", ".yml":
		fileData, err = yaml.Marshal(c)
	default:
		return fmt.Errorf("%w %q", errUnsupportedFileType, filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return file.Write(path, fileData)
}

// ApplyEnvOverrides applies BACKTESTER_* environment variables over the
// current settings
func (c *Config) ApplyEnvOverrides() error {
	return c.applyEnvOverrides(os.LookupEnv)
}

func (c *Config) applyEnvOverrides(lookup func(string) (string, bool)) error {
	var errs error
	for _, o := range []struct {
		env    string
		target *float64
	}{
		{EnvCommission, &c.Run.Commission},
		{EnvSlippage, &c.Run.Slippage},
		{EnvInitialCapital, &c.Run.InitialCapital},
	} {
		v, ok := lookup(o.env)
		if !ok || v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = common.AppendError(errs, fmt.Errorf("%w %s=%q", errInvalidEnvOverride, o.env, v))
			continue
		}
		*o.target = f
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		if c.Logging == nil {
			defaults := log.GenDefaultSettings()
			c.Logging = &defaults
		}
		c.Logging.Level = v
	}
	return errs
}

// Validate checks all config settings and reports every problem found
func (c *Config) Validate() error {
	var errs error
	if c.Strategy.Name == "" && c.Strategy.Script == "" {
		errs = common.AppendError(errs, errNoStrategy)
	}
	if c.Strategy.Script == "" && c.Strategy.Name != "" {
		if _, err := strategies.LoadStrategyByName(c.Strategy.Name); err != nil {
			errs = common.AppendError(errs, err)
		}
	}
	switch {
	case c.Data.Path == "" && len(c.Data.Timeframes) == 0:
		errs = common.AppendError(errs, errNoDataPath)
	case c.Data.Path != "" && len(c.Data.Timeframes) > 0:
		errs = common.AppendError(errs, errBothDataSources)
	}
	if _, err := c.DataFormat(); err != nil {
		errs = common.AppendError(errs, err)
	}
	for label := range c.Data.Timeframes {
		if _, err := kline.ParseInterval(label); err != nil {
			errs = common.AppendError(errs, err)
		}
	}
	if !validRate(c.Run.Commission) {
		errs = common.AppendError(errs, fmt.Errorf("commission %v %w", c.Run.Commission, errInvalidRate))
	}
	if !validRate(c.Run.Slippage) {
		errs = common.AppendError(errs, fmt.Errorf("slippage %v %w", c.Run.Slippage, errInvalidRate))
	}
	if c.Run.InitialCapital <= 0 || math.IsNaN(c.Run.InitialCapital) || math.IsInf(c.Run.InitialCapital, 0) {
		errs = common.AppendError(errs, fmt.Errorf("%w: %v", errInvalidCapital, c.Run.InitialCapital))
	}
	if len(c.Data.Timeframes) == 0 {
		if err := kline.ValidateTimeframes(c.Run.Timeframes); err != nil {
			errs = common.AppendError(errs, err)
		}
	}
	if _, err := c.strategyTimeout(); err != nil {
		errs = common.AppendError(errs, err)
	}
	return errs
}

func validRate(f float64) bool {
	return f >= 0 && f < 1
}

func (c *Config) strategyTimeout() (time.Duration, error) {
	if c.Run.StrategyTimeout == "" {
		return engine.DefaultStrategyTimeout, nil
	}
	d, err := time.ParseDuration(c.Run.StrategyTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", errInvalidTimeout, c.Run.StrategyTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w %q: must be positive", errInvalidTimeout, c.Run.StrategyTimeout)
	}
	return d, nil
}

// DataFormat returns the configured candle file format, inferring it from
// the file extension when unset
func (c *Config) DataFormat() (data.Format, error) {
	path := c.Data.Path
	if path == "" {
		for _, p := range c.Data.Timeframes {
			path = p
			break
		}
	}
	return data.ParseFormat(c.Data.Format, path)
}

// EngineSettings converts the run section into engine settings. When
// pre-aggregated files are configured their labels are the timeframes
func (c *Config) EngineSettings() (engine.Settings, error) {
	timeout, err := c.strategyTimeout()
	if err != nil {
		return engine.Settings{}, err
	}
	timeframes := c.Run.Timeframes
	if len(c.Data.Timeframes) > 0 {
		timeframes = make([]string, 0, len(c.Data.Timeframes))
		for label := range c.Data.Timeframes {
			timeframes = append(timeframes, label)
		}
	}
	return engine.Settings{
		Commission:      c.Run.Commission,
		Slippage:        c.Run.Slippage,
		InitialCapital:  c.Run.InitialCapital,
		Timeframes:      timeframes,
		StrategyTimeout: timeout,
	}, nil
}

// LoadStrategy returns the configured strategy with custom settings applied
func (c *Config) LoadStrategy() (strategies.Handler, error) {
	return strategies.Load(c.Strategy.Name, c.Strategy.Script, c.Strategy.CustomSettings)
}

// PrintSetting prints relevant settings to the console for easy reading
func (c *Config) PrintSetting() {
	log.Info(log.ConfigMgr, "------------------Backtester Settings------------------------")
	if c.Nickname != "" {
		log.Infof(log.ConfigMgr, "Nickname: %s", c.Nickname)
	}
	if c.Goal != "" {
		log.Infof(log.ConfigMgr, "Goal: %s", c.Goal)
	}
	log.Info(log.ConfigMgr, "------------------Strategy Settings--------------------------")
	if c.Strategy.Script != "" {
		log.Infof(log.ConfigMgr, "Script: %s", c.Strategy.Script)
	} else {
		log.Infof(log.ConfigMgr, "Strategy: %s", c.Strategy.Name)
	}
	if len(c.Strategy.CustomSettings) > 0 {
		log.Info(log.ConfigMgr, "Custom strategy variables:")
		for k, v := range c.Strategy.CustomSettings {
			log.Infof(log.ConfigMgr, "%s: %v", k, v)
		}
	} else {
		log.Info(log.ConfigMgr, "Custom strategy variables: unset")
	}
	log.Info(log.ConfigMgr, "------------------Data Settings------------------------------")
	if c.Data.Path != "" {
		log.Infof(log.ConfigMgr, "Path: %s", c.Data.Path)
	}
	for label, p := range c.Data.Timeframes {
		log.Infof(log.ConfigMgr, "%s: %s", label, p)
	}
	log.Info(log.ConfigMgr, "------------------Run Settings-------------------------------")
	log.Infof(log.ConfigMgr, "Commission: %v", c.Run.Commission)
	log.Infof(log.ConfigMgr, "Slippage: %v", c.Run.Slippage)
	log.Infof(log.ConfigMgr, "Initial capital: %v", c.Run.InitialCapital)
	log.Infof(log.ConfigMgr, "Timeframes: %v", strings.Join(c.Run.Timeframes, ", "))
	log.Infof(log.ConfigMgr, "Strategy timeout: %v", c.Run.StrategyTimeout)
}
