package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/candlelab/backtester/backtester/config"
	"github.com/candlelab/backtester/backtester/data"
	"github.com/candlelab/backtester/backtester/data/kline"
	"github.com/candlelab/backtester/backtester/engine"
	"github.com/candlelab/backtester/backtester/eventhandlers/strategies"
	"github.com/candlelab/backtester/backtester/report"
	"github.com/candlelab/backtester/common"
	"github.com/candlelab/backtester/log"
	"github.com/urfave/cli/v2"
)

var errInvalidParam = errors.New("param must be in key=value form")

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "the path to a JSON or YAML run config",
}

var runCommand = &cli.Command{
	Name:   "run",
	Usage:  "runs a backtest from a config file, flags or both. Flags override the config",
	Action: runBacktest,
	Flags: []cli.Flag{
		configFlag,
		&cli.StringFlag{Name: "strategy", Aliases: []string{"s"}, Usage: "the registered strategy to run"},
		&cli.StringFlag{Name: "script", Usage: "a tengo strategy script, takes precedence over --strategy"},
		&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "the base resolution candle file"},
		&cli.StringFlag{Name: "format", Usage: "the candle file format: csv or parquet. Inferred from the extension when unset"},
		&cli.StringSliceFlag{Name: "timeframes", Aliases: []string{"t"}, Usage: "timeframes to aggregate, eg 1h,4h,1d"},
		&cli.Float64Flag{Name: "commission", Usage: "commission rate charged on entry"},
		&cli.Float64Flag{Name: "slippage", Usage: "slippage rate applied to fills"},
		&cli.Float64Flag{Name: "initial-capital", Usage: "starting capital"},
		&cli.DurationFlag{Name: "strategy-timeout", Usage: "wall clock budget of a single strategy call"},
		&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "a strategy param in key=value form, repeatable"},
		&cli.StringFlag{Name: "trades-csv", Usage: "write closed trades to this CSV file"},
		&cli.StringFlag{Name: "result-json", Usage: "write the full result to this JSON file"},
		&cli.StringFlag{Name: "report-html", Usage: "write an HTML report to this file"},
	},
}

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "validates a run config and reports every problem found",
	ArgsUsage: "<config>",
	Flags:     []cli.Flag{configFlag},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		if err = cfg.Validate(); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, "config is valid")
		return nil
	},
}

var strategiesCommand = &cli.Command{
	Name:  "strategies",
	Usage: "lists the registered strategies",
	Action: func(c *cli.Context) error {
		for _, s := range strategies.GetStrategies() {
			fmt.Fprintf(c.App.Writer, "%-14s %s\n", s.Name(), s.Description())
		}
		return nil
	},
}

var configCommand = &cli.Command{
	Name:      "config",
	Usage:     "writes a config holding the default settings",
	ArgsUsage: "<path.json|path.yaml>",
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return cli.ShowSubcommandHelp(c)
		}
		cfg := config.Default()
		cfg.Strategy.Name = strategies.GetStrategies()[0].Name()
		cfg.Data.Path = "candles.csv"
		cfg.Output.TradesCSV = "results/trades.csv"
		cfg.Output.ResultJSON = "results/result.json"
		defaults := log.GenDefaultSettings()
		cfg.Logging = &defaults
		if err := cfg.Save(c.Args().First()); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "wrote %s\n", c.Args().First())
		return nil
	},
}

// loadConfig reads the config named by --config or the first argument,
// falling back to defaults with environment overrides
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String(configFlag.Name)
	if path == "" {
		path = c.Args().First()
	}
	if path != "" {
		return config.ReadConfigFromFile(path)
	}
	cfg := config.Default()
	return cfg, cfg.ApplyEnvOverrides()
}

func applyFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("strategy") {
		cfg.Strategy.Name = c.String("strategy")
	}
	if c.IsSet("script") {
		cfg.Strategy.Script = c.String("script")
	}
	if c.IsSet("data") {
		cfg.Data.Path = c.String("data")
		cfg.Data.Timeframes = nil
	}
	if c.IsSet("format") {
		cfg.Data.Format = c.String("format")
	}
	if c.IsSet("timeframes") {
		cfg.Run.Timeframes = splitList(c.StringSlice("timeframes"))
	}
	if c.IsSet("commission") {
		cfg.Run.Commission = c.Float64("commission")
	}
	if c.IsSet("slippage") {
		cfg.Run.Slippage = c.Float64("slippage")
	}
	if c.IsSet("initial-capital") {
		cfg.Run.InitialCapital = c.Float64("initial-capital")
	}
	if c.IsSet("strategy-timeout") {
		cfg.Run.StrategyTimeout = c.Duration("strategy-timeout").String()
	}
	if c.IsSet("param") {
		params, err := parseParams(c.StringSlice("param"))
		if err != nil {
			return err
		}
		if cfg.Strategy.Params == nil {
			cfg.Strategy.Params = make(map[string]any, len(params))
		}
		for k, v := range params {
			cfg.Strategy.Params[k] = v
		}
	}
	if c.IsSet("trades-csv") {
		cfg.Output.TradesCSV = c.String("trades-csv")
	}
	if c.IsSet("result-json") {
		cfg.Output.ResultJSON = c.String("result-json")
	}
	if c.IsSet("report-html") {
		cfg.Output.ReportHTML = c.String("report-html")
	}
	return nil
}

func splitList(in []string) []string {
	var resp []string
	for i := range in {
		for _, s := range strings.Split(in[i], ",") {
			if s = strings.TrimSpace(s); s != "" {
				resp = append(resp, s)
			}
		}
	}
	return resp
}

// parseParams converts key=value pairs. Numeric and boolean values are
// converted, everything else stays a string
func parseParams(in []string) (map[string]any, error) {
	resp := make(map[string]any, len(in))
	for i := range in {
		k, v, ok := strings.Cut(in[i], "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidParam, in[i])
		}
		v = strings.TrimSpace(v)
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			resp[k] = f
			continue
		}
		if b, err := strconv.ParseBool(v); err == nil {
			resp[k] = b
			continue
		}
		resp[k] = v
	}
	return resp, nil
}

func runBacktest(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err = applyFlags(c, cfg); err != nil {
		return err
	}
	if err = log.SetupGlobalLogger(cfg.Logging); err != nil {
		return err
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	cfg.PrintSetting()

	h, err := cfg.LoadStrategy()
	if err != nil {
		return err
	}
	settings, err := cfg.EngineSettings()
	if err != nil {
		return err
	}
	e, err := engine.New(settings)
	if err != nil {
		return err
	}
	format, err := cfg.DataFormat()
	if err != nil {
		return err
	}

	var res *engine.Result
	if cfg.Data.Path != "" {
		candles, err := data.Load(cfg.Data.Path, format)
		if err != nil {
			return err
		}
		if len(candles) == 0 {
			return fmt.Errorf("%s: %w", cfg.Data.Path, kline.ErrNoData)
		}
		res, err = e.Run(c.Context, h, candles, cfg.Strategy.Params)
		if err != nil {
			return err
		}
	} else {
		ds, err := data.LoadDataset(cfg.Data.Timeframes, format)
		if err != nil {
			return err
		}
		if data.Empty(ds) {
			return kline.ErrNoData
		}
		res, err = e.RunDataset(c.Context, h, ds, cfg.Strategy.Params)
		if err != nil {
			return err
		}
	}

	res.Metrics.PrintResults()
	log.Infof(log.BackTester, "Final capital: %.2f", res.FinalCapital)
	return writeOutputs(res, &cfg.Output)
}

func writeOutputs(res *engine.Result, o *config.OutputSettings) error {
	var errs error
	if o.TradesCSV != "" {
		errs = common.AppendError(errs, report.ExportTrades(res.Trades, o.TradesCSV))
	}
	if o.ResultJSON != "" {
		errs = common.AppendError(errs, report.WriteResult(res, o.ResultJSON))
	}
	if o.ReportHTML != "" {
		errs = common.AppendError(errs, report.GenerateReport(res, o.ReportHTML))
	}
	return errs
}
