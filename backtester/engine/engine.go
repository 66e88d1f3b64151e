package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/candlelab/backtester/backtester/data/kline"
	"github.com/candlelab/backtester/backtester/eventhandlers/portfolio"
	"github.com/candlelab/backtester/backtester/eventhandlers/statistics"
	"github.com/candlelab/backtester/backtester/eventhandlers/strategies"
	"github.com/candlelab/backtester/backtester/eventhandlers/strategies/base"
	"github.com/candlelab/backtester/log"
	"github.com/gofrs/uuid"
)

// DefaultSettings returns the settings used when none are configured
func DefaultSettings() Settings {
	return Settings{
		Commission:      DefaultCommission,
		Slippage:        DefaultSlippage,
		InitialCapital:  DefaultInitialCapital,
		Timeframes:      []string{DefaultTimeframe},
		StrategyTimeout: DefaultStrategyTimeout,
	}
}

// New validates settings and returns an engine. Timeframes are validated
// before anything else
func New(s Settings) (*Engine, error) {
	if err := kline.ValidateTimeframes(s.Timeframes); err != nil {
		return nil, err
	}
	if s.StrategyTimeout < 0 {
		return nil, fmt.Errorf("%w: %v", errInvalidTimeout, s.StrategyTimeout)
	}
	if s.StrategyTimeout == 0 {
		s.StrategyTimeout = DefaultStrategyTimeout
	}
	if _, err := portfolio.New(s.InitialCapital, s.Commission, s.Slippage); err != nil {
		return nil, err
	}
	s.Timeframes = append([]string(nil), s.Timeframes...)
	return &Engine{settings: s}, nil
}

// Settings returns a copy of the engine settings
func (e *Engine) Settings() Settings {
	s := e.settings
	s.Timeframes = append([]string(nil), s.Timeframes...)
	return s
}

// Run replays candles as the primary timeline. Every configured timeframe
// is aggregated from candles and exposed to the strategy as a view
func (e *Engine) Run(ctx context.Context, h strategies.Handler, candles []kline.Candle, params map[string]any) (*Result, error) {
	if e == nil {
		return nil, errNilEngine
	}
	ds, err := kline.BuildMultiTimeframe(candles, e.settings.Timeframes)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, h, "", candles, ds, params)
}

// RunDataset replays a pre-built dataset. The smallest timeframe drives the
// loop and every label, the primary included, is exposed as a view
func (e *Engine) RunDataset(ctx context.Context, h strategies.Handler, ds kline.Dataset, params map[string]any) (*Result, error) {
	if e == nil {
		return nil, errNilEngine
	}
	primary, err := ds.Primary()
	if err != nil {
		return nil, err
	}
	return e.run(ctx, h, primary, ds[primary], ds, params)
}

func (e *Engine) run(ctx context.Context, h strategies.Handler, label string, primary []kline.Candle, ds kline.Dataset, params map[string]any) (*Result, error) {
	if h == nil {
		return nil, errNilStrategy
	}
	pf, err := portfolio.New(e.settings.InitialCapital, e.settings.Commission, e.settings.Slippage)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	resp := &Result{
		ID:               id,
		Strategy:         h.Name(),
		PrimaryTimeframe: label,
		Trades:           []portfolio.Trade{},
		Equity:           make([]statistics.EquityPoint, 0, len(primary)),
		FinalCapital:     pf.Capital(),
	}
	if len(primary) == 0 {
		log.Warnf(log.BackTester, "Run %v: no candles to replay", id)
		return resp, nil
	}
	log.Infof(log.BackTester, "Run %v: starting %s over %d candles %v to %v",
		id, h.Name(), len(primary), primary[0].Time, primary[len(primary)-1].Time)

	var (
		state     = make(base.State)
		labels    = ds.Labels()
		cursors   = make([]int, len(labels))
		durations = make([]time.Duration, len(labels))
		last      = len(primary) - 1
	)
	for i := range cursors {
		cursors[i] = -1
		interval, err := kline.ParseInterval(labels[i])
		if err != nil {
			return nil, err
		}
		durations[i] = interval.Duration()
	}
	for i := range primary {
		if err = ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %v stopped at step %d: %w", id, i, err)
		}
		c := primary[i]
		views := make(map[string][]kline.Candle, len(labels))
		for j, l := range labels {
			tf := ds[l]
			// a bucket is visible once its end is at or before the step
			for cursors[j]+1 < len(tf) && !tf[cursors[j]+1].Time.Add(durations[j]).After(c.Time) {
				cursors[j]++
			}
			views[l] = tf[: cursors[j]+1 : cursors[j]+1]
		}
		sig, err := e.invoke(ctx, h, &base.Context{
			Candles:    primary[: i+1 : i+1],
			Index:      i,
			Candle:     c,
			Params:     params,
			State:      state,
			Timeframes: views,
		})
		if err != nil {
			resp.StrategyErrors++
			log.Warnf(log.Strategy, "Run %v step %d at %v: %v", id, i, c.Time, err)
		} else {
			applySignal(pf, sig.Normalise(), &c, i, i == last)
		}
		resp.Equity = append(resp.Equity, statistics.EquityPoint{Time: c.Time, Equity: pf.Equity(c.Close)})
	}

	if pf.HasPosition() {
		final := primary[last]
		trade, err := pf.Close(final.Close, final.Time, last)
		if err != nil {
			return nil, fmt.Errorf("run %v force close: %w", id, err)
		}
		log.Infof(log.BackTester, "Run %v: closed open %s position at end of data, P&L %.4f", id, trade.Side, trade.PnL)
	}

	resp.Steps = len(primary)
	resp.Trades = pf.Trades()
	resp.FinalCapital = pf.Capital()
	resp.Metrics = statistics.ComputeMetrics(resp.Trades, resp.Equity, e.settings.InitialCapital)
	log.Infof(log.BackTester, "Run %v: finished with %d trades, %d strategy errors, final capital %.2f",
		id, len(resp.Trades), resp.StrategyErrors, resp.FinalCapital)
	return resp, nil
}

// invoke calls the strategy under its own deadline. Errors, panics and
// overruns all surface as ErrStrategyFailed
func (e *Engine) invoke(ctx context.Context, h strategies.Handler, c *base.Context) (sig base.Signal, err error) {
	callCtx, cancel := context.WithTimeout(ctx, e.settings.StrategyTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			sig, err = base.Signal{}, fmt.Errorf("%w: panic: %v", strategies.ErrStrategyFailed, r)
		}
	}()
	sig, err = h.OnSignal(callCtx, c)
	if err == nil {
		err = callCtx.Err()
	}
	if err != nil {
		return base.Signal{}, fmt.Errorf("%w: %w", strategies.ErrStrategyFailed, err)
	}
	return sig, nil
}

// applySignal drives the position state machine. Opens on the final step are
// dropped since they could only ever be force closed on the same candle
func applySignal(pf *portfolio.Portfolio, sig base.Signal, c *kline.Candle, index int, final bool) {
	var side portfolio.Side
	switch sig.Action {
	case base.Buy:
		if pf.HasPosition() {
			return
		}
		side = portfolio.Long
	case base.Sell:
		if pf.HasPosition() {
			if _, err := pf.Close(c.Close, c.Time, index); err != nil {
				log.Errorf(log.BackTester, "Step %d: close failed: %v", index, err)
			}
			return
		}
		side = portfolio.Short
	default:
		return
	}
	if final {
		log.Debugf(log.BackTester, "Step %d: ignoring %s on final candle", index, sig.Action)
		return
	}
	if err := pf.Open(side, c.Close, sig.OrderSize(), c.Time, index, sig.Meta); err != nil {
		if errors.Is(err, portfolio.ErrInsufficientFunds) {
			log.Debugf(log.BackTester, "Step %d: %s not placed: %v", index, sig.Action, err)
			return
		}
		log.Errorf(log.BackTester, "Step %d: %s failed: %v", index, sig.Action, err)
	}
}
