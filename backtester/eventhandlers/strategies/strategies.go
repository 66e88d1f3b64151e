package strategies

import (
	"fmt"
	"strings"
	"sync"

	"github.com/candlelab/backtester/backtester/eventhandlers/strategies/base"
	"github.com/candlelab/backtester/backtester/eventhandlers/strategies/buyandhold"
	"github.com/candlelab/backtester/backtester/eventhandlers/strategies/holdforever"
	"github.com/candlelab/backtester/backtester/eventhandlers/strategies/rsi"
	"github.com/candlelab/backtester/backtester/eventhandlers/strategies/script"
)

var (
	m              sync.Mutex
	userStrategies []Handler
)

// LoadStrategyByName returns the strategy by its name
func LoadStrategyByName(name string) (Handler, error) {
	strats := GetStrategies()
	for i := range strats {
		if !strings.EqualFold(name, strats[i].Name()) {
			continue
		}
		return strats[i], nil
	}
	return nil, fmt.Errorf("strategy '%v' %w", name, base.ErrStrategyNotFound)
}

// Load returns a strategy ready to run. A script file takes precedence over
// a registered strategy name. Defaults are applied before customSettings
func Load(name, scriptFile string, customSettings map[string]any) (Handler, error) {
	var (
		h   Handler
		err error
	)
	if scriptFile != "" {
		h, err = script.Load(scriptFile)
	} else {
		h, err = LoadStrategyByName(name)
	}
	if err != nil {
		return nil, err
	}
	h.SetDefaults()
	if err = h.SetCustomSettings(customSettings); err != nil {
		return nil, fmt.Errorf("%v %w", h.Name(), err)
	}
	return h, nil
}

// GetStrategies returns a static list of set strategies
// they must be set in this func to be loaded, or added via AddStrategy
func GetStrategies() []Handler {
	m.Lock()
	defer m.Unlock()
	return append(getBuiltInStrategies(), userStrategies...)
}

func getBuiltInStrategies() []Handler {
	return []Handler{
		new(holdforever.Strategy),
		new(buyandhold.Strategy),
		new(rsi.Strategy),
	}
}

// AddStrategy will add a strategy to the list of strategies
func AddStrategy(strategy Handler) error {
	if strategy == nil {
		return errNilStrategy
	}
	m.Lock()
	defer m.Unlock()
	for _, s := range append(getBuiltInStrategies(), userStrategies...) {
		if strings.EqualFold(s.Name(), strategy.Name()) {
			return fmt.Errorf("'%v' %w", strategy.Name(), errStrategyAlreadyExists)
		}
	}
	userStrategies = append(userStrategies, strategy)
	return nil
}
