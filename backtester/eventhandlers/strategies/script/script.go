package script

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/candlelab/backtester/backtester/data/kline"
	"github.com/candlelab/backtester/backtester/eventhandlers/strategies/base"
	"github.com/candlelab/backtester/log"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/gofrs/uuid"
)

// Load reads and compiles a strategy script from file
func Load(file string) (*Strategy, error) {
	if filepath.Ext(file) == "" {
		file += Extension
	}
	code, err := os.ReadFile(file)
	if err != nil {
		return nil, &Error{Action: "Load: Read", Script: file, Cause: err}
	}
	s, err := New(file, code)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// New compiles source into a sandboxed strategy. name is only used to
// identify the script in logs and errors
func New(name string, source []byte) (*Strategy, error) {
	if len(source) == 0 {
		return nil, &Error{Action: "New", Script: name, Cause: ErrNoScript}
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, &Error{Action: "New: UUID", Script: name, Cause: err}
	}

	sc := tengo.NewScript(source)
	sc.SetImports(GetModuleMap())
	sc.EnableFileImport(false)
	sc.SetMaxAllocs(DefaultMaxAllocs)
	for _, v := range []string{ctxVar, stateVar, signalVar} {
		if err := sc.Add(v, nil); err != nil {
			return nil, &Error{Action: "New: Add", Script: name, Cause: err}
		}
	}
	compiled, err := sc.Compile()
	if err != nil {
		return nil, &Error{Action: "Compile", Script: name, Cause: err}
	}
	log.Debugf(log.Script, "compiled script %s ID: %v", filepath.Base(name), id)
	return &Strategy{
		ID:         id,
		File:       name,
		Timeout:    DefaultTimeout,
		compiled:   compiled,
		timeframes: make(map[string]*objectCache),
	}, nil
}

// GetModuleMap returns the modules scripts are allowed to import
func GetModuleMap() *tengo.ModuleMap {
	modules := stdlib.GetModuleMap(AllowedStdlibModules...)
	modules.AddBuiltinModule("crypto", CryptoModule)
	modules.AddBuiltinModule("ta", TAModule)
	return modules
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	if s.File == "" {
		return description
	}
	return description + ": " + filepath.Base(s.File)
}

// SetDefaults is a no-op, scripts read their settings from ctx.params
func (s *Strategy) SetDefaults() {}

// SetCustomSettings rejects settings, scripts read them from ctx.params
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	if len(customSettings) > 0 {
		return base.ErrCustomSettingsUnsupported
	}
	return nil
}

// OnSignal runs the script once against the step context. The call is
// bounded by the strategy timeout and any deadline carried by ctx. On
// success the script's state is copied back into the run state bag
func (s *Strategy) OnSignal(ctx context.Context, c *base.Context) (base.Signal, error) {
	if c == nil {
		return base.Signal{}, base.ErrNilContext
	}
	if s.compiled == nil {
		return base.Signal{}, &Error{Action: "Run", Script: s.File, Cause: ErrNoScript}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ct, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	scriptCtx, err := s.contextObject(c)
	if err != nil {
		return base.Signal{}, &Error{Action: "Run: Context", Script: s.File, Cause: err}
	}

	vm := s.compiled.Clone()
	if err = vm.Set(ctxVar, scriptCtx); err != nil {
		return base.Signal{}, &Error{Action: "Run: Set", Script: s.File, Cause: err}
	}
	state := make(map[string]any, len(c.State))
	for k, v := range c.State {
		state[k] = v
	}
	if err = vm.Set(stateVar, state); err != nil {
		return base.Signal{}, &Error{Action: "Run: Set", Script: s.File, Cause: err}
	}
	if err = vm.RunContext(ct); err != nil {
		return base.Signal{}, &Error{Action: "Run", Script: s.File, Cause: err}
	}

	newState := vm.Get(stateVar)
	if newState.ValueType() != (&tengo.Map{}).TypeName() {
		return base.Signal{}, &Error{Action: "Run: State", Script: s.File, Cause: ErrInvalidState}
	}
	for k := range c.State {
		delete(c.State, k)
	}
	for k, v := range newState.Map() {
		c.State[k] = v
	}
	return signalFromVariable(vm.Get(signalVar)), nil
}

func signalFromVariable(v *tengo.Variable) base.Signal {
	switch v.Value().(type) {
	case map[string]any:
		return base.SignalFromMap(v.Map())
	case string:
		return base.Signal{Action: base.ParseAction(v.String())}
	default:
		return base.Signal{Action: base.Hold}
	}
}

func (s *Strategy) contextObject(c *base.Context) (tengo.Object, error) {
	params, err := tengo.FromInterface(toInterfaceMap(c.Params))
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}

	s.m.Lock()
	defer s.m.Unlock()
	// the state bag lives for exactly one run, so it scopes the caches
	if run := reflect.ValueOf(c.State).Pointer(); run != s.run {
		s.run = run
		s.primary = objectCache{}
		s.timeframes = make(map[string]*objectCache)
	}
	timeframes := make(map[string]tengo.Object, len(c.Timeframes))
	labels := make([]string, 0, len(c.Timeframes))
	for label := range c.Timeframes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		cache, ok := s.timeframes[label]
		if !ok {
			cache = &objectCache{}
			s.timeframes[label] = cache
		}
		timeframes[label] = cache.view(c.Timeframes[label])
	}
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"candles":    s.primary.view(c.Candles),
		"index":      &tengo.Int{Value: int64(c.Index)},
		"candle":     candleObject(&c.Candle),
		"params":     params,
		"timeframes": &tengo.ImmutableMap{Value: timeframes},
	}}, nil
}

func toInterfaceMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// objectCache holds converted candles so each step only converts the
// candles it has not seen before
type objectCache struct {
	first   *kline.Candle
	objects []tengo.Object
}

func (o *objectCache) view(candles []kline.Candle) tengo.Object {
	if len(candles) == 0 {
		return &tengo.ImmutableArray{}
	}
	if first := &candles[0]; first != o.first || len(o.objects) > len(candles) {
		// views handed out earlier keep the old backing array
		o.first = first
		o.objects = make([]tengo.Object, 0, len(candles))
	}
	for i := len(o.objects); i < len(candles); i++ {
		o.objects = append(o.objects, candleObject(&candles[i]))
	}
	return &tengo.ImmutableArray{Value: o.objects[:len(candles):len(candles)]}
}

func candleObject(c *kline.Candle) tengo.Object {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"timestamp": &tengo.Int{Value: c.Time.UnixMilli()},
		"time":      &tengo.String{Value: c.Time.UTC().Format("2006-01-02T15:04:05Z07:00")},
		"open":      &tengo.Float{Value: c.Open},
		"high":      &tengo.Float{Value: c.High},
		"low":       &tengo.Float{Value: c.Low},
		"close":     &tengo.Float{Value: c.Close},
		"volume":    &tengo.Float{Value: c.Volume},
	}}
}

// Error returns the script error with its action and script name
func (e *Error) Error() string {
	var scriptName, action string
	if e.Script != "" {
		scriptName = fmt.Sprintf("(SCRIPT) %s ", filepath.Base(e.Script))
	}
	if e.Action != "" {
		action = fmt.Sprintf("(ACTION) %s ", e.Action)
	}
	return fmt.Sprintf("%s: %s%s%v", Name, action, scriptName, e.Cause)
}

// Unwrap returns e.Cause meeting errors interface requirements.
func (e *Error) Unwrap() error {
	return e.Cause
}
