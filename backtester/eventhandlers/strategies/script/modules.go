package script

import (
	"errors"

	"github.com/candlelab/backtester/common/crypto"
	"github.com/d5/tengo/v2"
	"github.com/thrasher-corp/gct-ta/indicators"
)

var errNotEnoughValues = errors.New("not enough values for indicator period")

// CryptoModule exposes hashing helpers to scripts
var CryptoModule = map[string]tengo.Object{
	"sha256": &tengo.UserFunction{Name: "sha256", Value: sha256Hex},
}

// TAModule exposes technical analysis indicators to scripts
var TAModule = map[string]tengo.Object{
	"rsi": &tengo.UserFunction{Name: "rsi", Value: rsi},
	"sma": &tengo.UserFunction{Name: "sma", Value: sma},
	"ema": &tengo.UserFunction{Name: "ema", Value: ema},
}

// sha256Hex returns the hex encoded SHA256 digest of a string
// Params: input string
func sha256Hex(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 1 {
		return nil, tengo.ErrWrongNumArguments
	}
	input, ok := tengo.ToString(args[0])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{
			Name:     "first",
			Expected: "string(compatible)",
			Found:    args[0].TypeName(),
		}
	}
	return &tengo.String{Value: crypto.SHA256Hex(input)}, nil
}

// rsi calculates the relative strength index
// Params: values []float, period int
func rsi(args ...tengo.Object) (tengo.Object, error) {
	return indicator(args, indicators.RSI)
}

// sma calculates the simple moving average
// Params: values []float, period int
func sma(args ...tengo.Object) (tengo.Object, error) {
	return indicator(args, indicators.SMA)
}

// ema calculates the exponential moving average
// Params: values []float, period int
func ema(args ...tengo.Object) (tengo.Object, error) {
	return indicator(args, indicators.EMA)
}

// indicator returns a script error value rather than aborting the script
// when there are not enough values for the period
func indicator(args []tengo.Object, calc func([]float64, int) []float64) (tengo.Object, error) {
	values, period, err := indicatorArgs(args)
	if err != nil {
		if errors.Is(err, errNotEnoughValues) {
			return &tengo.Error{Value: &tengo.String{Value: err.Error()}}, nil
		}
		return nil, err
	}
	return toArray(calc(values, period)), nil
}

func indicatorArgs(args []tengo.Object) ([]float64, int, error) {
	if len(args) != 2 {
		return nil, 0, tengo.ErrWrongNumArguments
	}
	raw, ok := tengo.ToInterface(args[0]).([]any)
	if !ok {
		return nil, 0, tengo.ErrInvalidArgumentType{
			Name:     "first",
			Expected: "array",
			Found:    args[0].TypeName(),
		}
	}
	values := make([]float64, len(raw))
	for i := range raw {
		switch v := raw[i].(type) {
		case float64:
			values[i] = v
		case int64:
			values[i] = float64(v)
		default:
			return nil, 0, tengo.ErrInvalidArgumentType{
				Name:     "first",
				Expected: "array of numbers",
				Found:    args[0].TypeName(),
			}
		}
	}
	period, ok := tengo.ToInt(args[1])
	if !ok || period <= 0 {
		return nil, 0, tengo.ErrInvalidArgumentType{
			Name:     "second",
			Expected: "positive int",
			Found:    args[1].TypeName(),
		}
	}
	if len(values) <= period {
		return nil, 0, errNotEnoughValues
	}
	return values, period, nil
}

func toArray(values []float64) tengo.Object {
	resp := make([]tengo.Object, len(values))
	for i := range values {
		resp[i] = &tengo.Float{Value: values[i]}
	}
	return &tengo.Array{Value: resp}
}
