package convert

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/candlelab/backtester/common"
)

var (
	errNotFinite      = errors.New("value is not a finite number")
	errEmptyTimestamp = errors.New("empty timestamp")
)

// FloatFromString format
func FloatFromString(raw interface{}) (float64, error) {
	str, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("unable to parse, value not string: %T", raw)
	}
	flt, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0, fmt.Errorf("could not convert value: %s Error: %w", str, err)
	}
	return flt, nil
}

// FiniteFloatFromString parses a string into a float64 and rejects NaN and
// infinite values
func FiniteFloatFromString(str string) (float64, error) {
	flt, err := FloatFromString(str)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(flt) || math.IsInf(flt, 0) {
		return 0, fmt.Errorf("%w: %s", errNotFinite, str)
	}
	return flt, nil
}

// Int64FromString format
func Int64FromString(raw interface{}) (int64, error) {
	str, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("unable to parse, value not string: %T", raw)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse as int64: %T %w", raw, err)
	}
	return n, nil
}

// UnixTimestampToTime converts an integer unix timestamp into a UTC time.
// Magnitudes above 1e12 are treated as milliseconds.
func UnixTimestampToTime(ts int64) time.Time {
	if ts > 1e12 || ts < -1e12 {
		return time.UnixMilli(ts).UTC()
	}
	return time.Unix(ts, 0).UTC()
}

// TimeFromString parses an ISO-8601 instant, a "YYYY-MM-DD HH:MM:SS" date
// time or a bare date. Inputs without a zone are treated as UTC.
func TimeFromString(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errEmptyTimestamp
	}
	if t, err := time.Parse(common.SimpleTimeFormat, s); err == nil {
		return t.UTC(), nil
	}
	s = strings.Replace(s, " ", "T", 1)
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp %q", raw)
}

// BoolPtr takes in boolean condition and returns pointer version of it
func BoolPtr(condition bool) *bool {
	b := condition
	return &b
}
