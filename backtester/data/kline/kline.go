package kline

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/candlelab/backtester/common/convert"
)

// ParseInterval converts a timeframe label such as "15m", "4h" or "1d" into
// an Interval
func ParseInterval(label string) (Interval, error) {
	m := timeframeRegex.FindStringSubmatch(label)
	if m == nil {
		return 0, fmt.Errorf("%w %q, expected format <number><m|h|d>", ErrInvalidTimeframe, label)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w %q, bucket size must be positive", ErrInvalidTimeframe, label)
	}
	var unit time.Duration
	switch m[2] {
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}
	if n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("%w %q, bucket size overflows", ErrInvalidTimeframe, label)
	}
	return Interval(time.Duration(n) * unit), nil
}

// ValidateTimeframes checks every label and returns the first failure
func ValidateTimeframes(labels []string) error {
	for i := range labels {
		if _, err := ParseInterval(labels[i]); err != nil {
			return err
		}
	}
	return nil
}

// Duration returns interval casted as time.Duration for compatibility
func (i Interval) Duration() time.Duration {
	return time.Duration(i)
}

// String returns numeric string
func (i Interval) String() string {
	return i.Duration().String()
}

// Short returns short string version of interval
func (i Interval) Short() string {
	s := i.String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}

// BucketStart returns the start of the bucket t falls into, computed as
// floor(unix ms / bucket ms) * bucket ms
func (i Interval) BucketStart(t time.Time) time.Time {
	size := i.Duration().Milliseconds()
	ms := t.UnixMilli()
	bucket := ms / size
	if ms%size != 0 && ms < 0 {
		bucket--
	}
	return time.UnixMilli(bucket * size).UTC()
}

// ParseTimestamp accepts unix seconds, unix milliseconds, ISO-8601 and
// "YYYY-MM-DD HH:MM:SS" timestamps
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if n, err := convert.Int64FromString(raw); err == nil {
		return convert.UnixTimestampToTime(n), nil
	}
	t, err := convert.TimeFromString(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", errInvalidTimestamp, err)
	}
	return t, nil
}

// ParseRow validates a raw row into a Candle. Open, high, low and close must
// be finite numbers, volume falls back to zero when absent or unparsable
func ParseRow(r *Row) (Candle, error) {
	t, err := ParseTimestamp(r.Timestamp)
	if err != nil {
		return Candle{}, err
	}
	var prices [4]float64
	for i, v := range [4]string{r.Open, r.High, r.Low, r.Close} {
		prices[i], err = convert.FiniteFloatFromString(v)
		if err != nil {
			return Candle{}, fmt.Errorf("%w: %w", errInvalidPrice, err)
		}
	}
	volume, err := convert.FiniteFloatFromString(r.Volume)
	if err != nil {
		volume = 0
	}
	return Candle{
		Time:   t,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: volume,
	}, nil
}

// Validate checks a candle built from a non textual source
func (c *Candle) Validate() error {
	if c.Time.IsZero() {
		return errInvalidTimestamp
	}
	for _, p := range [4]float64{c.Open, c.High, c.Low, c.Close} {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return errInvalidPrice
		}
	}
	if math.IsNaN(c.Volume) || math.IsInf(c.Volume, 0) {
		c.Volume = 0
	}
	return nil
}

// Aggregate buckets time ascending candles into the timeframe described by
// label. Candles keep their input order inside a bucket and one candle is
// emitted per non-empty bucket, ascending by bucket start
func Aggregate(candles []Candle, label string) ([]Candle, error) {
	interval, err := ParseInterval(label)
	if err != nil {
		return nil, err
	}
	return interval.aggregate(candles), nil
}

func (i Interval) aggregate(candles []Candle) []Candle {
	resp := make([]Candle, 0, len(candles))
	buckets := make(map[int64]int)
	for x := range candles {
		start := i.BucketStart(candles[x].Time)
		idx, ok := buckets[start.UnixMilli()]
		if !ok {
			buckets[start.UnixMilli()] = len(resp)
			resp = append(resp, Candle{
				Time:   start,
				Open:   candles[x].Open,
				High:   candles[x].High,
				Low:    candles[x].Low,
				Close:  candles[x].Close,
				Volume: candles[x].Volume,
			})
			continue
		}
		if candles[x].High > resp[idx].High {
			resp[idx].High = candles[x].High
		}
		if candles[x].Low < resp[idx].Low {
			resp[idx].Low = candles[x].Low
		}
		resp[idx].Close = candles[x].Close
		resp[idx].Volume += candles[x].Volume
	}
	sort.SliceStable(resp, func(a, b int) bool {
		return resp[a].Time.Before(resp[b].Time)
	})
	return resp
}

// BuildMultiTimeframe aggregates raw into every requested timeframe
func BuildMultiTimeframe(raw []Candle, timeframes []string) (Dataset, error) {
	if err := ValidateTimeframes(timeframes); err != nil {
		return nil, err
	}
	ds := make(Dataset, len(timeframes))
	for _, label := range timeframes {
		aggregated, err := Aggregate(raw, label)
		if err != nil {
			return nil, err
		}
		ds[label] = aggregated
	}
	return ds, nil
}

// Primary returns the label with the smallest bucket duration. Equal
// durations resolve to the lexically smallest label
func (d Dataset) Primary() (string, error) {
	if len(d) == 0 {
		return "", ErrNoData
	}
	var (
		primary  string
		smallest Interval
	)
	for _, label := range d.Labels() {
		interval, err := ParseInterval(label)
		if err != nil {
			return "", err
		}
		if primary == "" || interval < smallest {
			primary, smallest = label, interval
		}
	}
	return primary, nil
}

// Labels returns the dataset timeframes in sorted order
func (d Dataset) Labels() []string {
	labels := make([]string, 0, len(d))
	for label := range d {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Closes returns the close prices of a candle series
func Closes(candles []Candle) []float64 {
	resp := make([]float64, len(candles))
	for i := range candles {
		resp[i] = candles[i].Close
	}
	return resp
}
