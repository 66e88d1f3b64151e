package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatFromString(t *testing.T) {
	t.Parallel()
	f, err := FloatFromString(" 1.41421356237 ")
	require.NoError(t, err)
	assert.Equal(t, 1.41421356237, f)

	_, err = FloatFromString([]byte("1"))
	assert.Error(t, err, "non-string input should error")

	_, err = FloatFromString("   something unconvertible  ")
	assert.Error(t, err)
}

func TestFiniteFloatFromString(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"NaN", "Inf", "-Inf", "+Inf"} {
		_, err := FiniteFloatFromString(in)
		assert.ErrorIs(t, err, errNotFinite, in)
	}
	f, err := FiniteFloatFromString("101.5")
	require.NoError(t, err)
	assert.Equal(t, 101.5, f)
}

func TestInt64FromString(t *testing.T) {
	t.Parallel()
	n, err := Int64FromString("4398046511104")
	require.NoError(t, err)
	assert.Equal(t, int64(1<<42), n)
	_, err = Int64FromString("1.5")
	assert.Error(t, err)
	_, err = Int64FromString(5)
	assert.Error(t, err)
}

func TestUnixTimestampToTime(t *testing.T) {
	t.Parallel()
	expected := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	assert.Equal(t, expected, UnixTimestampToTime(1700000000))
	assert.Equal(t, expected, UnixTimestampToTime(1700000000000))
}

func TestTimeFromString(t *testing.T) {
	t.Parallel()
	expected := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, in := range []string{
		"2024-01-02T03:04:05Z",
		"2024-01-02T03:04:05",
		"2024-01-02 03:04:05",
		"2024-01-02T05:04:05+02:00",
	} {
		got, err := TimeFromString(in)
		require.NoError(t, err, in)
		assert.True(t, expected.Equal(got), in)
	}
	got, err := TimeFromString("2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)

	_, err = TimeFromString("")
	assert.ErrorIs(t, err, errEmptyTimestamp)
	_, err = TimeFromString("yesterday")
	assert.Error(t, err)
}

func TestBoolPtr(t *testing.T) {
	t.Parallel()
	y := BoolPtr(true)
	if !*y {
		t.Fatal("true expected received false")
	}
	z := BoolPtr(false)
	if *z {
		t.Fatal("false expected received true")
	}
}
