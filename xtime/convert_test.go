package xtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecsNanosRoundTrip(t *testing.T) {
	ns := SecsToNanos(1.5)
	assert.Equal(t, uint64(1_500_000_000), ns)
	assert.InDelta(t, 1.5, NanosToSecs(ns), 1e-9)
}

func TestMillisMicrosConversions(t *testing.T) {
	assert.Equal(t, uint64(2_000_000), MillisToNanos(2))
	assert.Equal(t, uint64(2), NanosToMillis(2_000_000))
	assert.Equal(t, uint64(3_000), MicrosToNanos(3))
	assert.Equal(t, uint64(3), NanosToMicros(3_000))
}

func TestUnixNanosToISO8601(t *testing.T) {
	// 2024-01-02T03:04:05.123456789Z
	ns := uint64(time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.UTC).UnixNano())

	assert.Equal(t, "2024-01-02T03:04:05.123456789Z", UnixNanosToISO8601(ns, true))
	assert.Equal(t, "2024-01-02T03:04:05.123Z", UnixNanosToISO8601(ns, false))
}

func TestUnixNanosToISO8601RoundTrip(t *testing.T) {
	ns := uint64(time.Date(2026, 8, 1, 12, 30, 0, 42, time.UTC).UnixNano())

	formatted := UnixNanosToISO8601(ns, true)
	back, err := ParseToUnixNanos(formatted)
	require.NoError(t, err)
	assert.Equal(t, ns, back)
}

func TestParseToUnixNanosNumeric(t *testing.T) {
	secs, err := ParseToUnixNanos(float64(10))
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000_000), secs)

	nanos, err := ParseToUnixNanos(float64(5_000_000_000_000)) // > 1e12 -> already nanos
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000_000_000), nanos)
}

func TestParseToUnixNanosTime(t *testing.T) {
	now := time.Now().UTC()
	got, err := ParseToUnixNanos(now)
	require.NoError(t, err)
	assert.Equal(t, uint64(now.UnixNano()), got)
}

func TestParseToUnixNanosInvalid(t *testing.T) {
	_, err := ParseToUnixNanos("not a timestamp")
	require.Error(t, err)

	_, err = ParseToUnixNanos(struct{}{})
	require.Error(t, err)
}
