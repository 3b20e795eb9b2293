// Package xtime implements the pure time-conversion functions used by the
// clock and bus subsystems: seconds/millis/micros/nanos conversions and
// UNIX-nanos <-> ISO-8601 (UTC) formatting.
package xtime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	nanosPerSecond  int64 = 1_000_000_000
	nanosPerMilli   int64 = 1_000_000
	nanosPerMicro   int64 = 1_000
	secsToNanosHigh       = 1_000_000_000_000 // 1e12: threshold used to distinguish secs vs nanos inputs
)

// SecsToNanos converts (possibly fractional) seconds to nanoseconds,
// truncating toward zero.
func SecsToNanos(secs float64) uint64 {
	return uint64(secs * float64(nanosPerSecond))
}

// NanosToSecs converts nanoseconds to fractional seconds.
func NanosToSecs(nanos uint64) float64 {
	return float64(nanos) / float64(nanosPerSecond)
}

// MillisToNanos converts milliseconds to nanoseconds.
func MillisToNanos(millis uint64) uint64 { return millis * uint64(nanosPerMilli) }

// NanosToMillis converts nanoseconds to milliseconds (integer truncation).
func NanosToMillis(nanos uint64) uint64 { return nanos / uint64(nanosPerMilli) }

// MicrosToNanos converts microseconds to nanoseconds.
func MicrosToNanos(micros uint64) uint64 { return micros * uint64(nanosPerMicro) }

// NanosToMicros converts nanoseconds to microseconds (integer truncation).
func NanosToMicros(nanos uint64) uint64 { return nanos / uint64(nanosPerMicro) }

// UnixNanosToTime converts UNIX nanoseconds to a UTC time.Time.
func UnixNanosToTime(nanos uint64) time.Time {
	return time.Unix(0, int64(nanos)).UTC()
}

// TimeToUnixNanos converts a time.Time to UNIX nanoseconds.
func TimeToUnixNanos(t time.Time) uint64 {
	return uint64(t.UnixNano())
}

// UnixNanosToISO8601 formats ns as an RFC 3339 UTC timestamp. When
// nanosPrecision is true the fractional part has 9 digits
// ("YYYY-MM-DDTHH:MM:SS.fffffffffZ"); otherwise it has 3
// ("YYYY-MM-DDTHH:MM:SS.fffZ"). Always UTC, always a trailing "Z".
func UnixNanosToISO8601(ns uint64, nanosPrecision bool) string {
	t := UnixNanosToTime(ns)
	if nanosPrecision {
		return t.Format("2006-01-02T15:04:05.000000000Z")
	}
	return t.Format("2006-01-02T15:04:05.000Z")
}

// ParseToUnixNanos converts a value to UNIX nanoseconds. Accepted forms
// per spec.md §4.1:
//   - time.Time: converted directly.
//   - numeric (int64, uint64, float64): treated as seconds if |v| < 1e12,
//     otherwise treated as nanoseconds already.
//   - string: parsed as an ISO-8601 timestamp first; if that fails, parsed
//     as a numeric literal and handled per the numeric rule above.
func ParseToUnixNanos(v any) (uint64, error) {
	switch val := v.(type) {
	case time.Time:
		return TimeToUnixNanos(val), nil
	case uint64:
		return numericToNanos(float64(val)), nil
	case int64:
		return numericToNanos(float64(val)), nil
	case int:
		return numericToNanos(float64(val)), nil
	case float64:
		return numericToNanos(val), nil
	case string:
		return parseStringToUnixNanos(val)
	default:
		return 0, fmt.Errorf("xtime: unsupported value type %T", v)
	}
}

func numericToNanos(v float64) uint64 {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	if abs < float64(secsToNanosHigh) {
		return SecsToNanos(v)
	}
	return uint64(v)
}

func parseStringToUnixNanos(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return TimeToUnixNanos(t.UTC()), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return numericToNanos(f), nil
	}
	return 0, fmt.Errorf("xtime: cannot parse %q as a timestamp", s)
}
