package coding

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the human-readable form used by the time converters.
const TimestampLayout = "2006-01-02 15:04:05"

// Epoch seconds of 0001-01-01 00:00:00 and 9999-12-31 23:59:59 UTC.
const (
	minEpoch = -62135596800
	maxEpoch = 253402300799
)

// FormatTimestamp renders t in loc using TimestampLayout.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(TimestampLayout)
}

// EpochToTimestamp converts a Unix time in seconds, fractions allowed, to
// TimestampLayout in loc.
func EpochToTimestamp(epoch string, loc *time.Location) (string, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(epoch), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("time error: %q is not a number", epoch)
	}
	if f < minEpoch || f > maxEpoch {
		return "", fmt.Errorf("time error: %q is outside years 1-9999", epoch)
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return FormatTimestamp(time.Unix(sec, nsec), loc), nil
}

// TimestampToEpoch parses s as TimestampLayout in loc and returns Unix seconds.
func TimestampToEpoch(s string, loc *time.Location) (int64, error) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return 0, fmt.Errorf("time error: use format YYYY-MM-DD HH:MM:SS: %w", err)
	}
	return t.Unix(), nil
}
