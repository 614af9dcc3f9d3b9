package types

import (
	"fmt"
	"time"
)

const millisPerDay = int64(24 * time.Hour / time.Millisecond)

// CivilDay returns the DATE value (unix-millis of civil UTC midnight) for
// the given calendar date.
func CivilDay(year int, month time.Month, day int) int64 {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return t.UnixMilli()
}

// ParseCivilDay parses a "YYYY-MM-DD" string (the format TPC-H .tbl
// fixtures and this engine's TOML table fixtures both spell DATE
// literals in) into a DATE value.
func ParseCivilDay(s string) (int64, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, fmt.Errorf("types: invalid date %q: %w", s, err)
	}
	return t.UnixMilli(), nil
}

// DateToTime converts a DATE value back to a UTC time.Time at midnight.
func DateToTime(unixMillis int64) time.Time {
	return time.UnixMilli(unixMillis).UTC()
}

// AddDays returns the DATE value n civil days after d.
func AddDays(d int64, n int) int64 {
	return d + int64(n)*millisPerDay
}
