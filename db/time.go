package db

import "time"

// TimeFormat formats t as RFC3339 in UTC, the format every store writes.
func TimeFormat(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// timeLayoutNano has a fixed width, so formatted values sort lexically in
// chronological order.
const timeLayoutNano = "2006-01-02T15:04:05.000000000Z07:00"

// TimeFormatNano formats t in UTC with nanoseconds and a fixed width. Stores
// that keep times as text use it where comparisons need sub-second precision.
func TimeFormatNano(t time.Time) string {
	return t.UTC().Format(timeLayoutNano)
}

// TimeParse parses an RFC3339 string, with or without fractional seconds. The empty string is the zero time.
func TimeParse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
