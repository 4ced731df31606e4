package core

import (
	"math"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var NowFunc = time.Now // mockable

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Day truncates t to midnight of its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar day.
func Today() time.Time {
	return Day(NowFunc())
}

// ParseDay parses a YYYY-MM-DD string as a UTC calendar day.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, CleanString(s), time.UTC)
}

// Centi converts hours to hundredths of an hour, the precision hours are stored with.
func Centi(hours float64) int64 {
	return int64(math.Round(hours * 100))
}

// RoundHours rounds hours to two decimals.
func RoundHours(hours float64) float64 {
	return float64(Centi(hours)) / 100
}
