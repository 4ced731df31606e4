package progress

import (
	"math"
	"time"

	"github.com/trezcool/studylog/core"
)

const DefaultConsistencyWindowDays = 28

// WindowStart returns the first day of the window of windowDays days ending today.
func WindowStart(today time.Time, windowDays int) time.Time {
	return core.Day(today).AddDate(0, 0, -(windowDays - 1))
}

// ConsistencyScore rates the approved hours of the last 28 days against the weekly target, from 0 to 100.
func ConsistencyScore(days []DayHours, targetHoursPerWeek int, today time.Time) int {
	return WindowedConsistencyScore(days, targetHoursPerWeek, today, DefaultConsistencyWindowDays)
}

// WindowedConsistencyScore is ConsistencyScore over a window of windowDays days ending today.
// The target for the window is targetHoursPerWeek scaled to its length (x4 for 28 days).
func WindowedConsistencyScore(days []DayHours, targetHoursPerWeek int, today time.Time, windowDays int) int {
	if targetHoursPerWeek <= 0 || windowDays <= 0 {
		return 0
	}

	today = core.Day(today)
	start := WindowStart(today, windowDays)

	var total int64 // centi-hours
	for _, dh := range days {
		d := core.Day(dh.Day)
		if d.Before(start) || d.After(today) {
			continue
		}
		total += core.Centi(dh.Hours)
	}

	target := float64(targetHoursPerWeek) * float64(windowDays) / 7
	score := math.Round(float64(total) / target) // centi-hours / target hours = percentage
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return int(score)
}
