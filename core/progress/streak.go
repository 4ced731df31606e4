package progress

import (
	"sort"
	"time"

	"github.com/trezcool/studylog/core"
)

// Streak returns the number of consecutive days, ending today or yesterday, on which the student has an approved log.
// Dates are taken as UTC days; duplicates count once and days after today are ignored.
func Streak(dates []time.Time, today time.Time) int {
	today = core.Day(today)

	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = core.Day(d)
		if d.After(today) {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	if len(days) == 0 {
		return 0
	}

	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	yesterday := today.AddDate(0, 0, -1)
	if days[0].Before(yesterday) {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if !days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
			break
		}
		streak++
	}
	return streak
}
