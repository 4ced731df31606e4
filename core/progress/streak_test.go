package progress

import (
	"testing"
	"time"
)

func TestStreak(t *testing.T) {
	today := time.Date(2021, 3, 10, 0, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return today.AddDate(0, 0, offset) }

	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{name: "no dates", dates: nil, want: 0},
		{name: "today only", dates: []time.Time{day(0)}, want: 1},
		{name: "yesterday only", dates: []time.Time{day(-1)}, want: 1},
		{name: "two days ago only", dates: []time.Time{day(-2)}, want: 0},
		{name: "three days in a row", dates: []time.Time{day(0), day(-1), day(-2)}, want: 3},
		{name: "unsorted", dates: []time.Time{day(-2), day(0), day(-1)}, want: 3},
		{name: "ending yesterday", dates: []time.Time{day(-1), day(-2), day(-3)}, want: 3},
		{name: "gap breaks the streak", dates: []time.Time{day(0), day(-1), day(-3), day(-4)}, want: 2},
		{name: "duplicates count once", dates: []time.Time{day(0), day(0), day(-1), day(-1)}, want: 2},
		{
			name:  "same day, different times",
			dates: []time.Time{day(0).Add(23 * time.Hour), day(0).Add(time.Hour), day(-1).Add(12 * time.Hour)},
			want:  2,
		},
		{name: "future dates are ignored", dates: []time.Time{day(2), day(1), day(0)}, want: 1},
		{name: "only future dates", dates: []time.Time{day(1)}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Streak(tt.dates, today); got != tt.want {
				t.Errorf("Streak() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestStreak_normalizesToUTC(t *testing.T) {
	today := time.Date(2021, 3, 10, 0, 0, 0, 0, time.UTC)
	kinshasa := time.FixedZone("WAT", 1*60*60)

	// 2021-03-10 00:30 in UTC+1 is 2021-03-09 23:30 UTC
	dates := []time.Time{time.Date(2021, 3, 10, 0, 30, 0, 0, kinshasa)}
	if got := Streak(dates, today); got != 1 {
		t.Errorf("Streak() = %v; want 1", got)
	}

	// today given with a time of day
	if got := Streak([]time.Time{today}, today.Add(18*time.Hour)); got != 1 {
		t.Errorf("Streak() = %v; want 1", got)
	}
}
