package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/progress"
)

type progressRepository struct {
	db *logTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) CreateLog(_ context.Context, l progress.Log) (progress.Log, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[l.ID] = &l
	return l, nil
}

func (repo *progressRepository) GetLog(_ context.Context, id string) (progress.Log, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if l, ok := repo.db.table[id]; ok {
		return *l, nil
	}
	return progress.Log{}, progress.ErrLogNotFound
}

func (repo *progressRepository) UpdateLog(_ context.Context, l progress.Log) (progress.Log, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[l.ID]
	if !ok {
		return progress.Log{}, progress.ErrLogNotFound
	}
	if orig.IsApproved {
		return progress.Log{}, progress.ErrAlreadyReviewed
	}
	orig.Date = l.Date
	orig.Hours = l.Hours
	orig.Activity = l.Activity
	orig.EvidenceURL = l.EvidenceURL
	orig.UpdatedAt = l.UpdatedAt
	return *orig, nil
}

func (repo *progressRepository) ApproveLog(_ context.Context, l progress.Log) (progress.Log, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[l.ID]
	if !ok {
		return progress.Log{}, progress.ErrLogNotFound
	}
	if orig.IsApproved {
		return progress.Log{}, progress.ErrAlreadyReviewed
	}
	orig.IsApproved = true
	orig.MentorRating = l.MentorRating
	orig.QuizScore = l.QuizScore
	orig.ApprovedBy = l.ApprovedBy
	orig.UpdatedAt = l.UpdatedAt
	return *orig, nil
}

func (repo *progressRepository) DeletePendingLog(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	l, ok := repo.db.table[id]
	if !ok {
		return progress.ErrLogNotFound
	}
	if l.IsApproved {
		return progress.ErrAlreadyReviewed
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *progressRepository) QueryLogs(_ context.Context, filter progress.QueryFilter, orderings ...core.DBOrdering) ([]progress.Log, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	from, to := filter.From(), filter.To()
	logs := make([]progress.Log, 0)
	for _, l := range repo.db.table {
		if filter.StudentID != "" && l.StudentID != filter.StudentID {
			continue
		}
		if filter.ModuleID != "" && l.ModuleID != filter.ModuleID {
			continue
		}
		if filter.IsApproved != nil && l.IsApproved != *filter.IsApproved {
			continue
		}
		if !from.IsZero() && l.Date.Before(from) {
			continue
		}
		if !to.IsZero() && l.Date.After(to) {
			continue
		}
		logs = append(logs, *l)
	}

	orderings = core.CleanOrderings(orderings, logOrderingFields)
	if len(orderings) == 0 {
		orderings = defaultLogOrdering
	}
	sort.SliceStable(logs, func(i, j int) bool {
		for _, ord := range orderings {
			c := compareLogs(logs[i], logs[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return logs, nil
}

var (
	logOrderingFields = map[string]string{
		"date":       "date",
		"hours":      "hours",
		"created_at": "created_at",
	}
	defaultLogOrdering = []core.DBOrdering{{Field: "date"}, {Field: "created_at"}}
)

func compareLogs(a, b progress.Log, field string) int {
	switch field {
	case "date":
		return compareTimes(a.Date, b.Date)
	case "hours":
		return int(core.Centi(a.Hours) - core.Centi(b.Hours))
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
	return 0
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func (repo *progressRepository) QueryApprovedDays(_ context.Context, studentID string, since time.Time) ([]progress.DayHours, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	since = core.Day(since)
	sums := make(map[time.Time]int64)
	for _, l := range repo.db.table {
		if l.StudentID != studentID || !l.IsApproved {
			continue
		}
		day := core.Day(l.Date)
		if day.Before(since) {
			continue
		}
		sums[day] += core.Centi(l.Hours)
	}

	days := make([]progress.DayHours, 0, len(sums))
	for day, centi := range sums {
		days = append(days, progress.DayHours{Day: day, Hours: float64(centi) / 100})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.After(days[j].Day) })
	return days, nil
}

func (repo *progressRepository) SumHoursForDate(_ context.Context, studentID string, date time.Time, excludeLogID string) (float64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	date = core.Day(date)
	var sum int64
	for _, l := range repo.db.table {
		if l.StudentID == studentID && l.ID != excludeLogID && core.Day(l.Date).Equal(date) {
			sum += core.Centi(l.Hours)
		}
	}
	return float64(sum) / 100, nil
}

func (repo *progressRepository) TotalApprovedHours(_ context.Context, studentID string) (float64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var sum int64
	for _, l := range repo.db.table {
		if l.StudentID == studentID && l.IsApproved {
			sum += core.Centi(l.Hours)
		}
	}
	return float64(sum) / 100, nil
}

func (repo *progressRepository) QueryApprovedTotals(_ context.Context) (map[string]float64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sums := make(map[string]int64)
	for _, l := range repo.db.table {
		if l.IsApproved {
			sums[l.StudentID] += core.Centi(l.Hours)
		}
	}
	totals := make(map[string]float64, len(sums))
	for id, centi := range sums {
		totals[id] = float64(centi) / 100
	}
	return totals, nil
}
