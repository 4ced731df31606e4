package progress

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/student"
)

var (
	// errors
	ErrLogNotFound     = core.NewNotFoundError("log")
	ErrAlreadyReviewed = errors.New("log has already been approved")

	errFutureDate      = errors.New("date cannot be in the future")
	errModuleNotInPath = errors.New("module is not part of the student's track")
)

type (
	Repository interface {
		CreateLog(ctx context.Context, l Log) (Log, error)
		GetLog(ctx context.Context, id string) (Log, error)
		// UpdateLog saves a pending log; ErrAlreadyReviewed is returned if it was approved meanwhile.
		UpdateLog(ctx context.Context, l Log) (Log, error)
		// ApproveLog sets the review fields and approves a pending log.
		// ErrAlreadyReviewed is returned if the log is already approved.
		ApproveLog(ctx context.Context, l Log) (Log, error)
		// DeletePendingLog removes a log that is not approved yet.
		DeletePendingLog(ctx context.Context, id string) error
		QueryLogs(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Log, error)

		// QueryApprovedDays returns one entry per day with approved hours, since `since` (all days if zero).
		QueryApprovedDays(ctx context.Context, studentID string, since time.Time) ([]DayHours, error)
		// SumHoursForDate sums all the student's logs on date, approved or not, except excludeLogID.
		SumHoursForDate(ctx context.Context, studentID string, date time.Time, excludeLogID string) (float64, error)
		TotalApprovedHours(ctx context.Context, studentID string) (float64, error)
		// QueryApprovedTotals returns the total approved hours keyed by student ID (students without approved logs are absent).
		QueryApprovedTotals(ctx context.Context) (map[string]float64, error)
	}

	StudentService interface {
		GetByID(ctx context.Context, id string) (student.Student, error)
		QueryActive(ctx context.Context) ([]student.Student, error)
	}

	CurriculumService interface {
		Module(ctx context.Context, id string) (curriculum.Module, error)
		IsUnlocked(ctx context.Context, trackID, studentID, moduleID string) (bool, error)
	}

	Service struct {
		repo       Repository
		students   StudentService
		curriculum CurriculumService
		mailSvc    core.EmailService
		logger     core.Logger
		policy     Policy
		windowDays int
	}
)

func NewService(
	conf *core.Config,
	repo Repository,
	students StudentService,
	curriculum CurriculumService,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	svc := &Service{
		repo:       repo,
		students:   students,
		curriculum: curriculum,
		mailSvc:    mailSvc,
		logger:     logger,
		policy:     DefaultPolicy(),
		windowDays: DefaultConsistencyWindowDays,
	}
	if conf != nil {
		if conf.Progress.DailyHourCap > 0 {
			svc.policy.DailyHourCap = conf.Progress.DailyHourCap
		}
		if conf.Progress.ConsistencyWindowDays > 0 {
			svc.windowDays = conf.Progress.ConsistencyWindowDays
		}
	}
	return svc
}

func (svc *Service) Policy() Policy { return svc.policy }

// Create submits a new pending log for the student. The payload must have been validated.
func (svc *Service) Create(ctx context.Context, studentID string, nl NewLog) (Log, error) {
	stdnt, err := svc.students.GetByID(ctx, studentID)
	if err != nil {
		return Log{}, errors.Wrap(err, "getting student")
	}
	if !stdnt.IsActive() {
		return Log{}, core.NewValidationError(student.ErrInactive)
	}

	mod, err := svc.checkModule(ctx, stdnt, nl.ModuleID)
	if err != nil {
		return Log{}, err
	}

	date := nl.Day()
	if err = checkDate(date); err != nil {
		return Log{}, err
	}

	existing, err := svc.repo.SumHoursForDate(ctx, stdnt.ID, date, "")
	if err != nil {
		return Log{}, errors.Wrap(err, "summing hours for date")
	}
	decision := CheckSubmission(svc.policy, Submission{
		HasProject:    mod.HasProject,
		EvidenceURL:   nl.EvidenceURL,
		ExistingHours: existing,
		ProposedHours: nl.Hours,
	})
	if err = decision.Err(); err != nil {
		return Log{}, err
	}

	now := core.NowFunc().UTC()
	l := Log{
		ID:          uuid.New().String(),
		StudentID:   stdnt.ID,
		ModuleID:    mod.ID,
		Date:        date,
		Hours:       core.RoundHours(nl.Hours),
		Activity:    nl.Activity,
		EvidenceURL: nl.EvidenceURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateLog(ctx, l)
}

// Update edits a pending log. The payload must have been validated against the original log.
func (svc *Service) Update(ctx context.Context, orig Log, ul UpdateLog) (Log, error) {
	if orig.IsApproved {
		return Log{}, ErrAlreadyReviewed
	}

	stdnt, err := svc.students.GetByID(ctx, orig.StudentID)
	if err != nil {
		return Log{}, errors.Wrap(err, "getting student")
	}
	if !stdnt.IsActive() {
		return Log{}, core.NewValidationError(student.ErrInactive)
	}

	mod, err := svc.checkModule(ctx, stdnt, orig.ModuleID)
	if err != nil {
		return Log{}, err
	}

	date, err := core.ParseDay(ul.Date)
	if err != nil {
		return Log{}, errors.Wrap(err, "parsing date")
	}
	if err = checkDate(date); err != nil {
		return Log{}, err
	}

	existing, err := svc.repo.SumHoursForDate(ctx, orig.StudentID, date, orig.ID)
	if err != nil {
		return Log{}, errors.Wrap(err, "summing hours for date")
	}
	decision := CheckSubmission(svc.policy, Submission{
		HasProject:    mod.HasProject,
		EvidenceURL:   *ul.EvidenceURL,
		ExistingHours: existing,
		ProposedHours: *ul.Hours,
	})
	if err = decision.Err(); err != nil {
		return Log{}, err
	}

	l := orig
	l.Date = date
	l.Hours = core.RoundHours(*ul.Hours)
	l.Activity = ul.Activity
	l.EvidenceURL = *ul.EvidenceURL
	l.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateLog(ctx, l)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Log, error) {
	return svc.repo.GetLog(ctx, core.CleanString(id))
}

// Approve approves a pending log; approval cannot be undone.
func (svc *Service) Approve(ctx context.Context, id string, r Review, approvedBy string) (Log, error) {
	l, err := svc.repo.GetLog(ctx, id)
	if err != nil {
		return Log{}, errors.Wrap(err, "getting log")
	}
	if l.IsApproved {
		return Log{}, ErrAlreadyReviewed
	}

	l.IsApproved = true
	l.MentorRating = r.MentorRating
	l.QuizScore = r.QuizScore
	l.ApprovedBy = approvedBy
	l.UpdatedAt = core.NowFunc().UTC()
	l, err = svc.repo.ApproveLog(ctx, l)
	if err != nil {
		return Log{}, errors.Wrap(err, "approving log")
	}

	svc.notify(ctx, l, "Progress log approved", fmt.Sprintf(
		"Your log of %.2f hours on %s has been approved.", l.Hours, l.Date.Format(core.DateLayout),
	))
	return l, nil
}

// Reject deletes a pending log; approved logs cannot be rejected.
func (svc *Service) Reject(ctx context.Context, id string) error {
	l, err := svc.repo.GetLog(ctx, id)
	if err != nil {
		return errors.Wrap(err, "getting log")
	}
	if l.IsApproved {
		return ErrAlreadyReviewed
	}
	if err = svc.repo.DeletePendingLog(ctx, id); err != nil {
		return errors.Wrap(err, "deleting log")
	}

	svc.notify(ctx, l, "Progress log rejected", fmt.Sprintf(
		"Your log of %.2f hours on %s has been rejected. Please submit it again with the requested changes.",
		l.Hours, l.Date.Format(core.DateLayout),
	))
	return nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Log, error) {
	return svc.repo.QueryLogs(ctx, filter, orderings...)
}

// Standing computes the streak, consistency score, total hours and rank of a student as of today.
func (svc *Service) Standing(ctx context.Context, stdnt student.Student, today time.Time) (Standing, error) {
	today = core.Day(today)

	days, err := svc.repo.QueryApprovedDays(ctx, stdnt.ID, WindowStart(today, svc.windowDays))
	if err != nil {
		return Standing{}, errors.Wrap(err, "querying approved days")
	}
	streak := Streak(dayDates(days), today)
	if streak >= svc.windowDays-1 {
		// the streak may go on before the window
		history, err := svc.repo.QueryApprovedDays(ctx, stdnt.ID, time.Time{})
		if err != nil {
			return Standing{}, errors.Wrap(err, "querying approved history")
		}
		streak = Streak(dayDates(history), today)
	}

	total, err := svc.repo.TotalApprovedHours(ctx, stdnt.ID)
	if err != nil {
		return Standing{}, errors.Wrap(err, "getting total approved hours")
	}

	_, totals, err := svc.activeTotals(ctx)
	if err != nil {
		return Standing{}, err
	}
	others := make([]float64, 0, len(totals))
	for id, t := range totals {
		if id != stdnt.ID {
			others = append(others, t)
		}
	}

	return Standing{
		StudentID:          stdnt.ID,
		Streak:             streak,
		ConsistencyScore:   WindowedConsistencyScore(days, stdnt.TargetHoursPerWeek, today, svc.windowDays),
		TotalApprovedHours: core.RoundHours(total),
		Rank:               Rank(total, others),
	}, nil
}

func dayDates(days []DayHours) []time.Time {
	dates := make([]time.Time, len(days))
	for i, d := range days {
		dates[i] = d.Day
	}
	return dates
}

// Leaderboard ranks all active students by total approved hours.
func (svc *Service) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	students, totals, err := svc.activeTotals(ctx)
	if err != nil {
		return nil, err
	}
	ranks := Ranks(totals)

	entries := make([]LeaderboardEntry, 0, len(students))
	for _, s := range students {
		entries = append(entries, LeaderboardEntry{
			Rank:               ranks[s.ID],
			StudentID:          s.ID,
			Name:               s.Name,
			TotalApprovedHours: core.RoundHours(totals[s.ID]),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Rank != entries[j].Rank {
			return entries[i].Rank < entries[j].Rank
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// activeTotals returns the active students and their total approved hours (0 when none).
func (svc *Service) activeTotals(ctx context.Context) ([]student.Student, map[string]float64, error) {
	students, err := svc.students.QueryActive(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying active students")
	}
	totals, err := svc.repo.QueryApprovedTotals(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying approved totals")
	}
	active := make(map[string]float64, len(students))
	for _, s := range students {
		active[s.ID] = totals[s.ID]
	}
	return students, active, nil
}

func (svc *Service) checkModule(ctx context.Context, stdnt student.Student, moduleID string) (curriculum.Module, error) {
	mod, err := svc.curriculum.Module(ctx, moduleID)
	if err != nil {
		if core.IsNotFound(err) {
			return curriculum.Module{}, core.NewValidationError(err, core.FieldError{Field: "module_id", Error: err.Error()})
		}
		return curriculum.Module{}, errors.Wrap(err, "getting module")
	}
	if !mod.IsActive || mod.TrackID != stdnt.TrackID {
		return curriculum.Module{}, core.NewValidationError(
			errModuleNotInPath, core.FieldError{Field: "module_id", Error: errModuleNotInPath.Error()},
		)
	}

	unlocked, err := svc.curriculum.IsUnlocked(ctx, stdnt.TrackID, stdnt.ID, mod.ID)
	if err != nil {
		return curriculum.Module{}, errors.Wrap(err, "checking module lock")
	}
	if !unlocked {
		return curriculum.Module{}, curriculum.ErrModuleLocked
	}
	return mod, nil
}

func checkDate(date time.Time) error {
	if date.After(core.Today()) {
		return core.NewValidationError(errFutureDate, core.FieldError{Field: "date", Error: errFutureDate.Error()})
	}
	return nil
}

func (svc *Service) notify(ctx context.Context, l Log, subject, body string) {
	if svc.mailSvc == nil {
		return
	}
	stdnt, err := svc.students.GetByID(ctx, l.StudentID)
	if err != nil {
		if svc.logger != nil {
			svc.logger.Error(fmt.Sprintf("notifying student %s: %v", l.StudentID, err), err)
		}
		return
	}
	if stdnt.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: stdnt.Name, Address: stdnt.Email}},
		Subject: subject,
		Body:    fmt.Sprintf("Hi %s,\n\n%s\n", stdnt.Name, body),
	})
}
