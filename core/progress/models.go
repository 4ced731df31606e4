package progress

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studylog/core"
)

// Log is a dated record of hours a student spent on a module.
type Log struct {
	ID           string    `json:"id" db:"id"`
	StudentID    string    `json:"student_id" db:"student_id"`
	ModuleID     string    `json:"module_id" db:"module_id"`
	Date         time.Time `json:"date" db:"date"` // UTC day
	Hours        float64   `json:"hours" db:"hours"`
	Activity     string    `json:"activity" db:"activity"`
	EvidenceURL  string    `json:"evidence_url,omitempty" db:"evidence_url"`
	IsApproved   bool      `json:"is_approved" db:"is_approved"`
	MentorRating *int      `json:"mentor_rating,omitempty" db:"mentor_rating"`
	QuizScore    *float64  `json:"quiz_score,omitempty" db:"quiz_score"`
	ApprovedBy   string    `json:"approved_by,omitempty" db:"approved_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewLog contains information needed to submit a new Log.
// Hours are checked by the submission gate, not by the validator.
type NewLog struct {
	ModuleID    string  `json:"module_id" validate:"required"`
	Date        string  `json:"date" validate:"required,isodate"`
	Hours       float64 `json:"hours"`
	Activity    string  `json:"activity" validate:"required,notblank"`
	EvidenceURL string  `json:"evidence_url" validate:"omitempty,url"`
}

func (nl *NewLog) Validate(validate *validator.Validate) error {
	nl.ModuleID = core.CleanString(nl.ModuleID)
	nl.Date = core.CleanString(nl.Date)
	nl.Activity = core.CleanString(nl.Activity)
	nl.EvidenceURL = core.CleanString(nl.EvidenceURL)
	return validate.Struct(nl)
}

// Day returns the parsed log date; call after Validate.
func (nl NewLog) Day() time.Time {
	d, _ := core.ParseDay(nl.Date)
	return d
}

// UpdateLog defines what information may be provided to modify a pending Log.
// Empty fields keep their original value.
type UpdateLog struct {
	Date        string   `json:"date" validate:"isodate"`
	Hours       *float64 `json:"hours"`
	Activity    string   `json:"activity"`
	EvidenceURL *string  `json:"evidence_url" validate:"omitempty,url"`
}

func (ul *UpdateLog) Validate(orig Log, validate *validator.Validate) error {
	if date := core.CleanString(ul.Date); date != "" {
		ul.Date = date
	} else {
		ul.Date = orig.Date.Format(core.DateLayout)
	}

	if activity := core.CleanString(ul.Activity); activity != "" {
		ul.Activity = activity
	} else {
		ul.Activity = orig.Activity
	}

	if ul.Hours == nil {
		hours := orig.Hours
		ul.Hours = &hours
	}

	if ul.EvidenceURL != nil {
		evidence := core.CleanString(*ul.EvidenceURL)
		ul.EvidenceURL = &evidence
	} else {
		evidence := orig.EvidenceURL
		ul.EvidenceURL = &evidence
	}

	return validate.Struct(ul)
}

// Review is the mentor's input when approving a Log.
type Review struct {
	MentorRating *int     `json:"mentor_rating" validate:"omitempty,min=0,max=10"`
	QuizScore    *float64 `json:"quiz_score" validate:"omitempty,min=0,max=100"`
}

func (r Review) Validate(validate *validator.Validate) error { return validate.Struct(r) }

// DayHours is the sum of approved hours a student logged on a day.
type DayHours struct {
	Day   time.Time `db:"day"` // UTC day
	Hours float64   `db:"hours"`
}

type QueryFilter struct {
	StudentID  string `json:"student_id" query:"student_id"`
	ModuleID   string `json:"module_id" query:"module_id"`
	IsApproved *bool  `json:"is_approved" query:"is_approved"`
	DateFrom   string `json:"date_from" query:"date_from" validate:"isodate"`
	DateTo     string `json:"date_to" query:"date_to" validate:"isodate"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.ModuleID = core.CleanString(qf.ModuleID)
	qf.DateFrom = core.CleanString(qf.DateFrom)
	qf.DateTo = core.CleanString(qf.DateTo)
}

// From returns the parsed DateFrom or the zero time.
func (qf QueryFilter) From() time.Time {
	d, _ := core.ParseDay(qf.DateFrom)
	return d
}

// To returns the parsed DateTo or the zero time.
func (qf QueryFilter) To() time.Time {
	d, _ := core.ParseDay(qf.DateTo)
	return d
}

// Standing summarizes a student's progress metrics.
type Standing struct {
	StudentID          string  `json:"student_id"`
	Streak             int     `json:"streak"`
	ConsistencyScore   int     `json:"consistency_score"`
	TotalApprovedHours float64 `json:"total_approved_hours"`
	Rank               int     `json:"rank"`
}

type LeaderboardEntry struct {
	Rank               int     `json:"rank"`
	StudentID          string  `json:"student_id"`
	Name               string  `json:"name"`
	TotalApprovedHours float64 `json:"total_approved_hours"`
}
