package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studylog/core"
)

// Enrollment statuses
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusGraduated = "graduated"
	StatusWithdrawn = "withdrawn"
)

var Statuses = []string{StatusActive, StatusSuspended, StatusGraduated, StatusWithdrawn}

type Student struct {
	ID                 string    `json:"id" db:"id"`
	TrackID            string    `json:"track_id" db:"track_id"`
	Name               string    `json:"name" db:"name"`
	Email              string    `json:"email" db:"email"`
	TargetHoursPerWeek int       `json:"target_hours_per_week" db:"target_hours_per_week"`
	Status             string    `json:"status" db:"status"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (s Student) IsActive() bool {
	return s.Status == StatusActive
}

// Person is the identity reported to the logger.
func (s Student) Person() core.Person {
	return core.Person{ID: s.ID, Name: s.Name, Email: s.Email}
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	TrackID            string `json:"track_id" validate:"required"`
	Name               string `json:"name" validate:"required,notblank"`
	Email              string `json:"email" validate:"omitempty,email"`
	TargetHoursPerWeek int    `json:"target_hours_per_week" validate:"required,min=1,max=168"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.TrackID = core.CleanString(ns.TrackID)
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

type QueryFilter struct {
	TrackID  string
	Statuses []string
}
