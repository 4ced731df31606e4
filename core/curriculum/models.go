package curriculum

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studylog/core"
)

type Track struct {
	ID        string    `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

// Module is one step of a Track syllabus.
// DisplayOrder is unique per track; each module requires the one before it.
type Module struct {
	ID           string `json:"id" db:"id"`
	TrackID      string `json:"track_id" db:"track_id"`
	Title        string `json:"title" db:"title"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
	HasProject   bool   `json:"has_project" db:"has_project"`
	IsActive     bool   `json:"is_active" db:"is_active"`
}

type Completion struct {
	StudentID   string    `json:"student_id" db:"student_id"`
	ModuleID    string    `json:"module_id" db:"module_id"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"` // UTC
}

// ModuleState is a Module as seen by one student.
type ModuleState struct {
	Module
	IsCompleted bool `json:"is_completed"`
	IsLocked    bool `json:"is_locked"`
}

type NewTrack struct {
	Code string `json:"code" validate:"required,notblank,max=32"`
	Name string `json:"name" validate:"required,notblank"`
}

func (nt *NewTrack) Validate(validate *validator.Validate) error {
	nt.Code = core.CleanString(nt.Code, true /* lower */)
	nt.Name = core.CleanString(nt.Name)
	return validate.Struct(nt)
}

type NewModule struct {
	TrackID      string `json:"track_id" validate:"required"`
	Title        string `json:"title" validate:"required,notblank"`
	DisplayOrder int    `json:"display_order" validate:"min=0"`
	HasProject   bool   `json:"has_project"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.TrackID = core.CleanString(nm.TrackID)
	nm.Title = core.CleanString(nm.Title)
	return validate.Struct(nm)
}
