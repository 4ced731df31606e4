package student

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/curriculum"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("student")
	ErrInactive      = errors.New("student is not active")
	errInvalidStatus = errors.New("invalid status")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		QueryStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		UpdateStudentStatus(ctx context.Context, id, status string, updatedAt time.Time) (Student, error)
	}

	// TrackService is implemented by curriculum.Service.
	TrackService interface {
		Track(ctx context.Context, id string) (curriculum.Track, error)
	}

	Service struct {
		repo   Repository
		tracks TrackService
	}
)

func NewService(repo Repository, tracks TrackService) *Service {
	return &Service{repo: repo, tracks: tracks}
}

// Create enrolls a student in an existing track. The payload must have been validated.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if _, err := svc.tracks.Track(ctx, ns.TrackID); err != nil {
		if core.IsNotFound(err) {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: "track_id", Error: err.Error()})
		}
		return Student{}, errors.Wrap(err, "getting track")
	}

	now := core.NowFunc().UTC()
	s := Student{
		ID:                 uuid.New().String(),
		TrackID:            ns.TrackID,
		Name:               ns.Name,
		Email:              ns.Email,
		TargetHoursPerWeek: ns.TargetHoursPerWeek,
		Status:             StatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return svc.repo.CreateStudent(ctx, s)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, core.CleanString(id))
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter)
}

func (svc *Service) QueryActive(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, QueryFilter{Statuses: []string{StatusActive}})
}

func (svc *Service) SetStatus(ctx context.Context, id, status string) (Student, error) {
	valid := false
	for _, s := range Statuses {
		if s == status {
			valid = true
			break
		}
	}
	if !valid {
		return Student{}, core.NewValidationError(errInvalidStatus, core.FieldError{Field: "status", Error: errInvalidStatus.Error()})
	}
	return svc.repo.UpdateStudentStatus(ctx, id, status, core.NowFunc().UTC())
}
