package curriculum

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
)

var (
	// errors
	ErrTrackNotFound      = core.NewNotFoundError("track")
	ErrModuleNotFound     = core.NewNotFoundError("module")
	ErrTrackCodeExists    = errors.New("a track with this code already exists")
	ErrDisplayOrderExists = errors.New("a module with this display order already exists in the track")
	ErrModuleLocked       = errors.New("module is locked")
	errModuleNotInTrack   = errors.New("module does not belong to the track")
)

type (
	Repository interface {
		CreateTrack(ctx context.Context, t Track) (Track, error)
		GetTrack(ctx context.Context, id string) (Track, error)
		CreateModule(ctx context.Context, m Module) (Module, error)
		GetModule(ctx context.Context, id string) (Module, error)
		// QueryModules returns all modules of a track, active or not, ordered by display order.
		QueryModules(ctx context.Context, trackID string) ([]Module, error)
		QueryCompletedModuleIDs(ctx context.Context, studentID string) ([]string, error)
		// CreateCompletion is a no-op when the student already completed the module.
		// created reports whether a new completion was stored.
		CreateCompletion(ctx context.Context, c Completion) (created bool, err error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateTrack(ctx context.Context, nt NewTrack) (Track, error) {
	t := Track{
		ID:        uuid.New().String(),
		Code:      nt.Code,
		Name:      nt.Name,
		CreatedAt: core.NowFunc().UTC(),
	}
	t, err := svc.repo.CreateTrack(ctx, t)
	if errors.Cause(err) == ErrTrackCodeExists {
		return Track{}, core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
	}
	return t, err
}

func (svc *Service) Track(ctx context.Context, id string) (Track, error) {
	return svc.repo.GetTrack(ctx, core.CleanString(id))
}

func (svc *Service) CreateModule(ctx context.Context, nm NewModule) (Module, error) {
	if _, err := svc.repo.GetTrack(ctx, nm.TrackID); err != nil {
		if core.IsNotFound(err) {
			return Module{}, core.NewValidationError(err, core.FieldError{Field: "track_id", Error: err.Error()})
		}
		return Module{}, errors.Wrap(err, "getting track")
	}
	m := Module{
		ID:           uuid.New().String(),
		TrackID:      nm.TrackID,
		Title:        nm.Title,
		DisplayOrder: nm.DisplayOrder,
		HasProject:   nm.HasProject,
		IsActive:     true,
	}
	m, err := svc.repo.CreateModule(ctx, m)
	if errors.Cause(err) == ErrDisplayOrderExists {
		return Module{}, core.NewValidationError(err, core.FieldError{Field: "display_order", Error: err.Error()})
	}
	return m, err
}

func (svc *Service) Module(ctx context.Context, id string) (Module, error) {
	return svc.repo.GetModule(ctx, core.CleanString(id))
}

// Curriculum returns the active modules of a track with their lock state for a student.
func (svc *Service) Curriculum(ctx context.Context, trackID, studentID string) ([]ModuleState, error) {
	modules, err := svc.repo.QueryModules(ctx, trackID)
	if err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}
	active := modules[:0:0]
	for _, m := range modules {
		if m.IsActive {
			active = append(active, m)
		}
	}

	completed, err := svc.repo.QueryCompletedModuleIDs(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}
	return ResolveUnlocks(active, completed), nil
}

// IsUnlocked reports whether a student of the track may work on the module.
// ErrModuleNotFound is returned when the module is inactive or not part of the track.
func (svc *Service) IsUnlocked(ctx context.Context, trackID, studentID, moduleID string) (bool, error) {
	states, err := svc.Curriculum(ctx, trackID, studentID)
	if err != nil {
		return false, err
	}
	for _, s := range states {
		if s.ID == moduleID {
			return !s.IsLocked, nil
		}
	}
	return false, errors.Wrap(ErrModuleNotFound, errModuleNotInTrack.Error())
}

// Complete marks the module completed for the student; repeated calls create a single completion.
func (svc *Service) Complete(ctx context.Context, studentID, moduleID string) (bool, error) {
	c := Completion{
		StudentID:   studentID,
		ModuleID:    moduleID,
		CompletedAt: core.NowFunc().UTC(),
	}
	created, err := svc.repo.CreateCompletion(ctx, c)
	return created, errors.Wrap(err, "creating completion")
}
