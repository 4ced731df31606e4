// Package dashboard assembles a student's curriculum and progress metrics in one view.
package dashboard

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/progress"
	"github.com/trezcool/studylog/core/student"
)

type (
	Dashboard struct {
		Student          student.Student          `json:"student"`
		Modules          []curriculum.ModuleState `json:"modules"`
		CompletedModules int                      `json:"completed_modules"`
		TotalModules     int                      `json:"total_modules"`
		progress.Standing
	}

	StudentService interface {
		GetByID(ctx context.Context, id string) (student.Student, error)
	}

	CurriculumService interface {
		Curriculum(ctx context.Context, trackID, studentID string) ([]curriculum.ModuleState, error)
	}

	ProgressService interface {
		Standing(ctx context.Context, stdnt student.Student, today time.Time) (progress.Standing, error)
	}

	Service struct {
		students   StudentService
		curriculum CurriculumService
		progress   ProgressService
	}
)

func NewService(students StudentService, curriculum CurriculumService, progress ProgressService) *Service {
	return &Service{students: students, curriculum: curriculum, progress: progress}
}

// Get builds the dashboard of a student as of today.
func (svc *Service) Get(ctx context.Context, studentID string) (Dashboard, error) {
	stdnt, err := svc.students.GetByID(ctx, studentID)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "getting student")
	}

	modules, err := svc.curriculum.Curriculum(ctx, stdnt.TrackID, stdnt.ID)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "resolving curriculum")
	}

	standing, err := svc.progress.Standing(ctx, stdnt, core.Today())
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "computing standing")
	}

	return Dashboard{
		Student:          stdnt,
		Modules:          modules,
		CompletedModules: curriculum.CompletedCount(modules),
		TotalModules:     len(modules),
		Standing:         standing,
	}, nil
}
