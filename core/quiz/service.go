package quiz

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/student"
)

var (
	// errors
	ErrQuizNotFound = core.NewNotFoundError("quiz")
)

type (
	Repository interface {
		GetQuiz(ctx context.Context, moduleID string) (Quiz, error)
		// SaveQuiz replaces the questions of the module quiz.
		SaveQuiz(ctx context.Context, q Quiz) error
		CreateAttempt(ctx context.Context, a Attempt) (Attempt, error)
		QueryAttempts(ctx context.Context, studentID, moduleID string) ([]Attempt, error)
	}

	StudentService interface {
		GetByID(ctx context.Context, id string) (student.Student, error)
	}

	CurriculumService interface {
		Module(ctx context.Context, id string) (curriculum.Module, error)
		IsUnlocked(ctx context.Context, trackID, studentID, moduleID string) (bool, error)
		Complete(ctx context.Context, studentID, moduleID string) (bool, error)
	}

	Service struct {
		repo       Repository
		students   StudentService
		curriculum CurriculumService
		passMark   float64
	}
)

func NewService(conf *core.Config, repo Repository, students StudentService, curriculum CurriculumService) *Service {
	svc := &Service{
		repo:       repo,
		students:   students,
		curriculum: curriculum,
		passMark:   DefaultPassMark,
	}
	if conf != nil && conf.Progress.PassMark > 0 {
		svc.passMark = conf.Progress.PassMark
	}
	return svc
}

// Save creates or replaces the quiz of a module. Missing question and option IDs are generated.
func (svc *Service) Save(ctx context.Context, q Quiz) (Quiz, error) {
	if _, err := svc.curriculum.Module(ctx, q.ModuleID); err != nil {
		return Quiz{}, errors.Wrap(err, "getting module")
	}
	q.fillIDs()
	if err := svc.repo.SaveQuiz(ctx, q); err != nil {
		return Quiz{}, errors.Wrap(err, "saving quiz")
	}
	return q, nil
}

// Get returns the quiz of a module without its answers.
func (svc *Service) Get(ctx context.Context, moduleID string) (Quiz, error) {
	q, err := svc.repo.GetQuiz(ctx, core.CleanString(moduleID))
	if err != nil {
		return Quiz{}, err
	}
	return q.Public(), nil
}

// Submit scores a student's answers and completes the module when the pass mark is reached.
// Passing again does not create another completion.
func (svc *Service) Submit(ctx context.Context, studentID, moduleID string, answers Answers) (Result, error) {
	stdnt, err := svc.students.GetByID(ctx, studentID)
	if err != nil {
		return Result{}, errors.Wrap(err, "getting student")
	}
	if !stdnt.IsActive() {
		return Result{}, core.NewValidationError(student.ErrInactive)
	}

	unlocked, err := svc.curriculum.IsUnlocked(ctx, stdnt.TrackID, stdnt.ID, moduleID)
	if err != nil {
		return Result{}, errors.Wrap(err, "checking module lock")
	}
	if !unlocked {
		return Result{}, curriculum.ErrModuleLocked
	}

	q, err := svc.repo.GetQuiz(ctx, moduleID)
	if err != nil {
		return Result{}, errors.Wrap(err, "getting quiz")
	}

	score := Score(answers, q.AnswerKey())
	attempt := Attempt{
		ID:          uuid.New().String(),
		StudentID:   stdnt.ID,
		ModuleID:    moduleID,
		Score:       math.Round(score*100) / 100,
		Passed:      score >= svc.passMark,
		SubmittedAt: core.NowFunc().UTC(),
	}
	if attempt, err = svc.repo.CreateAttempt(ctx, attempt); err != nil {
		return Result{}, errors.Wrap(err, "creating attempt")
	}

	res := Result{Attempt: attempt, PassMark: svc.passMark}
	if attempt.Passed {
		if res.ModuleCompleted, err = svc.curriculum.Complete(ctx, stdnt.ID, moduleID); err != nil {
			return Result{}, errors.Wrap(err, "completing module")
		}
	}
	return res, nil
}

func (svc *Service) Attempts(ctx context.Context, studentID, moduleID string) ([]Attempt, error) {
	return svc.repo.QueryAttempts(ctx, studentID, moduleID)
}
