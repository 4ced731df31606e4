package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/progress"
	"github.com/trezcool/studylog/core/student"
)

// NewValidator returns a validator set up like the API one.
func NewValidator() *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())
	return validate
}

// FreezeTime sets core.NowFunc to return now until the test ends.
func FreezeTime(t *testing.T, now time.Time) {
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = orig })
}

func CreateTrack(t *testing.T, repo curriculum.Repository, code string) curriculum.Track {
	tr, err := repo.CreateTrack(context.Background(), curriculum.Track{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      code,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateTrack() failed: %v", err)
	}
	return tr
}

func CreateModule(t *testing.T, repo curriculum.Repository, trackID string, order int, hasProject bool, isActive ...bool) curriculum.Module {
	active := true
	if len(isActive) > 0 {
		active = isActive[0]
	}
	m, err := repo.CreateModule(context.Background(), curriculum.Module{
		ID:           uuid.New().String(),
		TrackID:      trackID,
		Title:        fmt.Sprintf("Module %d", order),
		DisplayOrder: order,
		HasProject:   hasProject,
		IsActive:     active,
	})
	if err != nil {
		t.Fatalf("CreateModule() failed: %v", err)
	}
	return m
}

func CompleteModule(t *testing.T, repo curriculum.Repository, studentID, moduleID string) {
	_, err := repo.CreateCompletion(context.Background(), curriculum.Completion{
		StudentID:   studentID,
		ModuleID:    moduleID,
		CompletedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CompleteModule() failed: %v", err)
	}
}

func CreateStudent(t *testing.T, repo student.Repository, trackID, name, status string, targetHoursPerWeek int) student.Student {
	now := time.Now().UTC()
	s, err := repo.CreateStudent(context.Background(), student.Student{
		ID:                 uuid.New().String(),
		TrackID:            trackID,
		Name:               name,
		Email:              fmt.Sprintf("%s@test.cd", name),
		TargetHoursPerWeek: targetHoursPerWeek,
		Status:             status,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateLog(t *testing.T, repo progress.Repository, studentID, moduleID string, date time.Time, hours float64, approved bool) progress.Log {
	ctx := context.Background()
	now := time.Now().UTC()
	l, err := repo.CreateLog(ctx, progress.Log{
		ID:        uuid.New().String(),
		StudentID: studentID,
		ModuleID:  moduleID,
		Date:      core.Day(date),
		Hours:     hours,
		Activity:  "studying",
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateLog() failed: %v", err)
	}
	if approved {
		l.IsApproved = true
		if l, err = repo.ApproveLog(ctx, l); err != nil {
			t.Fatalf("CreateLog() failed to approve: %v", err)
		}
	}
	return l
}
