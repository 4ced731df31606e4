package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/studylog/core/curriculum"
)

type curriculumRepository struct {
	db *curriculumTables
}

var _ curriculum.Repository = (*curriculumRepository)(nil) // interface compliance check

func NewCurriculumRepository(db *DB) curriculum.Repository {
	return &curriculumRepository{db: db.curriculum}
}

func (repo *curriculumRepository) CreateTrack(_ context.Context, t curriculum.Track) (curriculum.Track, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.tracks {
		if other.Code == t.Code {
			return curriculum.Track{}, curriculum.ErrTrackCodeExists
		}
	}
	repo.db.tracks[t.ID] = &t
	return t, nil
}

func (repo *curriculumRepository) GetTrack(_ context.Context, id string) (curriculum.Track, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.tracks[id]; ok {
		return *t, nil
	}
	return curriculum.Track{}, curriculum.ErrTrackNotFound
}

func (repo *curriculumRepository) CreateModule(_ context.Context, m curriculum.Module) (curriculum.Module, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.modules {
		if other.TrackID == m.TrackID && other.DisplayOrder == m.DisplayOrder {
			return curriculum.Module{}, curriculum.ErrDisplayOrderExists
		}
	}
	repo.db.modules[m.ID] = &m
	return m, nil
}

func (repo *curriculumRepository) GetModule(_ context.Context, id string) (curriculum.Module, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if m, ok := repo.db.modules[id]; ok {
		return *m, nil
	}
	return curriculum.Module{}, curriculum.ErrModuleNotFound
}

func (repo *curriculumRepository) QueryModules(_ context.Context, trackID string) ([]curriculum.Module, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	modules := make([]curriculum.Module, 0)
	for _, m := range repo.db.modules {
		if m.TrackID == trackID {
			modules = append(modules, *m)
		}
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].DisplayOrder < modules[j].DisplayOrder })
	return modules, nil
}

func (repo *curriculumRepository) QueryCompletedModuleIDs(_ context.Context, studentID string) ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ids := make([]string, 0)
	for key := range repo.db.completions {
		if key.studentID == studentID {
			ids = append(ids, key.moduleID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (repo *curriculumRepository) CreateCompletion(_ context.Context, c curriculum.Completion) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := completionKey{studentID: c.StudentID, moduleID: c.ModuleID}
	if _, ok := repo.db.completions[key]; ok {
		return false, nil
	}
	repo.db.completions[key] = &c
	return true, nil
}
