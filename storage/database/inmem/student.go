package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/studylog/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	statuses := make(map[string]bool, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses[s] = true
	}

	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		if filter.TrackID != "" && s.TrackID != filter.TrackID {
			continue
		}
		if len(statuses) > 0 && !statuses[s.Status] {
			continue
		}
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *studentRepository) UpdateStudentStatus(_ context.Context, id, status string, updatedAt time.Time) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s, ok := repo.db.table[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.Status = status
	s.UpdatedAt = updatedAt
	return *s, nil
}
