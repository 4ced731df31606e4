package inmemdb

import (
	"context"

	"github.com/trezcool/studylog/core/quiz"
)

type quizRepository struct {
	db *quizTables
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *DB) quiz.Repository {
	return &quizRepository{db: db.quiz}
}

func (repo *quizRepository) GetQuiz(_ context.Context, moduleID string) (quiz.Quiz, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if q, ok := repo.db.quizzes[moduleID]; ok {
		return copyQuiz(*q), nil
	}
	return quiz.Quiz{}, quiz.ErrQuizNotFound
}

func (repo *quizRepository) SaveQuiz(_ context.Context, q quiz.Quiz) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cp := copyQuiz(q)
	repo.db.quizzes[q.ModuleID] = &cp
	return nil
}

func (repo *quizRepository) CreateAttempt(_ context.Context, a quiz.Attempt) (quiz.Attempt, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.attempts = append(repo.db.attempts, a)
	return a, nil
}

func (repo *quizRepository) QueryAttempts(_ context.Context, studentID, moduleID string) ([]quiz.Attempt, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	attempts := make([]quiz.Attempt, 0)
	for i := len(repo.db.attempts) - 1; i >= 0; i-- { // latest first
		a := repo.db.attempts[i]
		if a.StudentID == studentID && (moduleID == "" || a.ModuleID == moduleID) {
			attempts = append(attempts, a)
		}
	}
	return attempts, nil
}

// copyQuiz deep copies q so callers cannot mutate stored questions.
func copyQuiz(q quiz.Quiz) quiz.Quiz {
	cp := quiz.Quiz{ModuleID: q.ModuleID, Questions: make([]quiz.Question, len(q.Questions))}
	for i, qn := range q.Questions {
		cp.Questions[i] = qn
		cp.Questions[i].Options = append([]quiz.Option(nil), qn.Options...)
	}
	return cp
}
