package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core/quiz"
)

type quizRepository struct {
	db *sqlx.DB
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *sqlx.DB) quiz.Repository {
	return &quizRepository{db: db}
}

type (
	questionRow struct {
		ID       string `db:"id"`
		ModuleID string `db:"module_id"`
		Prompt   string `db:"prompt"`
		Position int    `db:"position"`
	}

	optionRow struct {
		ID         string `db:"id"`
		ModuleID   string `db:"module_id"`
		QuestionID string `db:"question_id"`
		Text       string `db:"text"`
		IsCorrect  bool   `db:"is_correct"`
		Position   int    `db:"position"`
	}
)

func (repo *quizRepository) GetQuiz(ctx context.Context, moduleID string) (quiz.Quiz, error) {
	if !isUUID(moduleID) {
		return quiz.Quiz{}, quiz.ErrQuizNotFound
	}

	var questions []questionRow
	err := repo.db.SelectContext(
		ctx, &questions,
		`SELECT id, module_id, prompt, position FROM quiz_question WHERE module_id = $1 ORDER BY position`,
		moduleID,
	)
	if err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "querying quiz questions")
	}
	if len(questions) == 0 {
		return quiz.Quiz{}, quiz.ErrQuizNotFound
	}

	var options []optionRow
	err = repo.db.SelectContext(
		ctx, &options,
		`SELECT id, module_id, question_id, text, is_correct, position FROM quiz_option
		WHERE module_id = $1 ORDER BY position`,
		moduleID,
	)
	if err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "querying quiz options")
	}

	byQuestion := make(map[string][]quiz.Option, len(questions))
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], quiz.Option{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
	}

	q := quiz.Quiz{ModuleID: moduleID, Questions: make([]quiz.Question, 0, len(questions))}
	for _, qn := range questions {
		q.Questions = append(q.Questions, quiz.Question{ID: qn.ID, Prompt: qn.Prompt, Options: byQuestion[qn.ID]})
	}
	return q, nil
}

func (repo *quizRepository) SaveQuiz(ctx context.Context, q quiz.Quiz) (err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// options are removed by cascade
	if _, err = tx.ExecContext(ctx, `DELETE FROM quiz_question WHERE module_id = $1`, q.ModuleID); err != nil {
		return errors.Wrap(err, "deleting quiz questions")
	}

	for i, qn := range q.Questions {
		_, err = tx.NamedExecContext(
			ctx,
			`INSERT INTO quiz_question (id, module_id, prompt, position) VALUES (:id, :module_id, :prompt, :position)`,
			questionRow{ID: qn.ID, ModuleID: q.ModuleID, Prompt: qn.Prompt, Position: i},
		)
		if err != nil {
			return errors.Wrap(err, "inserting quiz question")
		}
		for j, o := range qn.Options {
			_, err = tx.NamedExecContext(
				ctx,
				`INSERT INTO quiz_option (id, module_id, question_id, text, is_correct, position)
				VALUES (:id, :module_id, :question_id, :text, :is_correct, :position)`,
				optionRow{ID: o.ID, ModuleID: q.ModuleID, QuestionID: qn.ID, Text: o.Text, IsCorrect: o.IsCorrect, Position: j},
			)
			if err != nil {
				return errors.Wrap(err, "inserting quiz option")
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing quiz")
	}
	return nil
}

func (repo *quizRepository) CreateAttempt(ctx context.Context, a quiz.Attempt) (quiz.Attempt, error) {
	const q = `INSERT INTO quiz_attempt (id, student_id, module_id, score, passed, submitted_at)
		VALUES (:id, :student_id, :module_id, :score, :passed, :submitted_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, a); err != nil {
		return quiz.Attempt{}, errors.Wrap(err, "inserting attempt")
	}
	return a, nil
}

func (repo *quizRepository) QueryAttempts(ctx context.Context, studentID, moduleID string) ([]quiz.Attempt, error) {
	attempts := make([]quiz.Attempt, 0)
	if !isUUID(studentID) || !isUUID(moduleID) {
		return attempts, nil
	}
	err := repo.db.SelectContext(
		ctx, &attempts,
		`SELECT id, student_id, module_id, score, passed, submitted_at FROM quiz_attempt
		WHERE student_id = $1 AND module_id = $2 ORDER BY submitted_at DESC`,
		studentID, moduleID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying attempts")
	}
	for i := range attempts {
		attempts[i].SubmittedAt = attempts[i].SubmittedAt.UTC()
	}
	return attempts, nil
}
