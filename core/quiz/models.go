package quiz

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
)

var (
	errNoCorrectOption = errors.New("each question needs at least one correct option")
)

// Quiz is the set of questions unlocking the module after it.
type Quiz struct {
	ModuleID  string     `json:"module_id"`
	Questions []Question `json:"questions" validate:"required,min=1,unique=ID,dive"`
}

type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt" validate:"required,notblank"`
	Options []Option `json:"options" validate:"required,min=2,unique=ID,dive"`
}

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text" validate:"required,notblank"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

// Validate generates the missing question and option IDs, then checks the quiz.
// IDs must be unique among the questions, and among the options of a question.
func (q *Quiz) Validate(validate *validator.Validate) error {
	q.fillIDs()
	if err := validate.Struct(q); err != nil {
		return err
	}
	for _, qn := range q.Questions {
		hasCorrect := false
		for _, o := range qn.Options {
			if o.IsCorrect {
				hasCorrect = true
				break
			}
		}
		if !hasCorrect {
			return core.NewValidationError(errNoCorrectOption, core.FieldError{Field: "questions", Error: errNoCorrectOption.Error()})
		}
	}
	return nil
}

func (q *Quiz) fillIDs() {
	for i := range q.Questions {
		qn := &q.Questions[i]
		if qn.ID = core.CleanString(qn.ID); qn.ID == "" {
			qn.ID = uuid.New().String()
		}
		for j := range qn.Options {
			if qn.Options[j].ID = core.CleanString(qn.Options[j].ID); qn.Options[j].ID == "" {
				qn.Options[j].ID = uuid.New().String()
			}
		}
	}
}

// AnswerKey returns the correct option IDs of each question.
func (q Quiz) AnswerKey() AnswerKey {
	key := make(AnswerKey, len(q.Questions))
	for _, qn := range q.Questions {
		correct := make(map[string]struct{})
		for _, o := range qn.Options {
			if o.IsCorrect {
				correct[o.ID] = struct{}{}
			}
		}
		key[qn.ID] = correct
	}
	return key
}

// Public returns the quiz without the answers.
func (q Quiz) Public() Quiz {
	pub := Quiz{ModuleID: q.ModuleID, Questions: make([]Question, len(q.Questions))}
	for i, qn := range q.Questions {
		opts := make([]Option, len(qn.Options))
		for j, o := range qn.Options {
			opts[j] = Option{ID: o.ID, Text: o.Text}
		}
		pub.Questions[i] = Question{ID: qn.ID, Prompt: qn.Prompt, Options: opts}
	}
	return pub
}

// AnswerKey maps question IDs to their set of correct option IDs.
type AnswerKey map[string]map[string]struct{}

// Answers maps question IDs to the chosen option ID.
type Answers map[string]string

type Submission struct {
	Answers Answers `json:"answers" validate:"required"`
}

func (s Submission) Validate(validate *validator.Validate) error { return validate.Struct(s) }

type Attempt struct {
	ID          string    `json:"id" db:"id"`
	StudentID   string    `json:"student_id" db:"student_id"`
	ModuleID    string    `json:"module_id" db:"module_id"`
	Score       float64   `json:"score" db:"score"`
	Passed      bool      `json:"passed" db:"passed"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"` // UTC
}

// Result is returned to the student after a submission.
type Result struct {
	Attempt
	PassMark float64 `json:"pass_mark"`
	// ModuleCompleted is true when this submission completed the module.
	ModuleCompleted bool `json:"module_completed"`
}
