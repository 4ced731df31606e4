package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/studylog/apps/api/echo"
	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/quiz"
	"github.com/trezcool/studylog/core/student"
	testutil "github.com/trezcool/studylog/tests"
)

const quizBody = `{"questions": [
	{"id": "q1", "prompt": "1+1", "options": [{"id": "a", "text": "2", "is_correct": true}, {"id": "b", "text": "3"}]},
	{"id": "q2", "prompt": "2+2", "options": [{"id": "a", "text": "4", "is_correct": true}, {"id": "b", "text": "5"}]},
	{"id": "q3", "prompt": "3+3", "options": [{"id": "a", "text": "6", "is_correct": true}, {"id": "b", "text": "7"}]},
	{"id": "q4", "prompt": "4+4", "options": [{"id": "a", "text": "8", "is_correct": true}, {"id": "b", "text": "9"}]}
]}`

func Test_quizApi(t *testing.T) {
	app := setup(t)

	track := testutil.CreateTrack(t, app.currRepo, "go")
	m1 := testutil.CreateModule(t, app.currRepo, track.ID, 1, false)
	m2 := testutil.CreateModule(t, app.currRepo, track.ID, 2, false)
	m3 := testutil.CreateModule(t, app.currRepo, track.ID, 3, false)
	ann := testutil.CreateStudent(t, app.stdntRepo, track.ID, "ann", student.StatusActive, 7)
	annToken := studentToken(t, app.conf, ann)
	adminToken := staffToken(t, app.conf, echoapi.RoleAdmin)

	quizPath := func(m curriculum.Module) string { return "/v1/modules/" + m.ID + "/quiz" }

	saveTests := []httpTest{
		{
			name: "admin required", method: http.MethodPut, path: quizPath(m1), body: []byte(quizBody), token: annToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "no correct option", method: http.MethodPut, path: quizPath(m1), token: adminToken,
			body:     []byte(`{"questions": [{"prompt": "?", "options": [{"text": "a"}, {"text": "b"}]}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"questions": "each question needs at least one correct option"}),
		},
		{
			name: "duplicate question ids", method: http.MethodPut, path: quizPath(m1), token: adminToken,
			body: []byte(`{"questions": [
				{"id": "q1", "prompt": "1+1", "options": [{"id": "a", "text": "2", "is_correct": true}, {"id": "b", "text": "3"}]},
				{"id": "q1", "prompt": "2+2", "options": [{"id": "a", "text": "4", "is_correct": true}, {"id": "b", "text": "5"}]}
			]}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"questions": "questions must contain unique values"}),
		},
		{
			name: "unknown module", method: http.MethodPut, path: "/v1/modules/nope/quiz", body: []byte(quizBody), token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "module not found"}),
		},
		{name: "saved", method: http.MethodPut, path: quizPath(m1), body: []byte(quizBody), token: adminToken, wantCode: http.StatusOK},
		{name: "saved (m3)", method: http.MethodPut, path: quizPath(m3), body: []byte(quizBody), token: adminToken, wantCode: http.StatusOK},
	}
	for _, tt := range saveTests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(tt))
		})
	}

	t.Run("answers are hidden", func(t *testing.T) {
		rec := app.do(httpTest{path: quizPath(m1), token: annToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "is_correct")

		var got quiz.Quiz
		decode(t, rec, &got)
		require.Len(t, got.Questions, 4)
		assert.Equal(t, "q1", got.Questions[0].ID)
	})

	t.Run("no quiz", func(t *testing.T) {
		tt := httpTest{
			path: quizPath(m2), token: annToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "quiz not found"}),
		}
		checkCodeAndData(t, tt, app.do(tt))
	})

	submit := func(m curriculum.Module, answers string) quiz.Result {
		rec := app.do(httpTest{method: http.MethodPost, path: quizPath(m), token: annToken, body: []byte(`{"answers": ` + answers + `}`)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res quiz.Result
		decode(t, rec, &res)
		return res
	}

	t.Run("locked module", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodPost, path: quizPath(m3), token: annToken, body: []byte(`{"answers": {"q1": "a"}}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "module is locked"}),
		}
		checkCodeAndData(t, tt, app.do(tt))
	})

	t.Run("mentors cannot submit", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodPost, path: quizPath(m1), token: staffToken(t, app.conf, echoapi.RoleMentor),
			body: []byte(`{"answers": {}}`), wantCode: http.StatusForbidden,
		}
		checkCodeAndData(t, tt, app.do(tt))
	})

	t.Run("fail then pass once", func(t *testing.T) {
		res := submit(m1, `{"q1": "a", "q2": "b", "q3": "b", "q4": "b"}`)
		assert.Equal(t, 25.0, res.Score)
		assert.False(t, res.Passed)
		assert.False(t, res.ModuleCompleted)
		assert.Equal(t, 75.0, res.PassMark)

		res = submit(m1, `{"q1": "a", "q2": "a", "q3": "a", "q4": "b"}`)
		assert.Equal(t, 75.0, res.Score)
		assert.True(t, res.Passed)
		assert.True(t, res.ModuleCompleted)

		res = submit(m1, `{"q1": "a", "q2": "a", "q3": "a", "q4": "a"}`)
		assert.Equal(t, 100.0, res.Score)
		assert.True(t, res.Passed)
		assert.False(t, res.ModuleCompleted) // already completed

		completed, err := app.currRepo.QueryCompletedModuleIDs(context.Background(), ann.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{m1.ID}, completed)

		rec := app.do(httpTest{path: quizPath(m1) + "/attempts", token: annToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var attempts []quiz.Attempt
		decode(t, rec, &attempts)
		assert.Len(t, attempts, 3)
	})
}
