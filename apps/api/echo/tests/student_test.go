package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/studylog/apps/api/echo"
	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/progress"
	"github.com/trezcool/studylog/core/student"
	testutil "github.com/trezcool/studylog/tests"
)

var (
	now       = time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)
	today     = time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	yesterday = today.AddDate(0, 0, -1)
)

func Test_studentApi_dashboard(t *testing.T) {
	testutil.FreezeTime(t, now)
	app := setup(t)

	track := testutil.CreateTrack(t, app.currRepo, "go")
	m1 := testutil.CreateModule(t, app.currRepo, track.ID, 1, false)
	testutil.CreateModule(t, app.currRepo, track.ID, 2, false)
	ann := testutil.CreateStudent(t, app.stdntRepo, track.ID, "ann", student.StatusActive, 7)
	ben := testutil.CreateStudent(t, app.stdntRepo, track.ID, "ben", student.StatusActive, 7)
	testutil.CompleteModule(t, app.currRepo, ann.ID, m1.ID)
	testutil.CreateLog(t, app.logRepo, ann.ID, m1.ID, today, 3, true)

	dash, err := app.dashSvc.Get(context.Background(), ann.ID)
	require.NoError(t, err)
	path := "/v1/students/" + ann.ID + "/dashboard"

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "other student", path: path, token: studentToken(t, app.conf, ben),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "self", path: path, token: studentToken(t, app.conf, ann), wantCode: http.StatusOK, wantData: marchallObj(t, dash)},
		{name: "mentor", path: path, token: staffToken(t, app.conf, echoapi.RoleMentor), wantCode: http.StatusOK, wantData: marchallObj(t, dash)},
		{
			name: "unknown student", path: "/v1/students/nope/dashboard", token: staffToken(t, app.conf, echoapi.RoleAdmin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(tt))
		})
	}
}

func Test_studentApi_curriculum(t *testing.T) {
	app := setup(t)

	track := testutil.CreateTrack(t, app.currRepo, "go")
	m3 := testutil.CreateModule(t, app.currRepo, track.ID, 3, true)
	m1 := testutil.CreateModule(t, app.currRepo, track.ID, 1, false)
	m2 := testutil.CreateModule(t, app.currRepo, track.ID, 2, false)
	testutil.CreateModule(t, app.currRepo, track.ID, 4, false, false /* inactive */)
	ann := testutil.CreateStudent(t, app.stdntRepo, track.ID, "ann", student.StatusActive, 7)
	testutil.CompleteModule(t, app.currRepo, ann.ID, m1.ID)

	tt := httpTest{
		path:     "/v1/students/" + ann.ID + "/curriculum",
		token:    studentToken(t, app.conf, ann),
		wantCode: http.StatusOK,
		wantData: marchallList(t,
			curriculum.ModuleState{Module: m1, IsCompleted: true},
			curriculum.ModuleState{Module: m2},
			curriculum.ModuleState{Module: m3, IsLocked: true},
		),
	}
	checkCodeAndData(t, tt, app.do(tt))
}

func Test_studentApi_standingAndLeaderboard(t *testing.T) {
	testutil.FreezeTime(t, now)
	app := setup(t)

	track := testutil.CreateTrack(t, app.currRepo, "go")
	m1 := testutil.CreateModule(t, app.currRepo, track.ID, 1, false)
	ann := testutil.CreateStudent(t, app.stdntRepo, track.ID, "ann", student.StatusActive, 7)
	ben := testutil.CreateStudent(t, app.stdntRepo, track.ID, "ben", student.StatusActive, 7)
	cid := testutil.CreateStudent(t, app.stdntRepo, track.ID, "cid", student.StatusActive, 7)
	gone := testutil.CreateStudent(t, app.stdntRepo, track.ID, "gone", student.StatusWithdrawn, 7)

	testutil.CreateLog(t, app.logRepo, ann.ID, m1.ID, today, 3, true)
	testutil.CreateLog(t, app.logRepo, ann.ID, m1.ID, yesterday, 2, true)
	testutil.CreateLog(t, app.logRepo, ann.ID, m1.ID, yesterday, 4, false) // pending: ignored
	testutil.CreateLog(t, app.logRepo, ben.ID, m1.ID, yesterday, 5, true)
	testutil.CreateLog(t, app.logRepo, ben.ID, m1.ID, yesterday.AddDate(0, 0, -1), 5, true)
	testutil.CreateLog(t, app.logRepo, gone.ID, m1.ID, yesterday, 50, true) // inactive: not ranked

	// 5 hours of a 28 hours window target
	wantStanding := progress.Standing{StudentID: ann.ID, Streak: 2, ConsistencyScore: 18, TotalApprovedHours: 5, Rank: 2}

	tests := []httpTest{
		{
			name: "standing", path: "/v1/students/" + ann.ID + "/standing", token: studentToken(t, app.conf, ann),
			wantCode: http.StatusOK, wantData: marchallObj(t, wantStanding),
		},
		{
			name: "leaderboard", path: "/v1/leaderboard", token: studentToken(t, app.conf, cid),
			wantCode: http.StatusOK,
			wantData: marchallList(t,
				progress.LeaderboardEntry{Rank: 1, StudentID: ben.ID, Name: "ben", TotalApprovedHours: 10},
				progress.LeaderboardEntry{Rank: 2, StudentID: ann.ID, Name: "ann", TotalApprovedHours: 5},
				progress.LeaderboardEntry{Rank: 3, StudentID: cid.ID, Name: "cid", TotalApprovedHours: 0},
			),
		},
		{name: "leaderboard (auth required)", path: "/v1/leaderboard", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(tt))
		})
	}
}

func Test_studentApi_createAndSetStatus(t *testing.T) {
	app := setup(t)

	track := testutil.CreateTrack(t, app.currRepo, "go")
	ann := testutil.CreateStudent(t, app.stdntRepo, track.ID, "ann", student.StatusActive, 7)
	adminToken := staffToken(t, app.conf, echoapi.RoleAdmin)

	tests := []httpTest{
		{
			name: "admin required", method: http.MethodPost, path: "/v1/students", token: staffToken(t, app.conf, echoapi.RoleMentor),
			body:     []byte(`{"track_id": "` + track.ID + `", "name": "Ben", "target_hours_per_week": 10}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "invalid", method: http.MethodPost, path: "/v1/students", token: adminToken,
			body:     []byte(`{"name": " ", "email": "nope", "target_hours_per_week": 0}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"track_id":              "this field is required",
				"name":                  "this field is required",
				"email":                 "email must be a valid email address",
				"target_hours_per_week": "this field is required",
			}),
		},
		{
			name: "unknown track", method: http.MethodPost, path: "/v1/students", token: adminToken,
			body:     []byte(`{"track_id": "no-such-track", "name": "Ben", "target_hours_per_week": 10}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"track_id": "track not found"}),
		},
		{
			name: "bad status", method: http.MethodPut, path: "/v1/students/" + ann.ID + "/status", token: adminToken,
			body:     []byte(`{"status": "expelled"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": "status must be one of [active suspended graduated withdrawn]"}),
		},
		{
			name: "student cannot change status", method: http.MethodPut, path: "/v1/students/" + ann.ID + "/status",
			token: studentToken(t, app.conf, ann), body: []byte(`{"status": "graduated"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(tt))
		})
	}

	t.Run("create", func(t *testing.T) {
		rec := app.do(httpTest{
			method: http.MethodPost, path: "/v1/students", token: adminToken,
			body: []byte(`{"track_id": "` + track.ID + `", "name": " Ben ", "email": "BEN@test.cd", "target_hours_per_week": 10}`),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got student.Student
		decode(t, rec, &got)
		require.NotEmpty(t, got.ID)
		require.Equal(t, "Ben", got.Name)
		require.Equal(t, "ben@test.cd", got.Email)
		require.Equal(t, student.StatusActive, got.Status)
	})

	t.Run("set status", func(t *testing.T) {
		rec := app.do(httpTest{
			method: http.MethodPut, path: "/v1/students/" + ann.ID + "/status", token: adminToken,
			body: []byte(`{"status": "suspended"}`),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got student.Student
		decode(t, rec, &got)
		require.Equal(t, student.StatusSuspended, got.Status)
	})
}
