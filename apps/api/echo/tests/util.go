package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/studylog/apps/api/echo"
	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/dashboard"
	"github.com/trezcool/studylog/core/progress"
	"github.com/trezcool/studylog/core/quiz"
	"github.com/trezcool/studylog/core/student"
	emailsvc "github.com/trezcool/studylog/services/email"
	logsvc "github.com/trezcool/studylog/services/logger"
	inmemdb "github.com/trezcool/studylog/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	*echoapi.Server
	conf *core.Config

	currRepo  curriculum.Repository
	stdntRepo student.Repository
	logRepo   progress.Repository
	quizRepo  quiz.Repository

	dashSvc *dashboard.Service
	mailSvc *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) testApp {
	conf := &core.Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          "Studylog",
		SecretKey:        "test-secret",
		DefaultFromEmail: mail.Address{Name: "Studylog", Address: "noreply@test.cd"},
		Server:           core.ServerConfig{Address: ":0", JWTExpirationDelta: time.Hour},
		Progress:         core.ProgressConfig{DailyHourCap: 5, PassMark: 75, ConsistencyWindowDays: 28},
	}

	// set up DB & repos
	db := inmemdb.Open()
	app := testApp{
		conf:      conf,
		currRepo:  inmemdb.NewCurriculumRepository(db),
		stdntRepo: inmemdb.NewStudentRepository(db),
		logRepo:   inmemdb.NewProgressRepository(db),
		quizRepo:  inmemdb.NewQuizRepository(db),
		mailSvc:   emailsvc.NewConsoleServiceMock(conf),
	}

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	// set up services
	currSvc := curriculum.NewService(app.currRepo)
	stdntSvc := student.NewService(app.stdntRepo, currSvc)
	progSvc := progress.NewService(conf, app.logRepo, stdntSvc, currSvc, app.mailSvc, logger)
	quizSvc := quiz.NewService(conf, app.quizRepo, stdntSvc, currSvc)
	app.dashSvc = dashboard.NewService(stdntSvc, currSvc, progSvc)

	// set up server
	app.Server = echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		StudentSvc:    stdntSvc,
		CurriculumSvc: currSvc,
		ProgressSvc:   progSvc,
		QuizSvc:       quizSvc,
		DashboardSvc:  app.dashSvc,
	})
	return app
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (app testApp) do(tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	app.ServeHTTP(rec, req)
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, claims *echoapi.Claims) string {
	token, err := echoapi.GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func studentToken(t *testing.T, conf *core.Config, s student.Student) string {
	return getToken(t, conf, echoapi.StudentClaims(conf, s))
}

func staffToken(t *testing.T, conf *core.Config, role string) string {
	return getToken(t, conf, echoapi.NewClaims(conf, "staff-"+role, "Staff", role))
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode() failed: %v; body %s", err, rec.Body.String())
	}
}
