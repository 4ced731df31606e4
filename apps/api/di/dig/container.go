package dig_container

import (
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/studylog/apps/api/echo"
	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/dashboard"
	"github.com/trezcool/studylog/core/progress"
	"github.com/trezcool/studylog/core/quiz"
	"github.com/trezcool/studylog/core/student"
	emailsvc "github.com/trezcool/studylog/services/email"
	logsvc "github.com/trezcool/studylog/services/logger"
	"github.com/trezcool/studylog/storage/database"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type repositories struct {
	dig.Out
	Curriculum curriculum.Repository
	Student    student.Repository
	Progress   progress.Repository
	Quiz       quiz.Repository
	All        database.Repositories
}

type serverParams struct {
	dig.In
	Conf          *core.Config
	Logger        core.Logger
	Validate      *validator.Validate
	Translator    ut.Translator
	StudentSvc    *student.Service
	CurriculumSvc *curriculum.Service
	ProgressSvc   *progress.Service
	QuizSvc       *quiz.Service
	DashboardSvc  *dashboard.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) repositories {
	repos, err := database.NewRepositories(conf)
	if err != nil {
		loggerParam.Logger.Fatal("setting up database", err)
	}
	return repositories{
		Curriculum: repos.Curriculum,
		Student:    repos.Student,
		Progress:   repos.Progress,
		Quiz:       repos.Quiz,
		All:        repos,
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func newStudentService(repo student.Repository, curr *curriculum.Service) *student.Service {
	return student.NewService(repo, curr)
}

func newProgressService(
	conf *core.Config,
	repo progress.Repository,
	students *student.Service,
	curr *curriculum.Service,
	mailSvc core.EmailService,
	logger core.Logger,
) *progress.Service {
	return progress.NewService(conf, repo, students, curr, mailSvc, logger)
}

func newQuizService(conf *core.Config, repo quiz.Repository, students *student.Service, curr *curriculum.Service) *quiz.Service {
	return quiz.NewService(conf, repo, students, curr)
}

func newDashboardService(students *student.Service, curr *curriculum.Service, prog *progress.Service) *dashboard.Service {
	return dashboard.NewService(students, curr, prog)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		StudentSvc:    p.StudentSvc,
		CurriculumSvc: p.CurriculumSvc,
		ProgressSvc:   p.ProgressSvc,
		QuizSvc:       p.QuizSvc,
		DashboardSvc:  p.DashboardSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newStudentService))
	must(c.Provide(curriculum.NewService))
	must(c.Provide(newProgressService))
	must(c.Provide(newQuizService))
	must(c.Provide(newDashboardService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
