package main

import (
	"fmt"
	"log"
	"os"

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
	"github.com/trezcool/studylog/storage/database"
)

func startManual() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	repos, err := database.NewRepositories(conf)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	currSvc := curriculum.NewService(repos.Curriculum)
	stdntSvc := student.NewService(repos.Student, currSvc)
	progSvc := progress.NewService(conf, repos.Progress, stdntSvc, currSvc, mailSvc, logger)
	quizSvc := quiz.NewService(conf, repos.Quiz, stdntSvc, currSvc)
	dashSvc := dashboard.NewService(stdntSvc, currSvc, progSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Validate:      validate,
			Translator:    translator,
			StudentSvc:    stdntSvc,
			CurriculumSvc: currSvc,
			ProgressSvc:   progSvc,
			QuizSvc:       quizSvc,
			DashboardSvc:  dashSvc,
		},
	)
	serve(conf, logger, server)
}
