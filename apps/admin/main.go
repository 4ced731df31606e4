package main

import (
	"log"
	"os"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/progress"
	"github.com/trezcool/studylog/core/student"
	emailsvc "github.com/trezcool/studylog/services/email"
	logsvc "github.com/trezcool/studylog/services/logger"
	"github.com/trezcool/studylog/storage/database"
	sqlxrepos "github.com/trezcool/studylog/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer db.Close()

	// set up services
	currSvc := curriculum.NewService(sqlxrepos.NewCurriculumRepository(db))
	stdntSvc := student.NewService(sqlxrepos.NewStudentRepository(db), currSvc)
	progSvc := progress.NewService(
		conf,
		sqlxrepos.NewProgressRepository(db),
		stdntSvc,
		currSvc,
		emailsvc.NewConsoleService(conf),
		logger,
	)

	// start CLI
	cli := commandLine{
		db:          db.DB,
		conf:        conf,
		progressSvc: progSvc,
		out:         os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		db.Close()
		os.Exit(1)
	}
}
