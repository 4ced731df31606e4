package main

import (
	"fmt"
	"log"

	dig_container "github.com/trezcool/studylog/apps/api/di/dig"
	echoapi "github.com/trezcool/studylog/apps/api/echo"
	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/storage/database"
)

func startWithDig() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		dbLoggerParam dig_container.DBLoggerParam,
		repos database.Repositories,
		server *echoapi.Server,
	) {
		apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))

		dbLogger := dbLoggerParam.Logger
		defer func() {
			if err := repos.Close(); err != nil {
				dbLogger.Fatal("Failed to close", err)
			}
		}()
		defer apiLogger.Info("Application stopped")

		serve(conf, apiLogger, server)
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
