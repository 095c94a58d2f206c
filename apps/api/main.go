package main

import (
	stdlog "log"
	"os"

	"github.com/safeschool/drillready/apps/api/echo"
	"github.com/safeschool/drillready/core"
	"github.com/safeschool/drillready/core/account"
	"github.com/safeschool/drillready/services/email"
	"github.com/safeschool/drillready/services/logger"
	"github.com/safeschool/drillready/storage/database"
	"github.com/safeschool/drillready/storage/database/sqlx"
)

func main() {
	std := stdlog.New(os.Stdout, "API : ", stdlog.LstdFlags|stdlog.Lshortfile)

	conf, err := core.LoadConfig()
	if err != nil {
		std.Fatalf("loading config: %v", err)
	}

	var logger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()
	if err = database.Ping(db); err != nil {
		logger.Fatal("pinging database", err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	acctSvc := account.NewService(sqlxrepos.NewAccountRepository(db), mailSvc, conf.AppName)

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Conf:       conf,
		Logger:     logger,
		AccountSvc: acctSvc,
	})
	if err := app.Start(); err != nil {
		logger.Fatal("server error", err)
	}
}
