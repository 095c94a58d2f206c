package main

import (
	stdlog "log"
	"os"

	"github.com/safeschool/drillready/core"
	"github.com/safeschool/drillready/core/account"
	"github.com/safeschool/drillready/storage/database"
	"github.com/safeschool/drillready/storage/database/sqlx"
)

func main() {
	std := stdlog.New(os.Stdout, "ADMIN : ", stdlog.LstdFlags)

	conf, err := core.LoadConfig()
	if err != nil {
		std.Fatalf("loading config: %v", err)
	}

	db, err := database.OpenAdmin(conf)
	if err != nil {
		std.Fatalf("opening database: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err = database.Ping(db); err != nil {
		std.Fatalf("pinging database: %v", err)
	}

	cli := &commandLine{
		db:      db,
		acctSvc: account.NewService(sqlxrepos.NewAccountRepository(db), nil, conf.AppName),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Fatalf("%v", err)
		}
		os.Exit(2)
	}
}
