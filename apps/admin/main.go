package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/member"
	"github.com/trezcool/chama/core/user"
	emailsvc "github.com/trezcool/chama/services/email"
	logsvc "github.com/trezcool/chama/services/logger"
	"github.com/trezcool/chama/storage/database"
	sqlxrepos "github.com/trezcool/chama/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	sqlDB, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = sqlDB.Close() }()
	db := sqlx.NewDb(sqlDB, conf.Database.Engine)

	mailSvc := emailsvc.NewConsoleService(conf)
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	mbrSvc := member.NewService(sqlxrepos.NewMemberRepository(db))

	cli := commandLine{
		db:     sqlDB,
		conf:   conf,
		logger: logger,
		usrSvc: usrSvc,
		mbrSvc: mbrSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
