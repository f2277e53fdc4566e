package main

import (
	"log"
	"os"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/progression"
	logsvc "github.com/trezcool/maendeleo/services/logger"
	"github.com/trezcool/maendeleo/storage/catalog"
	"github.com/trezcool/maendeleo/storage/database"
	sqlxrepos "github.com/trezcool/maendeleo/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	svcLogger := logsvc.NewRollbarLogger(logger, conf)
	svcLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	// set up the progression service
	cat, err := catalog.Load(conf)
	errAndDie(err)
	svc := progression.NewService(sqlxrepos.NewProgressionRepository(db), cat, svcLogger, nil, nil)

	// start CLI
	cli := commandLine{
		db:   db.DB,
		conf: conf,
		svc:  svc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
