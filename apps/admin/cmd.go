package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/progression"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db   *sql.DB
	conf *core.Config
	svc  *progression.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run DB migrations (up, down, status, ...)")
	fmt.Println("  checkcatalog [-path PATH] - validate the progression catalog")
	fmt.Println("  grantxp -user USERID -xp AMOUNT - grant bonus XP to a user")
	fmt.Println("  overview - list every user's progression summary")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	checkCatalogCmd := flag.NewFlagSet("checkcatalog", flag.ExitOnError)
	checkCatalogPath := checkCatalogCmd.String("path", "", "Catalog file path. Defaults to the configured catalog.")

	grantXPCmd := flag.NewFlagSet("grantxp", flag.ExitOnError)
	grantXPUser := grantXPCmd.String("user", "", "The user's id.")
	grantXPAmount := grantXPCmd.Int("xp", 0, "The XP amount to grant.")
	grantXPEmail := grantXPCmd.String("email", "", "The user's email, for notifications (optional).")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "checkcatalog":
		if err := checkCatalogCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.checkCatalog(*checkCatalogPath)
	case "grantxp":
		if err := grantXPCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *grantXPUser == "" || *grantXPAmount <= 0 {
			grantXPCmd.Usage()
			return errHelp
		}
		return cli.grantXP(*grantXPUser, *grantXPEmail, *grantXPAmount)
	case "overview":
		return cli.overview()
	default:
		cli.printUsage()
		return errHelp
	}
}
