package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/studyhall/studyhall/core/user"
	"github.com/studyhall/studyhall/storage/database"
)

var (
	// mockable
	runMigrationsFunc = database.RunMigrations
	isTerminalFunc    = term.IsTerminal
	readLineFunc      = func() (string, error) { return bufio.NewReader(os.Stdin).ReadString('\n') }

	errHelp    = errors.New("help provided")
	errAborted = errors.New("aborted")
)

type commandLine struct {
	db       *sqlx.DB
	dbName   string
	usrSvc   user.Service
	validate *validator.Validate
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate [-yes] COMMAND [ARGS] - run a database migration command")
	fmt.Fprintln(cli.out, "      up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -name NAME - create a user account")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	migrateCmd := flag.NewFlagSet("migrate", flag.ContinueOnError)
	migrateCmd.SetOutput(cli.out)
	migrateYes := migrateCmd.Bool("yes", false, "Do not ask for confirmation before rolling migrations back.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserCmd.SetOutput(cli.out)
	addUserEmail := addUserCmd.String("email", "", "The user's email. Google logins with this email are linked to the account.")
	addUserName := addUserCmd.String("name", "", "The user's display name.")

	switch args[1] {
	case "migrate":
		if err := migrateCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if migrateCmd.NArg() == 0 {
			migrateCmd.Usage()
			return errHelp
		}
		return cli.migrate(migrateCmd.Args(), *migrateYes)
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserEmail, *addUserName)
	default:
		cli.printUsage()
		return errHelp
	}
}
