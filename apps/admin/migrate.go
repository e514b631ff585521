package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// commands that roll back applied migrations
var destructiveCommands = map[string]bool{
	"down":    true,
	"down-to": true,
	"redo":    true,
	"reset":   true,
}

func (cli *commandLine) migrate(args []string, yes bool) error {
	command := args[0]
	switch command {
	case "create", "fix":
		return errors.Errorf("%q: migrations are embedded in the binary, edit storage/database/migrations instead", command)
	}

	if destructiveCommands[command] && !yes {
		if err := cli.confirm(fmt.Sprintf("%q rolls back migrations on %q. Continue? [y/N]: ", command, cli.dbName)); err != nil {
			return err
		}
	}
	return runMigrationsFunc(cli.db, command, args[1:]...)
}

// confirm prompts on the terminal; without one, -yes is required.
func (cli *commandLine) confirm(prompt string) error {
	if !isTerminalFunc(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal: pass -yes to confirm")
	}

	fmt.Fprint(cli.out, prompt)
	answer, err := readLineFunc()
	if err != nil {
		return errors.Wrap(err, "reading confirmation")
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return errAborted
	}
}
