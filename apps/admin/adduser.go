package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/studyhall/studyhall/core/user"
)

// addUser creates a user.User ahead of its first Google login.
func (cli *commandLine) addUser(email, name string) error {
	nu := user.NewUser{Email: email, Name: name}
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}

	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return errors.Wrap(err, "adding user")
	}
	fmt.Fprintf(cli.out, "user %s created (id: %s)\n", usr.Email, usr.ID)
	return nil
}
