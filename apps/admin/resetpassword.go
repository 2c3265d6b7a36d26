package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/chama/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	_, err = cli.usrSvc.Update(ctx, usr.ID, user.UpdateUser{
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	return errors.Wrap(err, "updating password")
}
