package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/auth"
	"github.com/trezcool/chama/core/member"
	"github.com/trezcool/chama/core/user"
)

// addUser updates or creates an account, with a member profile to match.
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, uname)
	switch errors.Cause(err) {
	case nil:
		active := true
		usr, err = cli.usrSvc.Update(ctx, usr.ID, user.UpdateUser{
			Name:            usr.Name,
			Username:        uname,
			Email:           email,
			IsActive:        &active,
			Password:        pwd,
			PasswordConfirm: pwd,
		})
		if err != nil {
			return errors.Wrap(err, "updating user")
		}
	case user.ErrNotFound:
		usr, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:            uname,
			Username:        uname,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
		})
		if err != nil {
			return errors.Wrap(err, "creating user")
		}
	default:
		return err
	}

	role := auth.RoleMember
	if isAdmin {
		role = auth.RoleAdmin
	}
	if _, err = cli.mbrSvc.GetByUserID(ctx, usr.ID); err != nil {
		if errors.Cause(err) != member.ErrNotFound {
			return err
		}
		_, err = cli.mbrSvc.Create(ctx, member.NewMember{
			UserID:      usr.ID,
			DisplayName: usr.Name,
			Role:        role,
		})
		return errors.Wrap(err, "creating member profile")
	}
	_, err = cli.mbrSvc.Update(ctx, usr.ID, member.UpdateMember{Role: role})
	return errors.Wrap(err, "updating member profile")
}
