package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/trezcool/chama/core/auth"
	"github.com/trezcool/chama/core/member"
)

var errSessionTimeout = errors.New("session did not resolve in time")

var readLineFunc = func() (string, error) { // mockable
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line), err
}

// requireManager gates user management commands behind an interactive login.
// The operator must hold the manage_users capability. With an empty users
// table the gate is skipped so the first account can be bootstrapped.
func (cli *commandLine) requireManager() error {
	ctx := context.Background()

	users, err := cli.usrSvc.Query(ctx, nil, nil)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No accounts yet; proceeding without login.")
		return nil
	}

	fmt.Print("Email:")
	email, err := readLineFunc()
	if err != nil {
		return err
	}
	pwd, err := cli.promptPassword()
	if err != nil {
		return err
	}

	provider := auth.NewLocalProvider(cli.usrSvc)
	session := auth.NewSessionManager(provider, member.NewProfileStore(cli.mbrSvc), cli.conf, cli.logger)
	session.Initialize(ctx)
	defer session.Close()

	if _, err = session.Login(ctx, email, pwd); err != nil {
		return err
	}

	// profile resolution runs off the provider notification; wait for it
	deadline := time.Now().Add(cli.conf.Auth.SessionLoadTimeout)
	for !session.IsAuthenticated() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !session.IsAuthenticated() {
		return errSessionTimeout
	}

	if !session.HasPermission(auth.CapManageUsers) {
		return errNotPermitted
	}
	return nil
}
