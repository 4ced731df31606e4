package main

import (
	"fmt"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/studylog/apps/api/echo"
)

var errInvalidRole = errors.New("invalid role")

func (cli *commandLine) token(subject, name, role string) error {
	if !validRole(role) {
		return errInvalidRole
	}
	if name == "" {
		name = subject
	}

	token, err := echoapi.GenerateToken(cli.conf, echoapi.NewClaims(cli.conf, subject, name, role))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	fmt.Fprintln(cli.out, token)
	return nil
}

func validRole(role string) bool {
	for _, r := range echoapi.Roles {
		if r == role {
			return true
		}
	}
	return false
}
