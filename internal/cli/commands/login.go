package commands

import (
	"context"
	"errors"
	"fmt"

	"Lumen/internal/cli/api"
	"Lumen/internal/cli/session"
)

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store the access token" }
func (loginCmd) Usage() string       { return "login <username> <password>" }

func (loginCmd) Run(ctx context.Context, s *session.Store, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	if err := s.Login(ctx, args[0], args[1]); err != nil {
		if api.IsUnauthorized(err) {
			return errors.New("invalid login or password")
		}
		return err
	}
	// Login сам вызывает CheckAuth; если тот не прошёл, сессия уже сброшена
	if !s.IsLoggedIn() {
		return errors.New("logged in, but the server rejected the new token")
	}
	fmt.Fprintln(Out, "Logged in successfully")
	printUser(s.User())
	return nil
}

func init() { RegisterCmd(loginCmd{}) }
