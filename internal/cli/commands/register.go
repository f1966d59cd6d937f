package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"Lumen/internal/cli/api"
	"Lumen/internal/cli/session"
)

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create a new account (does not log in)" }
func (registerCmd) Usage() string       { return "register <username> <password>" }

func (registerCmd) Run(ctx context.Context, s *session.Store, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	err := s.Register(ctx, args[0], args[1])
	var se *api.StatusError
	if errors.As(err, &se) && se.Code == http.StatusConflict {
		return errors.New("login already in use")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Account %s created, now run: lmcli login %s <password>\n", args[0], args[0])
	return nil
}

func init() { RegisterCmd(registerCmd{}) }
