package commands

import (
	"context"
	"fmt"

	"Lumen/internal/cli/session"
)

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget the stored access token" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(_ context.Context, s *session.Store, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	s.Logout()
	fmt.Fprintln(Out, "Logged out")
	return nil
}

func init() { RegisterCmd(logoutCmd{}) }
