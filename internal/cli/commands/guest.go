package commands

import (
	"context"
	"fmt"

	"Lumen/internal/cli/session"
)

type guestCmd struct{}

func (guestCmd) Name() string        { return "guest" }
func (guestCmd) Description() string { return "Continue as a guest without an account" }
func (guestCmd) Usage() string       { return "guest" }

func (guestCmd) Run(_ context.Context, s *session.Store, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	s.EnableGuestMode()
	fmt.Fprintln(Out, "Guest mode enabled")
	printUser(s.User())
	return nil
}

func init() { RegisterCmd(guestCmd{}) }
