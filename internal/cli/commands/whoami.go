package commands

import (
	"context"
	"fmt"

	"Lumen/internal/cli/session"
)

type whoamiCmd struct{}

func (whoamiCmd) Name() string        { return "whoami" }
func (whoamiCmd) Description() string { return "Show the current user and remaining quota" }
func (whoamiCmd) Usage() string       { return "whoami" }

// Run проверяет токен на сервере. Любая ошибка проверки означает выход из сессии,
// поэтому команда сообщает о ней, но не завершается с ошибкой.
func (whoamiCmd) Run(ctx context.Context, s *session.Store, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if s.Token() == "" {
		fmt.Fprintln(Out, "Not logged in")
		return nil
	}
	if err := s.CheckAuth(ctx); err != nil {
		fmt.Fprintf(Out, "Session expired (%v), please login again\n", err)
		return nil
	}
	printUser(s.User())
	return nil
}

func init() { RegisterCmd(whoamiCmd{}) }
