package commands

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"Lumen/internal/cli/session"
)

// fakeCmd позволяет управлять возвратом ошибок из Run
type fakeCmd struct {
	name, usage, desc string
	run               func(ctx context.Context, s *session.Store, args []string) error
}

func (f fakeCmd) Name() string        { return f.name }
func (f fakeCmd) Description() string { return f.desc }
func (f fakeCmd) Usage() string       { return f.usage }
func (f fakeCmd) Run(ctx context.Context, s *session.Store, args []string) error {
	return f.run(ctx, s, args)
}

func TestDispatcher_HelpAndUnknown(t *testing.T) {
	// зарегистрированы login/register/logout/whoami/guest из init()
	out := withStdoutCapture(t, func() { _ = Dispatch(context.Background(), nil, []string{}) })
	if !strings.Contains(out, "Lumen CLI") {
		t.Fatalf("global help expected")
	}
	for _, name := range []string{"login", "register", "logout", "whoami", "guest"} {
		if !strings.Contains(out, name) {
			t.Fatalf("command %q missing from help:\n%s", name, out)
		}
	}

	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), nil, []string{"help"}) })
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("usage expected")
	}

	var code int
	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), nil, []string{"help", "login"}) })
	if code != 0 || !strings.Contains(out, "login <username> <password>") {
		t.Fatalf("expected login usage, got %d %q", code, out)
	}

	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), nil, []string{"help", "nope"}) })
	if !strings.Contains(out, "Unknown command") {
		t.Fatalf("unknown command message expected")
	}

	withStdoutCapture(t, func() { code = Dispatch(context.Background(), nil, []string{"no-such"}) })
	if code != 2 {
		t.Fatalf("expected 2 for unknown command, got %d", code)
	}
}

func TestDispatcher_RunPaths(t *testing.T) {
	cmdOK := fakeCmd{name: "x", usage: "x", run: func(context.Context, *session.Store, []string) error { return nil }}
	RegisterCmd(cmdOK)
	if code := Dispatch(context.Background(), nil, []string{"x"}); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	cmdUsage := fakeCmd{name: "u", usage: "u <arg>", run: func(context.Context, *session.Store, []string) error { return ErrUsage }}
	RegisterCmd(cmdUsage)
	var code int
	out := withStdoutCapture(t, func() { code = Dispatch(context.Background(), nil, []string{"u"}) })
	if code != 2 || !strings.Contains(out, "Usage: u <arg>") {
		t.Fatalf("usage text expected, got %d %q", code, out)
	}

	cmdErr := fakeCmd{name: "e", usage: "e", run: func(context.Context, *session.Store, []string) error { return fmt.Errorf("boom") }}
	RegisterCmd(cmdErr)
	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), nil, []string{"e"}) })
	if code != 1 || !strings.Contains(out, "e error: boom") {
		t.Fatalf("error line expected, got: %s", out)
	}

	for _, n := range []string{"x", "u", "e"} {
		delete(registry, n)
	}
}

func TestDispatcher_PassesSession(t *testing.T) {
	s, _ := newTestSession(t, http.NotFoundHandler())
	var got *session.Store
	RegisterCmd(fakeCmd{name: "peek", usage: "peek", run: func(_ context.Context, st *session.Store, _ []string) error {
		got = st
		return nil
	}})
	defer delete(registry, "peek")

	if code := Dispatch(context.Background(), s, []string{"PEEK"}); code != 0 {
		t.Fatalf("expected 0, got %d", code)
	}
	if got != s {
		t.Fatalf("command must receive the injected session")
	}
}
