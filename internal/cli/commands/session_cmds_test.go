package commands

import (
	"context"
	"strings"
	"testing"
)

func TestWhoami_Run(t *testing.T) {
	s, tokens := newTestSession(t, fakeBackend(t))
	cmd := whoamiCmd{}

	// без токена сеть не трогаем
	out := withStdoutCapture(t, func() { _ = cmd.Run(context.Background(), s, nil) })
	if !strings.Contains(out, "Not logged in") {
		t.Fatalf("unexpected output: %q", out)
	}

	withStdoutCapture(t, func() { _ = (loginCmd{}).Run(context.Background(), s, []string{"alice", "secret"}) })
	out = withStdoutCapture(t, func() {
		if err := cmd.Run(context.Background(), s, nil); err != nil {
			t.Fatalf("whoami: %v", err)
		}
	})
	if !strings.Contains(out, "alice (free)") {
		t.Fatalf("unexpected output: %q", out)
	}

	if tok, _ := tokens.Load(); tok != "tok-123" {
		t.Fatalf("token must stay persisted, got %q", tok)
	}

	if err := cmd.Run(context.Background(), s, []string{"extra"}); err != ErrUsage {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
}

// протухший токен: сессия сбрасывается, файл токена удаляется, команда не падает
func TestWhoami_StaleTokenLogsOut(t *testing.T) {
	s, tokens := newTestSessionWithToken(t, fakeBackend(t), "stale")
	if s.Token() != "stale" {
		t.Fatalf("token must be loaded at startup, got %q", s.Token())
	}

	out := withStdoutCapture(t, func() {
		if err := (whoamiCmd{}).Run(context.Background(), s, nil); err != nil {
			t.Fatalf("whoami must not fail on expired session: %v", err)
		}
	})
	if !strings.Contains(out, "Session expired") {
		t.Fatalf("unexpected output: %q", out)
	}
	if s.Token() != "" || s.IsLoggedIn() {
		t.Fatalf("session must be reset: %+v", s.Snapshot())
	}
	if _, err := tokens.Load(); err == nil {
		t.Fatalf("stale token must be removed from disk")
	}
}

func TestLogoutAndGuest_Run(t *testing.T) {
	s, tokens := newTestSession(t, fakeBackend(t))
	withStdoutCapture(t, func() { _ = (loginCmd{}).Run(context.Background(), s, []string{"alice", "secret"}) })

	out := withStdoutCapture(t, func() {
		if err := (guestCmd{}).Run(context.Background(), s, nil); err != nil {
			t.Fatalf("guest: %v", err)
		}
	})
	if !strings.Contains(out, "Guest (free)") || !s.IsGuest() {
		t.Fatalf("guest mode not enabled: %q", out)
	}

	out = withStdoutCapture(t, func() {
		if err := (logoutCmd{}).Run(context.Background(), s, nil); err != nil {
			t.Fatalf("logout: %v", err)
		}
	})
	if !strings.Contains(out, "Logged out") || s.IsGuest() || s.IsLoggedIn() || s.Token() != "" {
		t.Fatalf("logout did not reset session: %+v", s.Snapshot())
	}
	if _, err := tokens.Load(); err == nil {
		t.Fatalf("token file must be removed")
	}

	if err := (logoutCmd{}).Run(context.Background(), s, []string{"x"}); err != ErrUsage {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
	if err := (guestCmd{}).Run(context.Background(), s, []string{"x"}); err != ErrUsage {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
}
