package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"Lumen/internal/cli/api"
	fsrepo "Lumen/internal/cli/repo/fs"
	"Lumen/internal/cli/session"
)

// newTestSession собирает session.Store поверх временного файла токена и сервера h.
func newTestSession(t *testing.T, h http.Handler) (*session.Store, fsrepo.AuthFSStore) {
	t.Helper()
	return newTestSessionWithToken(t, h, "")
}

// newTestSessionWithToken то же, но файл токена заранее содержит token.
func newTestSessionWithToken(t *testing.T, h http.Handler, token string) (*session.Store, fsrepo.AuthFSStore) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	tokens := fsrepo.NewAuthFSStore(filepath.Join(t.TempDir(), "token"))
	if token != "" {
		if err := tokens.Save(token); err != nil {
			t.Fatalf("save token: %v", err)
		}
	}
	s, err := session.New(api.NewClient(ts.URL, time.Second), tokens)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return s, tokens
}

// fakeBackend имитирует /api/auth/*: alice/secret получает tok-123.
func fakeBackend(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(api.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("username") == "alice" && r.FormValue("password") == "secret" {
			_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer"}`))
			return
		}
		if r.FormValue("username") == "broken" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		http.Error(w, "invalid login or password", http.StatusUnauthorized)
	})
	mux.HandleFunc(api.MePath, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"username":"alice","is_pro":false,"quota_remaining":7,"quota_limit":20}`))
	})
	mux.HandleFunc(api.RegisterPath, func(w http.ResponseWriter, r *http.Request) {
		var req api.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Username {
		case "alice":
			http.Error(w, "login already in use", http.StatusConflict)
		case "broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	})
	return mux
}

// перехват stdout на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}
