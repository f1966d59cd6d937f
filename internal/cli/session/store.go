// Package session хранит клиентскую сессию авторизации: кто пользователь,
// вошёл ли он или работает гостем, и bearer-токен, который зеркалируется
// в постоянный TokenStore.
//
// Store создаётся один раз в main и передаётся тем, кому он нужен.
// Каждое изменение рассылает подписчикам копию нового состояния.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"Lumen/internal/cli/api"
	"Lumen/internal/cli/repo"
)

// User личность и квота текущей сессии.
type User = api.User

// guestUser профиль, который ставит EnableGuestMode. Каждый вызов отдаёт новое значение.
func guestUser() User { return User{Username: "Guest"} }

// State снимок сессии на момент чтения.
type State struct {
	User       User
	IsLoggedIn bool
	IsGuest    bool
	Token      string
}

// Authenticator бэкенд, с которым работает Store.
type Authenticator interface {
	Me(ctx context.Context, token string) (api.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) error
}

// Listener получает состояние после каждого изменения.
type Listener func(State)

// Store контейнер состояния сессии.
type Store struct {
	auth   Authenticator
	tokens repo.TokenStore
	log    *zap.SugaredLogger

	mu    sync.RWMutex
	state State

	subMu  sync.Mutex
	subs   []subscription
	nextID int
}

type subscription struct {
	id int
	fn Listener
}

// Option настраивает Store.
type Option func(*Store)

// WithLogger задаёт логгер для принудительных выходов и ошибок хранилища токена.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New создаёт Store и поднимает токен из tokens. Отсутствие токена равно пустому
// токену, остальные ошибки чтения возвращаются.
func New(auth Authenticator, tokens repo.TokenStore, opts ...Option) (*Store, error) {
	s := &Store{
		auth:   auth,
		tokens: tokens,
		log:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}

	tok, err := tokens.Load()
	switch {
	case errors.Is(err, repo.ErrNoToken):
	case err != nil:
		return nil, err
	default:
		s.state.Token = tok
	}
	return s, nil
}

// Snapshot возвращает копию текущего состояния.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) User() User       { return s.Snapshot().User }
func (s *Store) IsLoggedIn() bool { return s.Snapshot().IsLoggedIn }
func (s *Store) IsGuest() bool    { return s.Snapshot().IsGuest }
func (s *Store) Token() string    { return s.Snapshot().Token }

// Subscribe регистрирует fn и возвращает функцию отписки.
// Слушатели вызываются синхронно, в порядке подписки, уже без блокировки.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(st)
	}
}

// update применяет fn под блокировкой на запись и уведомляет подписчиков.
func (s *Store) update(fn func(st *State)) State {
	s.mu.Lock()
	fn(&s.state)
	st := s.state
	s.mu.Unlock()

	s.notify(st)
	return st
}

// CheckAuth обновляет пользователя с бэкенда. Без токена ничего не делает.
// Любая ошибка считается невалидным токеном: сессия сбрасывается, а ошибка
// возвращается только для информации.
// Если пока шёл запрос токен сменился (Logout или новый Login), ответ устарел
// и состояние не трогается.
func (s *Store) CheckAuth(ctx context.Context) error {
	tok := s.Token()
	if tok == "" {
		return nil
	}

	u, err := s.auth.Me(ctx, tok)
	if err != nil {
		if s.resetIfToken(tok) {
			s.log.Infow("session check failed, logging out", "error", err)
			s.clearPersisted()
		}
		return err
	}

	s.mu.Lock()
	if s.state.Token != tok {
		s.mu.Unlock()
		return nil
	}
	s.state.User = u
	s.state.IsLoggedIn = true
	s.state.IsGuest = false
	st := s.state
	s.mu.Unlock()

	s.notify(st)
	return nil
}

// resetIfToken сбрасывает сессию, только если в ней всё ещё токен tok.
func (s *Store) resetIfToken(tok string) bool {
	s.mu.Lock()
	if s.state.Token != tok {
		s.mu.Unlock()
		return false
	}
	s.state = State{}
	st := s.state
	s.mu.Unlock()

	s.notify(st)
	return true
}

// EnableGuestMode ставит гостевой профиль. Token и IsLoggedIn не меняются.
func (s *Store) EnableGuestMode() {
	s.update(func(st *State) {
		st.IsGuest = true
		st.User = guestUser()
	})
}

// Login меняет логин/пароль на токен, сохраняет его и запускает CheckAuth.
// Ошибка запроса логина возвращается как есть. Неудачный CheckAuth после
// входа здесь не возвращается: он уже сбросил сессию.
func (s *Store) Login(ctx context.Context, username, password string) error {
	tok, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}

	s.update(func(st *State) { st.Token = tok })
	if err := s.tokens.Save(tok); err != nil {
		return err
	}
	s.update(func(st *State) { st.IsGuest = false })

	_ = s.CheckAuth(ctx)
	return nil
}

// Register создаёт аккаунт. Сессию не трогает.
func (s *Store) Register(ctx context.Context, username, password string) error {
	return s.auth.Register(ctx, username, password)
}

// Logout сбрасывает сессию и удаляет сохранённый токен. Идемпотентен;
// ошибка хранилища только логируется.
func (s *Store) Logout() {
	s.update(func(st *State) { *st = State{} })
	s.clearPersisted()
}

func (s *Store) clearPersisted() {
	if err := s.tokens.Clear(); err != nil {
		s.log.Warnw("failed to clear persisted token", "error", err)
	}
}
