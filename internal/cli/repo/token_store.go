package repo

import "errors"

// ErrNoToken токен ещё не сохранён (или был удалён).
var ErrNoToken = errors.New("no stored token")

// TokenKey ключ, под которым хранится токен в key-value хранилищах.
const TokenKey = "token"

// TokenStore описывает абстракцию хранилища auth-токена на клиенте.
// Load возвращает ErrNoToken, если токена нет; Clear идемпотентен.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}
