package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"Lumen/internal/cli/repo"
)

// AuthFSStore: файловое хранилище auth-токена для CLI.
type AuthFSStore struct {
	// Path путь к файлу токена; пустой: <UserConfigDir>/Lumen/token.
	Path string
}

var _ repo.TokenStore = AuthFSStore{}

// NewAuthFSStore создаёт хранилище с указанным путём.
func NewAuthFSStore(path string) AuthFSStore {
	return AuthFSStore{Path: path}
}

func (s AuthFSStore) tokenPath() (string, error) {
	if s.Path != "" {
		return s.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "Lumen", repo.TokenKey), nil
}

// Save сохраняет auth‑токен в файл (права 0600, каталог 0700).
func (s AuthFSStore) Save(token string) error {
	p, err := s.tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	return os.WriteFile(p, []byte(token), 0o600)
}

// Load читает auth‑токен из файла. Отсутствующий или пустой файл: ErrNoToken.
func (s AuthFSStore) Load() (string, error) {
	p, err := s.tokenPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", repo.ErrNoToken
	}
	if err != nil {
		return "", err
	}
	// обрезаем завершающие переводы строки/пробелы
	tok := strings.TrimRight(string(b), " \t\r\n")
	if tok == "" {
		return "", repo.ErrNoToken
	}
	return tok, nil
}

// Clear удаляет файл токена; отсутствие файла ошибкой не считается.
func (s AuthFSStore) Clear() error {
	p, err := s.tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
