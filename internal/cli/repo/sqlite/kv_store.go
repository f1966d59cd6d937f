package sqlite

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"Lumen/internal/cli/repo"

	_ "modernc.org/sqlite"
)

// Схема клиентской БД.
//
//go:embed migrations/001_init.sql
var initDDL string

// KVStore: локальное key-value хранилище клиента поверх SQLite.
// Токен лежит под ключом repo.TokenKey, по аналогии с localStorage браузера.
type KVStore struct {
	db *sql.DB
}

var _ repo.TokenStore = (*KVStore)(nil)

// Open открывает (и создаёт при необходимости) файл БД и применяет миграции.
func Open(path string) (*KVStore, error) {
	if path == "" {
		return nil, errors.New("empty client db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &KVStore{db: db}
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate client db: %w", err)
	}
	return s, nil
}

// Close закрывает соединение с БД.
func (s *KVStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate гарантирует наличие таблицы kv.
func (s *KVStore) Migrate() error {
	_, err := s.db.Exec(initDDL)
	return err
}

// Get возвращает значение ключа; ok=false, если ключа нет.
func (s *KVStore) Get(key string) (value string, ok bool, err error) {
	err = s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set записывает значение ключа (upsert).
func (s *KVStore) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO kv(key, value, updated_at) VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	return err
}

// Delete удаляет ключ; отсутствие ключа ошибкой не считается.
func (s *KVStore) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

// Save сохраняет auth-токен.
func (s *KVStore) Save(token string) error {
	return s.Set(repo.TokenKey, token)
}

// Load читает auth-токен; отсутствие ключа или пустое значение: repo.ErrNoToken.
func (s *KVStore) Load() (string, error) {
	v, ok, err := s.Get(repo.TokenKey)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return "", repo.ErrNoToken
	}
	return v, nil
}

// Clear удаляет auth-токен.
func (s *KVStore) Clear() error {
	return s.Delete(repo.TokenKey)
}
