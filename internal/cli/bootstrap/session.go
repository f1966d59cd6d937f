package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"Lumen/internal/cli/api"
	"Lumen/internal/cli/repo"
	fsrepo "Lumen/internal/cli/repo/fs"
	reposqlite "Lumen/internal/cli/repo/sqlite"
	"Lumen/internal/cli/session"
	"Lumen/internal/config"
)

// OpenTokenStore выбирает хранилище токена по конфигу.
// cleanup необходимо вызвать по окончании работы, чтобы закрыть соединение с БД.
func OpenTokenStore(cfg *config.Config) (repo.TokenStore, func() error, error) {
	if cfg.TokenStore == config.TokenStoreSQLite {
		kv, err := reposqlite.Open(cfg.ClientDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open client db: %w", err)
		}
		return kv, kv.Close, nil
	}
	return fsrepo.NewAuthFSStore(cfg.TokenFile), func() error { return nil }, nil
}

// OpenSession собирает session.Store для CLI: API-клиент, хранилище токена и логгер.
func OpenSession(cfg *config.Config, logger *zap.SugaredLogger) (*session.Store, func() error, error) {
	tokens, cleanup, err := OpenTokenStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	client := api.NewClient(cfg.ServerURL, cfg.HTTPTimeout)
	s, err := session.New(client, tokens, session.WithLogger(logger))
	if err != nil {
		_ = cleanup()
		return nil, nil, fmt.Errorf("load session: %w", err)
	}
	return s, cleanup, nil
}
