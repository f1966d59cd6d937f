package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN   string        `env:"DATABASE_URI"`
	AuthSecret    string        `env:"AUTH_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL"`
	QuotaLimit    int           `env:"QUOTA_LIMIT"`
	ProQuotaLimit int           `env:"PRO_QUOTA_LIMIT"`
	QuotaPeriod   time.Duration `env:"QUOTA_PERIOD"`
	AdminToken    string        `env:"ADMIN_TOKEN"` // пусто: админские маршруты не подключаются

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL    string        `env:"-"`
	TokenStore   string        `env:"TOKEN_STORE"` // file | sqlite
	ClientDBPath string        `env:"CLIENT_DB_PATH"`
	TokenFile    string        `env:"TOKEN_FILE"`
	LogLevel     string        `env:"LOG_LEVEL"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT"`
	Version      bool          `env:"-"` // show client version and exit (flag only)
}

// Token store kinds.
const (
	TokenStoreFile   = "file"
	TokenStoreSQLite = "sqlite"
)

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// флаги принимают значения из env как значения по умолчанию
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "время жизни access token")
	flag.StringVar(&cfg.AdminToken, "admin-token", cfg.AdminToken, "токен администратора для смены тарифа")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the Lumen server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.TokenStore, "token-store", cfg.TokenStore, "where to persist the auth token: file or sqlite")
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "path to client SQLite DB")
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "client log level (debug, info, warn, error)")
	flag.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "client HTTP timeout")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.QuotaLimit <= 0 {
		cfg.QuotaLimit = 20
	}
	if cfg.ProQuotaLimit <= 0 {
		cfg.ProQuotaLimit = 200
	}
	if cfg.QuotaPeriod <= 0 {
		cfg.QuotaPeriod = 7 * 24 * time.Hour
	}

	// BaseURL должен быть в виде "address:port" (без схемы и пути), иначе берём значение по умолчанию
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}
	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	// Fill client defaults if empty
	if cfg.TokenStore != TokenStoreSQLite {
		cfg.TokenStore = TokenStoreFile
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 15 * time.Second
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base, _ = os.UserHomeDir()
	}
	if cfg.ClientDBPath == "" {
		cfg.ClientDBPath = filepath.Join(base, "Lumen", "client.sqlite")
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = filepath.Join(base, "Lumen", "token")
	}
}
