package repo

import (
	"Lumen/internal/model"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// DefaultSQLitePath используется, когда DATABASE_URI не задан.
const DefaultSQLitePath = "lumen.db"

// InitDB открывает БД по DSN и выполняет миграции.
// DSN вида postgres://... или содержащий host= уходит в драйвер postgres,
// всё остальное считается путём к файлу SQLite (драйвер modernc).
func InitDB(dsn string) (*gorm.DB, error) {
	dial := dialectorFor(dsn)
	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func dialectorFor(dsn string) gorm.Dialector {
	if isPostgresDSN(dsn) {
		return postgres.Open(dsn)
	}
	if dsn == "" {
		dsn = DefaultSQLitePath
	}
	return gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}
