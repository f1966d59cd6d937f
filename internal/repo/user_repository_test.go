package repo

import (
	"Lumen/internal/model"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	// успешное создание
	u, err := r.CreateUser(ctx, &model.User{Username: "john", Password: "hash", QuotaLimit: 20})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	// поиск по логину: найдено
	got, err := r.GetUserByLogin(ctx, "john")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, 20, got.QuotaLimit)

	// поиск по id
	byID, err := r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "john", byID.Username)

	// уникальный логин: вторая вставка должна дать ошибку
	_, err = r.CreateUser(ctx, &model.User{Username: "john", Password: "x"})
	assert.Error(t, err)

	// несуществующий логин: (nil, nil)
	got, err = r.GetUserByLogin(ctx, "doesnotexist")
	assert.NoError(t, err)
	assert.Nil(t, got)

	// несуществующий id: gorm.ErrRecordNotFound
	_, err = r.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_ResetQuota(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	old := time.Now().Add(-10 * 24 * time.Hour).UTC()
	u, err := r.CreateUser(ctx, &model.User{Username: "ann", Password: "h", QuotaLimit: 10, QuotaUsed: 7, QuotaResetAt: old})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, r.ResetQuota(ctx, u.ID, now))

	got, err := r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.QuotaUsed)
	assert.Equal(t, 10, got.QuotaRemaining())
	assert.True(t, got.QuotaResetAt.Equal(now), "reset time: %v", got.QuotaResetAt)

	assert.ErrorIs(t, r.ResetQuota(ctx, 12345, now), gorm.ErrRecordNotFound)
}

func TestInitDB_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.db")
	db, err := InitDB(path)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&model.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Close())
}

func TestIsPostgresDSN(t *testing.T) {
	assert.True(t, isPostgresDSN("postgres://u:p@localhost:5432/db"))
	assert.True(t, isPostgresDSN("host=localhost user=u dbname=db"))
	assert.False(t, isPostgresDSN("lumen.db"))
	assert.False(t, isPostgresDSN(""))
}

func TestUserRepository_ConsumeQuota(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	u, err := r.CreateUser(ctx, &model.User{Username: "kate", Password: "h", QuotaLimit: 5})
	require.NoError(t, err)

	require.NoError(t, r.ConsumeQuota(ctx, u.ID, 3, 5))
	got, err := r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.QuotaUsed)
	assert.Equal(t, 2, got.QuotaRemaining())

	// ровно до лимита можно
	require.NoError(t, r.ConsumeQuota(ctx, u.ID, 2, 5))

	// сверх лимита нельзя, расход не меняется
	assert.ErrorIs(t, r.ConsumeQuota(ctx, u.ID, 1, 5), ErrQuotaExhausted)
	got, err = r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.QuotaUsed)

	// лимит передаётся снаружи: после повышения тарифа списание снова проходит
	assert.NoError(t, r.ConsumeQuota(ctx, u.ID, 1, 200))

	assert.ErrorIs(t, r.ConsumeQuota(ctx, 9999, 1, 5), gorm.ErrRecordNotFound)
}

func TestUserRepository_SetStatus(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	u, err := r.CreateUser(ctx, &model.User{Username: "max", Password: "h", QuotaLimit: 20})
	require.NoError(t, err)

	require.NoError(t, r.SetStatus(ctx, u.ID, true, 200))
	got, err := r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPro)
	assert.Equal(t, 200, got.QuotaLimit)

	require.NoError(t, r.SetStatus(ctx, u.ID, false, 20))
	got, err = r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPro)
	assert.Equal(t, 20, got.QuotaLimit)

	assert.ErrorIs(t, r.SetStatus(ctx, 9999, true, 200), gorm.ErrRecordNotFound)
}
