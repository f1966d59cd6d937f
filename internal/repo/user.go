package repo

import (
	"Lumen/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// UserRepository контракт доступа к пользователям для слоя сервиса.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	// GetUserByLogin возвращает (nil, nil), если пользователь не найден.
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	// GetUserByID возвращает gorm.ErrRecordNotFound, если пользователя нет.
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	// ResetQuota обнуляет израсходованную квоту и начинает новый период с момента at.
	ResetQuota(ctx context.Context, id int64, at time.Time) error
	// ConsumeQuota атомарно списывает n единиц, если после списания расход не превысит limit.
	// Возвращает ErrQuotaExhausted, если квоты не хватает.
	ConsumeQuota(ctx context.Context, id int64, n, limit int) error
	// SetStatus меняет тариф пользователя и его лимит квоты.
	SetStatus(ctx context.Context, id int64, isPro bool, limit int) error
}

// ErrQuotaExhausted квоты не хватает на списание.
var ErrQuotaExhausted = errors.New("quota exhausted")

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт gorm-реализацию UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("username = ?", login).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) ResetQuota(ctx context.Context, id int64, at time.Time) error {
	tx := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]any{"quota_used": 0, "quota_reset_at": at})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) ConsumeQuota(ctx context.Context, id int64, n, limit int) error {
	tx := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND quota_used + ? <= ?", id, n, limit).
		Update("quota_used", gorm.Expr("quota_used + ?", n))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected > 0 {
		return nil
	}

	// ни одна строка не обновилась: либо нет пользователя, либо не хватает квоты
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrQuotaExhausted
}

func (r *userRepo) SetStatus(ctx context.Context, id int64, isPro bool, limit int) error {
	tx := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]any{"is_pro": isPro, "quota_limit": limit})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound сообщает, что запись не найдена.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
