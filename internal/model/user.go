package model

import "time"

// User: серверная модель пользователя вместе с его квотой.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Username string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"` // bcrypt-хеш

	IsPro        bool      `gorm:"not null;default:false"`
	QuotaLimit   int       `gorm:"not null;default:20"`
	QuotaUsed    int       `gorm:"not null;default:0"`
	QuotaResetAt time.Time // начало текущего периода квоты

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// QuotaRemaining возвращает остаток квоты, не меньше нуля.
func (u *User) QuotaRemaining() int {
	if left := u.QuotaLimit - u.QuotaUsed; left > 0 {
		return left
	}
	return 0
}
