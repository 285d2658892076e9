package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"
)

// PasswordReset 密码重置验证码模型
type PasswordReset struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Code      string         `json:"code" gorm:"size:16;not null;index"`
	Email     string         `json:"email" gorm:"size:100;not null"`
	ExpiresAt time.Time      `json:"expires_at" gorm:"not null"`
	Used      bool           `json:"used" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (PasswordReset) TableName() string {
	return "password_resets"
}

// GenerateResetCode 生成6位数字验证码
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// IsExpired 检查验证码是否过期
func (p *PasswordReset) IsExpired() bool {
	return time.Now().After(p.ExpiresAt)
}

// IsValid 检查验证码是否有效
func (p *PasswordReset) IsValid() bool {
	return !p.Used && !p.IsExpired()
}
