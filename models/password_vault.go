package models

import (
	"time"

	"gorm.io/gorm"
)

// PasswordCategory 密码类别（如社交、银行、工作）
type PasswordCategory struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"size:50;not null;index"`
	Description string         `json:"description" gorm:"size:200"`
	IsDefault   bool           `json:"is_default" gorm:"default:false"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (PasswordCategory) TableName() string {
	return "password_categories"
}

// StoredPassword 密码保险箱条目，密码以 AES 密文落库，永不存明文
type StoredPassword struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	UserID     uint   `json:"user_id" gorm:"index;not null"`
	CategoryID uint   `json:"category_id" gorm:"index;not null"`
	SiteName   string `json:"site_name" gorm:"size:100;not null"`
	Username   string `json:"username" gorm:"size:255;not null"`
	// AES-256-GCM 密文，base64(nonce+ciphertext)
	EncryptedPassword string           `json:"-" gorm:"size:512;not null"`
	SiteURL           string           `json:"site_url" gorm:"size:255"`
	Notes             string           `json:"notes" gorm:"size:500"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	DeletedAt         gorm.DeletedAt   `json:"-" gorm:"index"`
	User              User             `json:"-" gorm:"foreignKey:UserID"`
	Category          PasswordCategory `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (StoredPassword) TableName() string {
	return "stored_passwords"
}

// DefaultPasswordCategories 注册时播种的默认密码类别
func DefaultPasswordCategories(userID uint) []PasswordCategory {
	return []PasswordCategory{
		{UserID: userID, Name: "Social", Description: "社交账号", IsDefault: true},
		{UserID: userID, Name: "Banking", Description: "银行与金融账号", IsDefault: true},
		{UserID: userID, Name: "Work", Description: "工作账号", IsDefault: true},
	}
}
