package models

import (
	"time"

	"gorm.io/gorm"
)

// TimeCategory 时间类别（如工作、学习、游戏）
type TimeCategory struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"size:100;not null;index"`
	Description string         `json:"description" gorm:"size:500"`
	IsDefault   bool           `json:"is_default" gorm:"default:false"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (TimeCategory) TableName() string {
	return "time_categories"
}

// TimeEntry 时间记录模型，时长由起止时间算得
type TimeEntry struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"index;not null"`
	CategoryID      uint           `json:"category_id" gorm:"index;not null"`
	StartTime       time.Time      `json:"start_time" gorm:"not null;index"`
	EndTime         time.Time      `json:"end_time" gorm:"not null"`
	DurationMinutes int            `json:"duration_minutes" gorm:"not null"`
	Notes           string         `json:"notes" gorm:"size:500"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
	User            User           `json:"-" gorm:"foreignKey:UserID"`
	Category        TimeCategory   `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (TimeEntry) TableName() string {
	return "time_entries"
}

// DefaultTimeCategories 注册时播种的默认时间类别
func DefaultTimeCategories(userID uint) []TimeCategory {
	return []TimeCategory{
		{UserID: userID, Name: "Work", Description: "工作相关", IsDefault: true},
		{UserID: userID, Name: "Study", Description: "学习提升", IsDefault: true},
		{UserID: userID, Name: "Games", Description: "游戏娱乐", IsDefault: true},
		{UserID: userID, Name: "Exercise", Description: "运动健身", IsDefault: true},
	}
}
