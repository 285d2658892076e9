package models

import (
	"time"

	"gorm.io/gorm"
)

// 餐次常量
const (
	MealBreakfast = "早餐"
	MealLunch     = "午餐"
	MealDinner    = "晚餐"
	MealSnack     = "加餐"
)

// MealTypes 获取所有餐次
func MealTypes() []string {
	return []string{MealBreakfast, MealLunch, MealDinner, MealSnack}
}

// ValidMealType 校验餐次取值
func ValidMealType(mealType string) bool {
	for _, m := range MealTypes() {
		if m == mealType {
			return true
		}
	}
	return false
}

// FoodEntry 饮食记录模型，记录热量与三大营养素
type FoodEntry struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"size:200;not null"`
	MealType    string         `json:"meal_type" gorm:"size:50;not null;index"`
	Date        time.Time      `json:"date" gorm:"not null;index"`
	ServingSize string         `json:"serving_size" gorm:"size:100"`
	Calories    int            `json:"calories"`                         // 千卡
	Protein     float64        `json:"protein" gorm:"type:decimal(8,2)"` // 蛋白质（克）
	Carbs       float64        `json:"carbs" gorm:"type:decimal(8,2)"`   // 碳水（克）
	Fats        float64        `json:"fats" gorm:"type:decimal(8,2)"`    // 脂肪（克）
	Notes       string         `json:"notes" gorm:"size:500"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (FoodEntry) TableName() string {
	return "food_entries"
}
