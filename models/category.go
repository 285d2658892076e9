package models

import (
	"time"

	"gorm.io/gorm"
)

// ExpenseCategory 消费类别（每用户独立维护，可携带预算）
//
// 预算有两种形态，互斥：
//   - 一次性预算：BudgetAmount > 0 且 MonthlyFixedBudget == 0，整个生命周期累计扣减，不回填
//   - 每月固定预算：MonthlyFixedBudget > 0，每个自然月初重新计算，只统计当月消费
//
// 剩余额度一律由消费记录实时推导，不落库，避免增量维护带来的漂移。
type ExpenseCategory struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	UserID       uint    `json:"user_id" gorm:"index;not null"`
	Name         string  `json:"name" gorm:"size:50;not null;index"`
	Description  string  `json:"description" gorm:"size:200"`
	IsDefault    bool    `json:"is_default" gorm:"default:false"` // 系统默认类别，注册时播种，不可删除
	BudgetAmount float64 `json:"budget_amount" gorm:"type:decimal(18,2);default:0"`
	// MonthlyFixedBudget > 0 时该类别为每月固定预算
	MonthlyFixedBudget float64 `json:"monthly_fixed_budget" gorm:"type:decimal(18,2);default:0"`
	// 每月预算重置的年月水位，nil 表示从未重置过
	LastResetYear  *int           `json:"last_reset_year"`
	LastResetMonth *int           `json:"last_reset_month"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
	User           User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (ExpenseCategory) TableName() string {
	return "expense_categories"
}

// DefaultExpenseCategories 注册时播种的默认消费类别
func DefaultExpenseCategories(userID uint) []ExpenseCategory {
	return []ExpenseCategory{
		{UserID: userID, Name: "Business", Description: "业务开销", IsDefault: true},
		{UserID: userID, Name: "Personal", Description: "个人开销", IsDefault: true},
		{UserID: userID, Name: "Personal Business", Description: "个人业务开销", IsDefault: true},
	}
}
