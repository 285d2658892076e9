package models

import (
	"time"

	"gorm.io/gorm"
)

// 任务状态
const (
	TaskStatusTodo      = 0 // 待办
	TaskStatusOngoing   = 1 // 进行中
	TaskStatusCompleted = 2 // 已完成
)

// TaskItem 任务/待办事项模型
type TaskItem struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Title       string         `json:"title" gorm:"size:100;not null"`
	Description string         `json:"description" gorm:"size:300"`
	Status      int            `json:"status" gorm:"default:0;index"`
	Deadline    *time.Time     `json:"deadline"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (TaskItem) TableName() string {
	return "task_items"
}

// IsOverdue 截止时间已过且未完成即为逾期
func (t *TaskItem) IsOverdue(now time.Time) bool {
	return t.Deadline != nil && t.Deadline.Before(now) && t.Status != TaskStatusCompleted
}

// ValidTaskStatus 校验任务状态取值
func ValidTaskStatus(status int) bool {
	return status == TaskStatusTodo || status == TaskStatusOngoing || status == TaskStatusCompleted
}
