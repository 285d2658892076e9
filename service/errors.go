package service

import "errors"

// 业务失败原因。处理器据此决定状态码和给用户的提示，
// 不再用裸布尔值让调用方事后猜测失败原因。
var (
	// ErrNotFound 记录不存在或不属于当前用户
	ErrNotFound = errors.New("记录不存在")
	// ErrDuplicateName 同一用户下类别名称重复
	ErrDuplicateName = errors.New("类别名称已存在")
	// ErrFutureDate 日期晚于当天
	ErrFutureDate = errors.New("日期不能晚于今天")
	// ErrEmptyReason 消费备注为空
	ErrEmptyReason = errors.New("消费备注不能为空")
	// ErrInsufficientBalance 一次性预算余额不足
	ErrInsufficientBalance = errors.New("预算余额不足")
	// ErrDefaultCategory 默认类别不允许删除
	ErrDefaultCategory = errors.New("默认类别不允许删除")
	// ErrCategoryInUse 类别下仍有记录，不允许删除
	ErrCategoryInUse = errors.New("类别下仍有记录，无法删除")
	// ErrInvalidName 类别名称不合法
	ErrInvalidName = errors.New("类别名称只能包含字母、数字和空格")
	// ErrInvalidBudget 预算金额不合法
	ErrInvalidBudget = errors.New("预算金额不能为负数")
	// ErrInvalidMonth 月份参数格式不正确
	ErrInvalidMonth = errors.New("月份格式错误，应为 2006-01")
	// ErrPastDeadline 截止时间早于当前时间
	ErrPastDeadline = errors.New("截止时间不能早于当前时间")
	// ErrInvalidTimeRange 结束时间不晚于开始时间
	ErrInvalidTimeRange = errors.New("结束时间必须晚于开始时间")
)
