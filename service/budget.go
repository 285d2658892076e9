package service

import (
	"fmt"
	"time"

	"lifebook/models"

	"gorm.io/gorm"
)

// 预算口径，由类别字段推导的显式标签，避免到处散落 if x > 0 判断
type BudgetKind int

const (
	// BudgetNone 未设置预算，只记账不控额
	BudgetNone BudgetKind = iota
	// BudgetOneTime 一次性预算，整个生命周期累计扣减
	BudgetOneTime
	// BudgetRecurring 每月固定预算，每个自然月重新起算
	BudgetRecurring
)

// String 预算口径中文名
func (k BudgetKind) String() string {
	switch k {
	case BudgetOneTime:
		return "一次性预算"
	case BudgetRecurring:
		return "每月固定预算"
	default:
		return "无预算"
	}
}

// KindOfBudget 推导类别的预算口径，MonthlyFixedBudget > 0 优先
func KindOfBudget(cat *models.ExpenseCategory) BudgetKind {
	if cat.MonthlyFixedBudget > 0 {
		return BudgetRecurring
	}
	if cat.BudgetAmount > 0 {
		return BudgetOneTime
	}
	return BudgetNone
}

// CategoryBalance 单个类别的预算结余视图
type CategoryBalance struct {
	CategoryID   uint       `json:"category_id"`
	CategoryName string     `json:"category_name"`
	Kind         BudgetKind `json:"-"`
	KindLabel    string     `json:"budget_kind"`
	Budget       float64    `json:"budget"`
	Spent        float64    `json:"spent"`
	// Remaining 为展示值，向下截断到 0，不给用户看负数
	Remaining float64 `json:"remaining"`
	// Deficit 真实超支额（Spent 超出 Budget 的部分），供控额决策使用
	Deficit float64 `json:"deficit"`
}

// CalcBalance 计算类别结余，纯函数：
// lifetimeSpent 为类别生命周期内全部有效消费之和，monthSpent 为目标月内之和。
// 口径为每月预算时取 monthSpent，一次性预算时取 lifetimeSpent，无预算时全为 0。
func CalcBalance(cat *models.ExpenseCategory, lifetimeSpent, monthSpent float64) CategoryBalance {
	kind := KindOfBudget(cat)
	b := CategoryBalance{
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Kind:         kind,
		KindLabel:    kind.String(),
	}

	switch kind {
	case BudgetRecurring:
		b.Budget = cat.MonthlyFixedBudget
		b.Spent = monthSpent
	case BudgetOneTime:
		b.Budget = cat.BudgetAmount
		b.Spent = lifetimeSpent
	default:
		return b
	}

	if b.Budget >= b.Spent {
		b.Remaining = b.Budget - b.Spent
	} else {
		b.Deficit = b.Spent - b.Budget
	}
	return b
}

// MonthWindow 返回 [当月第一天零点, 下月第一天零点) 区间
func MonthWindow(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// ParseMonthToken 解析 YYYY-MM 形式的月份参数
func ParseMonthToken(token string) (int, time.Month, error) {
	t, err := time.ParseInLocation("2006-01", token, time.Local)
	if err != nil {
		return 0, 0, ErrInvalidMonth
	}
	return t.Year(), t.Month(), nil
}

// 可选月份列表的起点：产品上线当年 12 月
const (
	monthListEpochYear  = 2025
	monthListEpochMonth = time.December
)

// MonthList 生成从上线月到当前月的 YYYY-MM 列表，倒序排列，供前端下拉选择
func MonthList(clock Clock) []string {
	now := clock.Now()
	cur := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	epoch := time.Date(monthListEpochYear, monthListEpochMonth, 1, 0, 0, 0, 0, now.Location())

	var months []string
	for !cur.Before(epoch) {
		months = append(months, cur.Format("2006-01"))
		cur = cur.AddDate(0, -1, 0)
	}
	return months
}

// BudgetService 预算引擎：结余计算与每月预算重置
type BudgetService struct {
	db    *gorm.DB
	clock Clock
}

// NewBudgetService 创建预算服务
func NewBudgetService(db *gorm.DB, clock Clock) *BudgetService {
	if clock == nil {
		clock = SystemClock()
	}
	return &BudgetService{db: db, clock: clock}
}

// ResetMonthlyBudgets 每月预算重置
// 把所有"上次重置年月 != 当前年月"的每月预算类别重新基准化：
// budget_amount 回填为 monthly_fixed_budget，并盖上当前年月水位。
// 单条 UPDATE 批量提交；同一个月内重复调用命中不了 WHERE 条件，天然幂等。
// 必须在读取任何结余之前调用（仪表盘入口处），这是正确性前提而非优化。
func (s *BudgetService) ResetMonthlyBudgets(userID uint) error {
	now := s.clock.Now()
	year, month := now.Year(), int(now.Month())

	err := s.db.Model(&models.ExpenseCategory{}).
		Where("user_id = ? AND monthly_fixed_budget > 0", userID).
		Where("last_reset_year IS NULL OR last_reset_year != ? OR last_reset_month != ?", year, month).
		Updates(map[string]interface{}{
			"budget_amount":    gorm.Expr("monthly_fixed_budget"),
			"last_reset_year":  year,
			"last_reset_month": month,
		}).Error
	if err != nil {
		return fmt.Errorf("重置每月预算失败: %w", err)
	}
	return nil
}

// LifetimeSpent 类别生命周期内全部有效消费之和（软删除的记录不计入）
func (s *BudgetService) LifetimeSpent(userID, categoryID uint) (float64, error) {
	var total float64
	err := s.db.Model(&models.Expense{}).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// MonthSpent 类别在指定自然月内的有效消费之和
func (s *BudgetService) MonthSpent(userID, categoryID uint, year int, month time.Month) (float64, error) {
	start, end := MonthWindow(year, month, time.Local)
	var total float64
	err := s.db.Model(&models.Expense{}).
		Where("user_id = ? AND category_id = ? AND date >= ? AND date < ?", userID, categoryID, start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// categorySum 按类别分组的求和行
type categorySum struct {
	CategoryID uint
	Total      float64
}

// CategoryBalances 计算用户全部有效类别在指定年月下的结余卡片
func (s *BudgetService) CategoryBalances(userID uint, year int, month time.Month) ([]CategoryBalance, error) {
	var categories []models.ExpenseCategory
	if err := s.db.Where("user_id = ?", userID).Order("is_default DESC, name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("查询类别失败: %w", err)
	}

	// 两次分组求和拿到全量口径，避免每类别一条 SUM 查询
	lifetime := make(map[uint]float64)
	var rows []categorySum
	if err := s.db.Model(&models.Expense{}).
		Select("category_id, COALESCE(SUM(amount), 0) as total").
		Where("user_id = ?", userID).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("统计消费总额失败: %w", err)
	}
	for _, r := range rows {
		lifetime[r.CategoryID] = r.Total
	}

	start, end := MonthWindow(year, month, time.Local)
	monthly := make(map[uint]float64)
	rows = rows[:0]
	if err := s.db.Model(&models.Expense{}).
		Select("category_id, COALESCE(SUM(amount), 0) as total").
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("统计当月消费失败: %w", err)
	}
	for _, r := range rows {
		monthly[r.CategoryID] = r.Total
	}

	balances := make([]CategoryBalance, 0, len(categories))
	for i := range categories {
		cat := &categories[i]
		balances = append(balances, CalcBalance(cat, lifetime[cat.ID], monthly[cat.ID]))
	}
	return balances, nil
}
