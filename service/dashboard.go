package service

import (
	"fmt"
	"log"
	"math"
	"time"

	"lifebook/models"

	"gorm.io/gorm"
)

// WindowStat 单个时间窗口的金额与笔数
type WindowStat struct {
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// CategorySummary 按类别分组的窗口汇总，用于饼图
type CategorySummary struct {
	CategoryName string  `json:"category_name"`
	Total        float64 `json:"total"`
	Count        int64   `json:"count"`
	Percentage   float64 `json:"percentage"` // 占窗口总额百分比，保留 1 位小数
}

// RecentExpense 最近消费列表项
type RecentExpense struct {
	ID           uint      `json:"id"`
	Amount       float64   `json:"amount"`
	Date         time.Time `json:"date"`
	Reason       string    `json:"reason"`
	CategoryName string    `json:"category_name"`
	CategoryID   uint      `json:"category_id"`
}

// ExpenseDashboard 消费仪表盘视图
// 四个滚动窗口、类别分布、预算结余卡片和可选月份列表一次算齐，
// 同一次请求内各区块基于同一窗口，不会新旧混用。
type ExpenseDashboard struct {
	Today   WindowStat `json:"today"`
	Weekly  WindowStat `json:"weekly"`
	Monthly WindowStat `json:"monthly"`
	Yearly  WindowStat `json:"yearly"`

	BreakdownPeriod string            `json:"breakdown_period"`
	SelectedMonth   string            `json:"selected_month,omitempty"`
	Breakdown       []CategorySummary `json:"breakdown"`

	Balances       []CategoryBalance `json:"balances"`
	RecentExpenses []RecentExpense   `json:"recent_expenses"`
	Months         []string          `json:"months"`
}

// DashboardService 仪表盘聚合器
type DashboardService struct {
	db     *gorm.DB
	clock  Clock
	budget *BudgetService
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(db *gorm.DB, clock Clock) *DashboardService {
	if clock == nil {
		clock = SystemClock()
	}
	return &DashboardService{db: db, clock: clock, budget: NewBudgetService(db, clock)}
}

// windowStat 统计 [start, end) 内的金额与笔数，start/end 为 nil 时不设边界
func (s *DashboardService) windowStat(userID uint, start, end *time.Time) (WindowStat, error) {
	query := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	if start != nil {
		query = query.Where("date >= ?", *start)
	}
	if end != nil {
		query = query.Where("date < ?", *end)
	}

	var row struct {
		Total float64
		Cnt   int64
	}
	if err := query.Select("COALESCE(SUM(amount), 0) as total, COUNT(*) as cnt").Scan(&row).Error; err != nil {
		return WindowStat{}, fmt.Errorf("统计窗口失败: %w", err)
	}
	return WindowStat{Total: row.Total, Count: row.Cnt}, nil
}

// categoryBreakdown 按类别分组统计 [start, end) 内的消费分布
func (s *DashboardService) categoryBreakdown(userID uint, start, end *time.Time) ([]CategorySummary, error) {
	query := s.db.Model(&models.Expense{}).
		Select("expense_categories.name as category_name, COALESCE(SUM(expenses.amount), 0) as total, COUNT(*) as count").
		Joins("JOIN expense_categories ON expense_categories.id = expenses.category_id").
		Where("expenses.user_id = ?", userID)
	if start != nil {
		query = query.Where("expenses.date >= ?", *start)
	}
	if end != nil {
		query = query.Where("expenses.date < ?", *end)
	}

	var summaries []CategorySummary
	if err := query.Group("expense_categories.name").Order("total DESC").Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("统计类别分布失败: %w", err)
	}

	var windowTotal float64
	for _, c := range summaries {
		windowTotal += c.Total
	}
	for i := range summaries {
		summaries[i].Percentage = Percentage(summaries[i].Total, windowTotal)
	}
	return summaries, nil
}

// Percentage 计算占比，保留 1 位小数，总额为 0 时返回 0
func Percentage(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(part/total*1000) / 10
}

// GetExpenseDashboard 产出消费仪表盘
// monthToken（YYYY-MM）优先于 breakdownPeriod；两者都缺省时按当月分布。
// 每月预算重置必须先于任何结余读取执行；重置失败只记日志，
// 仪表盘用旧水位继续渲染（可用性优先于一致性，个人记账场景可以接受）。
func (s *DashboardService) GetExpenseDashboard(userID uint, breakdownPeriod, monthToken string) (*ExpenseDashboard, error) {
	if err := s.budget.ResetMonthlyBudgets(userID); err != nil {
		log.Printf("用户 %d 每月预算重置失败（继续渲染旧值）: %v", userID, err)
	}

	now := s.clock.Now()
	today := Today(s.clock)
	tomorrow := today.AddDate(0, 0, 1)
	weekStart := today.AddDate(0, 0, -int(today.Weekday())) // 周日起
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	dash := &ExpenseDashboard{Months: MonthList(s.clock)}

	var err error
	if dash.Today, err = s.windowStat(userID, &today, &tomorrow); err != nil {
		return nil, err
	}
	if dash.Weekly, err = s.windowStat(userID, &weekStart, &tomorrow); err != nil {
		return nil, err
	}
	if dash.Monthly, err = s.windowStat(userID, &monthStart, &tomorrow); err != nil {
		return nil, err
	}
	if dash.Yearly, err = s.windowStat(userID, &yearStart, &tomorrow); err != nil {
		return nil, err
	}

	// 分布窗口：指定月份 > 周期口令 > 默认当月
	balanceYear, balanceMonth := now.Year(), now.Month()
	var bStart, bEnd *time.Time
	switch {
	case monthToken != "":
		y, m, err := ParseMonthToken(monthToken)
		if err != nil {
			return nil, err
		}
		start, end := MonthWindow(y, m, time.Local)
		bStart, bEnd = &start, &end
		dash.SelectedMonth = monthToken
		dash.BreakdownPeriod = "month"
		balanceYear, balanceMonth = y, m
	case breakdownPeriod == "all":
		dash.BreakdownPeriod = "all"
	default:
		start, end := PeriodWindow(breakdownPeriod, s.clock)
		if start == nil {
			// 未识别的口令回退到当月
			start, end = &monthStart, &tomorrow
			breakdownPeriod = "monthly"
		}
		bStart, bEnd = start, end
		dash.BreakdownPeriod = breakdownPeriod
	}

	if dash.Breakdown, err = s.categoryBreakdown(userID, bStart, bEnd); err != nil {
		return nil, err
	}

	if dash.Balances, err = s.budget.CategoryBalances(userID, balanceYear, balanceMonth); err != nil {
		return nil, err
	}

	// 最近 10 条消费
	var recent []RecentExpense
	if err := s.db.Model(&models.Expense{}).
		Select("expenses.id, expenses.amount, expenses.date, expenses.reason, expenses.category_id, expense_categories.name as category_name").
		Joins("JOIN expense_categories ON expense_categories.id = expenses.category_id").
		Where("expenses.user_id = ?", userID).
		Order("expenses.date DESC, expenses.id DESC").
		Limit(10).
		Scan(&recent).Error; err != nil {
		return nil, fmt.Errorf("查询最近消费失败: %w", err)
	}
	dash.RecentExpenses = recent

	return dash, nil
}
