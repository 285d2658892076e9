package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"lifebook/models"

	"gorm.io/gorm"
)

// 类别名称：字母、数字、空格，与注册播种的默认类别保持同一字符集
var categoryNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

// ExpenseService 消费记账业务逻辑
type ExpenseService struct {
	db     *gorm.DB
	clock  Clock
	budget *BudgetService
}

// NewExpenseService 创建消费服务
func NewExpenseService(db *gorm.DB, clock Clock) *ExpenseService {
	if clock == nil {
		clock = SystemClock()
	}
	return &ExpenseService{db: db, clock: clock, budget: NewBudgetService(db, clock)}
}

// Budget 暴露底层预算引擎
func (s *ExpenseService) Budget() *BudgetService {
	return s.budget
}

// ExpenseInput 创建/更新消费记录的入参
type ExpenseInput struct {
	Amount     float64
	Date       time.Time
	Reason     string
	CategoryID uint
}

// liveCategory 查找当前用户的有效类别
func (s *ExpenseService) liveCategory(userID, categoryID uint) (*models.ExpenseCategory, error) {
	var cat models.ExpenseCategory
	err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询类别失败: %w", err)
	}
	return &cat, nil
}

// checkOneTimeBalance 一次性预算控额：生命周期累计消费加上本次金额不得超过预算额。
// 每月预算不做写入时拦截，超支用结余展示为 0 的方式呈现。
// excludeExpenseID > 0 时排除正在编辑的那条记录。
func (s *ExpenseService) checkOneTimeBalance(cat *models.ExpenseCategory, userID uint, amount float64, excludeExpenseID uint) error {
	if KindOfBudget(cat) != BudgetOneTime {
		return nil
	}

	query := s.db.Model(&models.Expense{}).
		Where("user_id = ? AND category_id = ?", userID, cat.ID)
	if excludeExpenseID > 0 {
		query = query.Where("id != ?", excludeExpenseID)
	}
	var spent float64
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&spent).Error; err != nil {
		return fmt.Errorf("统计消费总额失败: %w", err)
	}
	if spent+amount > cat.BudgetAmount {
		return ErrInsufficientBalance
	}
	return nil
}

// CreateExpense 创建消费记录
// 校验顺序：日期不得晚于当天 → 备注非空 → 类别必须有效且属于本人 → 一次性预算余额充足。
// 任一校验失败都发生在写库之前，类别状态不会被改动。
func (s *ExpenseService) CreateExpense(userID uint, in ExpenseInput) (*models.Expense, error) {
	day := dateOnly(in.Date)
	if day.After(Today(s.clock)) {
		return nil, ErrFutureDate
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	cat, err := s.liveCategory(userID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOneTimeBalance(cat, userID, in.Amount, 0); err != nil {
		return nil, err
	}

	expense := models.Expense{
		UserID:     userID,
		CategoryID: cat.ID,
		Amount:     in.Amount,
		Date:       day,
		Reason:     reason,
	}
	if err := s.db.Create(&expense).Error; err != nil {
		return nil, fmt.Errorf("创建消费记录失败: %w", err)
	}
	return &expense, nil
}

// GetExpense 按 ID 获取本人的消费记录
func (s *ExpenseService) GetExpense(userID, id uint) (*models.Expense, error) {
	var expense models.Expense
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&expense).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询消费记录失败: %w", err)
	}
	return &expense, nil
}

// UpdateExpense 更新消费记录，校验与创建一致
func (s *ExpenseService) UpdateExpense(userID, id uint, in ExpenseInput) (*models.Expense, error) {
	expense, err := s.GetExpense(userID, id)
	if err != nil {
		return nil, err
	}

	day := dateOnly(in.Date)
	if day.After(Today(s.clock)) {
		return nil, ErrFutureDate
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	cat, err := s.liveCategory(userID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOneTimeBalance(cat, userID, in.Amount, expense.ID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"amount":      in.Amount,
		"date":        day,
		"reason":      reason,
		"category_id": cat.ID,
	}
	if err := s.db.Model(expense).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新消费记录失败: %w", err)
	}
	return expense, nil
}

// DeleteExpense 软删除消费记录
func (s *ExpenseService) DeleteExpense(userID, id uint) error {
	expense, err := s.GetExpense(userID, id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(expense).Error; err != nil {
		return fmt.Errorf("删除消费记录失败: %w", err)
	}
	return nil
}

// ExpenseFilter 消费记录列表筛选
type ExpenseFilter struct {
	// Period: daily / weekly / monthly / yearly，为空时用 StartDate/EndDate
	Period     string
	CategoryID uint
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	PageSize   int
}

// ListExpenses 分页查询消费记录
func (s *ExpenseService) ListExpenses(userID uint, filter ExpenseFilter) ([]models.Expense, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	query := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)

	start, end := PeriodWindow(filter.Period, s.clock)
	if start != nil {
		query = query.Where("date >= ?", *start)
	} else if filter.StartDate != nil {
		query = query.Where("date >= ?", dateOnly(*filter.StartDate))
	}
	if end != nil {
		query = query.Where("date < ?", *end)
	} else if filter.EndDate != nil {
		// 包含结束日期当天
		query = query.Where("date < ?", dateOnly(*filter.EndDate).AddDate(0, 0, 1))
	}
	if filter.CategoryID > 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计消费记录失败: %w", err)
	}

	var expenses []models.Expense
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Order("date DESC, id DESC").Offset(offset).Limit(filter.PageSize).Find(&expenses).Error; err != nil {
		return nil, 0, fmt.Errorf("查询消费记录失败: %w", err)
	}
	return expenses, total, nil
}

// PeriodWindow 把周期口令换算成 [start, end) 日期窗口
// daily: 当天；weekly: 本周（周日起）；monthly: 当月；yearly: 当年。
// 未识别的口令返回 (nil, nil)，由调用方回退到自定义区间。
func PeriodWindow(period string, clock Clock) (*time.Time, *time.Time) {
	today := Today(clock)
	tomorrow := today.AddDate(0, 0, 1)

	switch strings.ToLower(period) {
	case "daily":
		return &today, &tomorrow
	case "weekly":
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return &start, &tomorrow
	case "monthly":
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return &start, &tomorrow
	case "yearly":
		start := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location())
		return &start, &tomorrow
	default:
		return nil, nil
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// -------------------- 类别管理 --------------------

// CategoryInput 创建/更新类别的入参
type CategoryInput struct {
	Name        string
	Description string
}

// normalizeCategoryName 规整并校验类别名称
func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 || !categoryNamePattern.MatchString(name) {
		return "", ErrInvalidName
	}
	return name, nil
}

// nameTaken 同一用户有效类别中是否已占用该名称（忽略大小写），excludeID 排除自身
func (s *ExpenseService) nameTaken(userID uint, name string, excludeID uint) (bool, error) {
	query := s.db.Model(&models.ExpenseCategory{}).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name))
	if excludeID > 0 {
		query = query.Where("id != ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询类别名称失败: %w", err)
	}
	return count > 0, nil
}

// CreateCategory 创建消费类别
func (s *ExpenseService) CreateCategory(userID uint, in CategoryInput) (*models.ExpenseCategory, error) {
	name, err := normalizeCategoryName(in.Name)
	if err != nil {
		return nil, err
	}
	taken, err := s.nameTaken(userID, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	cat := models.ExpenseCategory{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.db.Create(&cat).Error; err != nil {
		return nil, fmt.Errorf("创建类别失败: %w", err)
	}
	return &cat, nil
}

// UpdateCategory 重命名/修改类别
// 名称冲突时返回 ErrDuplicateName，类别保持原状
func (s *ExpenseService) UpdateCategory(userID, id uint, in CategoryInput) (*models.ExpenseCategory, error) {
	cat, err := s.liveCategory(userID, id)
	if err != nil {
		return nil, err
	}

	name, err := normalizeCategoryName(in.Name)
	if err != nil {
		return nil, err
	}
	taken, err := s.nameTaken(userID, name, cat.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	updates := map[string]interface{}{
		"name":        name,
		"description": strings.TrimSpace(in.Description),
	}
	if err := s.db.Model(cat).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新类别失败: %w", err)
	}
	return cat, nil
}

// SetCategoryBudget 设置类别预算
// monthlyFixedBudget > 0 表示改为每月固定预算，清空重置水位让下一次仪表盘读取时重新基准化
func (s *ExpenseService) SetCategoryBudget(userID, id uint, budgetAmount, monthlyFixedBudget float64) (*models.ExpenseCategory, error) {
	if budgetAmount < 0 || monthlyFixedBudget < 0 {
		return nil, ErrInvalidBudget
	}
	cat, err := s.liveCategory(userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"budget_amount":        budgetAmount,
		"monthly_fixed_budget": monthlyFixedBudget,
		"last_reset_year":      nil,
		"last_reset_month":     nil,
	}
	if err := s.db.Model(cat).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("设置预算失败: %w", err)
	}
	return cat, nil
}

// DeleteCategory 软删除类别
// 默认类别不允许删除；类别下仍有有效消费时也不允许删除，
// 避免软删类别把还在展示的消费记录悬空。
func (s *ExpenseService) DeleteCategory(userID, id uint) error {
	cat, err := s.liveCategory(userID, id)
	if err != nil {
		return err
	}
	if cat.IsDefault {
		return ErrDefaultCategory
	}

	var count int64
	if err := s.db.Model(&models.Expense{}).
		Where("user_id = ? AND category_id = ?", userID, cat.ID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("统计类别消费失败: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.db.Delete(cat).Error; err != nil {
		return fmt.Errorf("删除类别失败: %w", err)
	}
	return nil
}

// CategoryView 类别列表项，带消费笔数与结余
type CategoryView struct {
	models.ExpenseCategory
	ExpenseCount int64           `json:"expense_count"`
	Balance      CategoryBalance `json:"balance"`
}

// ListCategories 查询用户全部有效类别，附带当月口径的结余
func (s *ExpenseService) ListCategories(userID uint) ([]CategoryView, error) {
	now := s.clock.Now()
	balances, err := s.budget.CategoryBalances(userID, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]CategoryBalance, len(balances))
	for _, b := range balances {
		byID[b.CategoryID] = b
	}

	var categories []models.ExpenseCategory
	if err := s.db.Where("user_id = ?", userID).Order("is_default DESC, name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("查询类别失败: %w", err)
	}

	counts := make(map[uint]int64)
	var rows []struct {
		CategoryID uint
		Cnt        int64
	}
	if err := s.db.Model(&models.Expense{}).
		Select("category_id, COUNT(*) as cnt").
		Where("user_id = ?", userID).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("统计类别消费笔数失败: %w", err)
	}
	for _, r := range rows {
		counts[r.CategoryID] = r.Cnt
	}

	views := make([]CategoryView, 0, len(categories))
	for _, cat := range categories {
		views = append(views, CategoryView{
			ExpenseCategory: cat,
			ExpenseCount:    counts[cat.ID],
			Balance:         byID[cat.ID],
		})
	}
	return views, nil
}

// SeedDefaultCategories 为新用户播种三套默认类别（消费、时间、密码）
// 注册后调用一次；重复调用按名称去重，不会产生重复类别
func (s *ExpenseService) SeedDefaultCategories(userID uint) error {
	for _, cat := range models.DefaultExpenseCategories(userID) {
		var count int64
		s.db.Model(&models.ExpenseCategory{}).
			Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(cat.Name)).
			Count(&count)
		if count == 0 {
			if err := s.db.Create(&cat).Error; err != nil {
				return fmt.Errorf("播种默认消费类别失败: %w", err)
			}
		}
	}
	for _, cat := range models.DefaultTimeCategories(userID) {
		var count int64
		s.db.Model(&models.TimeCategory{}).
			Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(cat.Name)).
			Count(&count)
		if count == 0 {
			if err := s.db.Create(&cat).Error; err != nil {
				return fmt.Errorf("播种默认时间类别失败: %w", err)
			}
		}
	}
	for _, cat := range models.DefaultPasswordCategories(userID) {
		var count int64
		s.db.Model(&models.PasswordCategory{}).
			Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(cat.Name)).
			Count(&count)
		if count == 0 {
			if err := s.db.Create(&cat).Error; err != nil {
				return fmt.Errorf("播种默认密码类别失败: %w", err)
			}
		}
	}
	return nil
}
