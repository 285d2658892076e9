package service

import (
	"testing"
	"time"

	"lifebook/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fixedClock 测试用固定时钟
type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func clockAt(value string) Clock {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local)
	if err != nil {
		panic(err)
	}
	return fixedClock(t)
}

// newMockDB 创建基于 sqlmock 的 gorm 连接
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestKindOfBudget(t *testing.T) {
	assert.Equal(t, BudgetNone, KindOfBudget(&models.ExpenseCategory{}))
	assert.Equal(t, BudgetOneTime, KindOfBudget(&models.ExpenseCategory{BudgetAmount: 500}))
	assert.Equal(t, BudgetRecurring, KindOfBudget(&models.ExpenseCategory{MonthlyFixedBudget: 1000}))

	// 两个预算字段同时有值时，每月固定预算优先
	both := &models.ExpenseCategory{BudgetAmount: 500, MonthlyFixedBudget: 1000}
	assert.Equal(t, BudgetRecurring, KindOfBudget(both))
}

func TestCalcBalance_Recurring(t *testing.T) {
	cat := &models.ExpenseCategory{Name: "Business", MonthlyFixedBudget: 1000}
	cat.ID = 1

	// 当月已花 600 + 500，超支 100：展示余额截断为 0，超支额单独给出
	b := CalcBalance(cat, 9999, 1100)
	assert.Equal(t, BudgetRecurring, b.Kind)
	assert.Equal(t, 1000.0, b.Budget)
	assert.Equal(t, 1100.0, b.Spent)
	assert.Equal(t, 0.0, b.Remaining)
	assert.Equal(t, 100.0, b.Deficit)

	// 未超支时正常扣减，生命周期总额不参与每月口径
	b = CalcBalance(cat, 9999, 600)
	assert.Equal(t, 400.0, b.Remaining)
	assert.Equal(t, 0.0, b.Deficit)
}

func TestCalcBalance_OneTime(t *testing.T) {
	cat := &models.ExpenseCategory{Name: "Personal", BudgetAmount: 500}
	cat.ID = 2

	b := CalcBalance(cat, 300, 50)
	assert.Equal(t, BudgetOneTime, b.Kind)
	assert.Equal(t, 500.0, b.Budget)
	assert.Equal(t, 300.0, b.Spent)
	assert.Equal(t, 200.0, b.Remaining)
}

func TestCalcBalance_NoBudget(t *testing.T) {
	cat := &models.ExpenseCategory{Name: "Personal Business"}
	cat.ID = 3

	b := CalcBalance(cat, 300, 50)
	assert.Equal(t, BudgetNone, b.Kind)
	assert.Equal(t, 0.0, b.Budget)
	assert.Equal(t, 0.0, b.Spent)
	assert.Equal(t, 0.0, b.Remaining)
	assert.Equal(t, 0.0, b.Deficit)
}

func TestParseMonthToken(t *testing.T) {
	year, month, err := ParseMonthToken("2026-03")
	require.NoError(t, err)
	assert.Equal(t, 2026, year)
	assert.Equal(t, time.March, month)

	_, _, err = ParseMonthToken("2026/03")
	assert.Error(t, err)

	_, _, err = ParseMonthToken("March 2026")
	assert.Error(t, err)
}

func TestMonthWindow(t *testing.T) {
	start, end := MonthWindow(2026, time.January, time.Local)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local), end)

	// 跨年
	start, end = MonthWindow(2025, time.December, time.Local)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local), end)
}

func TestMonthList(t *testing.T) {
	// 上线月为 2025-12，当前 2026-03，倒序四个月
	months := MonthList(clockAt("2026-03-15 10:00:00"))
	assert.Equal(t, []string{"2026-03", "2026-02", "2026-01", "2025-12"}, months)

	// 刚好在上线月
	months = MonthList(clockAt("2025-12-01 00:00:00"))
	assert.Equal(t, []string{"2025-12"}, months)

	// 上线月之前没有可选月份
	months = MonthList(clockAt("2025-11-30 23:59:59"))
	assert.Empty(t, months)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(100, 0))
	assert.Equal(t, 50.0, Percentage(50, 100))
	// 保留 1 位小数
	assert.Equal(t, 33.3, Percentage(1, 3))
	assert.Equal(t, 66.7, Percentage(2, 3))
}

func TestPeriodWindow_WeeklyStartsSunday(t *testing.T) {
	// 2026-03-18 是周三，本周从 2026-03-15（周日）起算
	start, end := PeriodWindow("weekly", clockAt("2026-03-18 14:30:00"))
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local), *start)
	assert.Equal(t, time.Date(2026, 3, 19, 0, 0, 0, 0, time.Local), *end)

	// 周日当天即本周第一天
	start, _ = PeriodWindow("weekly", clockAt("2026-03-15 08:00:00"))
	require.NotNil(t, start)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local), *start)
}

func TestPeriodWindow_Unknown(t *testing.T) {
	start, end := PeriodWindow("quarterly", clockAt("2026-03-18 14:30:00"))
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestResetMonthlyBudgets(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBudgetService(db, clockAt("2026-03-05 09:00:00"))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `expense_categories` SET").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, svc.ResetMonthlyBudgets(1))

	// 同月再跑一次：语句照发，但水位已对齐，命中 0 行
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `expense_categories` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, svc.ResetMonthlyBudgets(1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryBalances(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBudgetService(db, clockAt("2026-03-05 09:00:00"))

	mock.ExpectQuery("SELECT \\* FROM `expense_categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "budget_amount", "monthly_fixed_budget", "is_default"}).
			AddRow(1, 1, "Business", 1000, 1000, true).
			AddRow(2, 1, "Personal", 500, 0, true).
			AddRow(3, 1, "Personal Business", 0, 0, true))

	// 生命周期分组求和
	mock.ExpectQuery("SELECT category_id, COALESCE\\(SUM\\(amount\\), 0\\) as total FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"category_id", "total"}).
			AddRow(1, 2400).
			AddRow(2, 300))

	// 当月分组求和
	mock.ExpectQuery("SELECT category_id, COALESCE\\(SUM\\(amount\\), 0\\) as total FROM `expenses`").
		WillReturnRows(sqlmock.NewRows([]string{"category_id", "total"}).
			AddRow(1, 1100))

	balances, err := svc.CategoryBalances(1, 2026, time.March)
	require.NoError(t, err)
	require.Len(t, balances, 3)

	// Business：每月预算口径，只看当月
	assert.Equal(t, "Business", balances[0].CategoryName)
	assert.Equal(t, 0.0, balances[0].Remaining)
	assert.Equal(t, 100.0, balances[0].Deficit)

	// Personal：一次性口径，看生命周期
	assert.Equal(t, "Personal", balances[1].CategoryName)
	assert.Equal(t, 200.0, balances[1].Remaining)

	// 无预算类别全零
	assert.Equal(t, BudgetNone, balances[2].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}
