package api

import (
	"strconv"
	"strings"
	"time"

	"lifebook/database"
	"lifebook/middleware"
	"lifebook/models"
	"lifebook/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct{}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler() *ExpenseHandler {
	return &ExpenseHandler{}
}

func expenseService() *service.ExpenseService {
	return service.NewExpenseService(database.DB, nil)
}

// CreateExpenseRequest 创建消费记录请求
type CreateExpenseRequest struct {
	Amount     float64 `json:"amount" binding:"required,gt=0" example:"99.99"`
	CategoryID uint    `json:"category_id" binding:"required" example:"1"`
	Date       string  `json:"date" binding:"required" example:"2026-03-15"`
	Reason     string  `json:"reason" binding:"required,max=255" example:"午餐"`
}

// ExpenseListRequest 消费记录列表请求
type ExpenseListRequest struct {
	Page       int    `form:"page" example:"1"`
	PageSize   int    `form:"page_size" example:"10"`
	Period     string `form:"period" example:"weekly"` // daily/weekly/monthly/yearly
	CategoryID uint   `form:"category_id" example:"1"`
	StartDate  string `form:"start_date" example:"2026-01-01"`
	EndDate    string `form:"end_date" example:"2026-12-31"`
}

// parseExpenseInput 把请求体换算成业务入参
func parseExpenseInput(req *CreateExpenseRequest) (service.ExpenseInput, bool) {
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return service.ExpenseInput{}, false
	}
	return service.ExpenseInput{
		Amount:     req.Amount,
		Date:       date,
		Reason:     req.Reason,
		CategoryID: req.CategoryID,
	}, true
}

// Create 创建消费记录
// @Summary 创建消费记录
// @Description 创建一条新的消费记录，日期不得晚于当天，备注必填；一次性预算余额不足时拒绝
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	in, ok := parseExpenseInput(&req)
	if !ok {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	expense, err := expenseService().CreateExpense(userID, in)
	if err != nil {
		ServiceError(c, err, "创建消费记录失败")
		return
	}

	SuccessWithMessage(c, "创建成功", expense)
}

// List 获取消费记录列表
// @Summary 获取消费记录列表
// @Description 获取当前用户的消费记录列表，支持分页、周期与类别筛选
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param period query string false "周期 daily/weekly/monthly/yearly"
// @Param category_id query int false "类别筛选"
// @Param start_date query string false "开始日期 (2026-01-01)"
// @Param end_date query string false "结束日期 (2026-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Expense}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	filter := service.ExpenseFilter{
		Period:     req.Period,
		CategoryID: req.CategoryID,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if req.StartDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.StartDate, time.Local)
		if err != nil {
			BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
			return
		}
		filter.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.EndDate, time.Local)
		if err != nil {
			BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
			return
		}
		filter.EndDate = &t
	}

	expenses, total, err := expenseService().ListExpenses(userID, filter)
	if err != nil {
		ServiceError(c, err, "查询消费记录失败")
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	Success(c, PageResponse{
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		List:     expenses,
	})
}

// Get 获取单条消费记录
// @Summary 获取消费记录详情
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录 ID"
// @Success 200 {object} Response{data=models.Expense} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的记录 ID")
		return
	}

	expense, err := expenseService().GetExpense(userID, uint(id))
	if err != nil {
		ServiceError(c, err, "查询消费记录失败")
		return
	}

	Success(c, expense)
}

// Update 更新消费记录
// @Summary 更新消费记录
// @Description 更新消费记录，校验规则与创建一致
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录 ID"
// @Param request body CreateExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的记录 ID")
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	in, ok := parseExpenseInput(&req)
	if !ok {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	expense, err := expenseService().UpdateExpense(userID, uint(id), in)
	if err != nil {
		ServiceError(c, err, "更新消费记录失败")
		return
	}

	SuccessWithMessage(c, "更新成功", expense)
}

// DetailedStatistics 详细消费统计（支持月/年/自定义时间范围和多类别筛选）
// @Summary 获取详细消费统计
// @Description 按类别汇总指定时间范围内的消费，适合绘制饼图和柱状图。
// @Description
// @Description 时间范围类型说明：
// @Description - month: 按月统计，需要传入 year_month 参数（格式：2026-01）
// @Description - year: 按年统计，需要传入 year 参数（格式：2026）
// @Description - custom: 自定义时间范围，需要传入 start_date 和 end_date 参数（格式：2026-01-01）
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param range_type query string true "时间范围类型" Enums(month,year,custom)
// @Param year_month query string false "年月（range_type=month 时必填，格式：2026-01）"
// @Param year query string false "年份（range_type=year 时必填，格式：2026）"
// @Param start_date query string false "开始日期（range_type=custom 时必填）"
// @Param end_date query string false "结束日期（range_type=custom 时必填）"
// @Param category_ids query string false "类别 ID 筛选，多个用逗号分隔（如：1,3）"
// @Success 200 {object} Response "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/detailed-statistics [get]
func (h *ExpenseHandler) DetailedStatistics(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	rangeType := c.Query("range_type")
	if rangeType == "" {
		BadRequest(c, "range_type参数必填，可选值：month、year、custom")
		return
	}

	var start, end time.Time
	switch rangeType {
	case "month":
		yearMonth := c.Query("year_month")
		if yearMonth == "" {
			BadRequest(c, "range_type=month时，year_month参数必填（格式：2026-01）")
			return
		}
		t, err := time.ParseInLocation("2006-01", yearMonth, time.Local)
		if err != nil {
			BadRequest(c, "year_month格式错误，应为：2026-01")
			return
		}
		start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
		end = start.AddDate(0, 1, 0)

	case "year":
		yearStr := c.Query("year")
		if yearStr == "" {
			BadRequest(c, "range_type=year时，year参数必填（格式：2026）")
			return
		}
		year, err := strconv.Atoi(yearStr)
		if err != nil || year < 2000 || year > 2100 {
			BadRequest(c, "year格式错误，应为4位数字（如：2026）")
			return
		}
		start = time.Date(year, 1, 1, 0, 0, 0, 0, time.Local)
		end = start.AddDate(1, 0, 0)

	case "custom":
		startStr := c.Query("start_date")
		endStr := c.Query("end_date")
		if startStr == "" || endStr == "" {
			BadRequest(c, "range_type=custom时，start_date和end_date参数必填（格式：2026-01-01）")
			return
		}
		var err error
		start, err = time.ParseInLocation("2006-01-02", startStr, time.Local)
		if err != nil {
			BadRequest(c, "start_date格式错误，应为：2026-01-01")
			return
		}
		end, err = time.ParseInLocation("2006-01-02", endStr, time.Local)
		if err != nil {
			BadRequest(c, "end_date格式错误，应为：2026-12-31")
			return
		}
		// 包含结束日期当天
		end = end.AddDate(0, 0, 1)

	default:
		BadRequest(c, "range_type参数值错误，可选值：month、year、custom")
		return
	}

	var categoryIDs []uint
	if raw := c.Query("category_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
			if err != nil {
				BadRequest(c, "category_ids格式错误，应为逗号分隔的数字")
				return
			}
			categoryIDs = append(categoryIDs, uint(id))
		}
	}

	base := database.DB.Model(&models.Expense{}).
		Where("expenses.user_id = ? AND expenses.date >= ? AND expenses.date < ?", userID, start, end)
	if len(categoryIDs) > 0 {
		base = base.Where("expenses.category_id IN ?", categoryIDs)
	}

	var summary struct {
		Total float64
		Cnt   int64
	}
	if err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(amount), 0) as total, COUNT(*) as cnt").
		Scan(&summary).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计消费记录失败"))
		return
	}

	type categoryStat struct {
		CategoryID   uint    `json:"category_id"`
		CategoryName string  `json:"category_name"`
		Total        float64 `json:"total"`
		Count        int64   `json:"count"`
		Percentage   float64 `json:"percentage"`
	}
	var stats []categoryStat
	if err := base.Session(&gorm.Session{}).
		Select("expenses.category_id, expense_categories.name as category_name, SUM(expenses.amount) as total, COUNT(*) as count").
		Joins("JOIN expense_categories ON expense_categories.id = expenses.category_id").
		Group("expenses.category_id, expense_categories.name").
		Order("total DESC").
		Scan(&stats).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计消费记录失败"))
		return
	}
	for i := range stats {
		stats[i].Percentage = service.Percentage(stats[i].Total, summary.Total)
	}

	Success(c, gin.H{
		"range_type":     rangeType,
		"start_date":     start.Format("2006-01-02"),
		"end_date":       end.AddDate(0, 0, -1).Format("2006-01-02"),
		"total_amount":   summary.Total,
		"total_count":    summary.Cnt,
		"category_stats": stats,
	})
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Description 软删除消费记录，删除后不再计入任何统计与结余
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录 ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的记录 ID")
		return
	}

	if err := expenseService().DeleteExpense(userID, uint(id)); err != nil {
		ServiceError(c, err, "删除消费记录失败")
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
