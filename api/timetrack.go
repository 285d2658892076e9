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
)

// TimeHandler 时间记录处理器
type TimeHandler struct{}

// NewTimeHandler 创建时间记录处理器
func NewTimeHandler() *TimeHandler {
	return &TimeHandler{}
}

// TimeCategoryRequest 创建/更新时间类别请求
type TimeCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100" example:"Reading"`
	Description string `json:"description" binding:"omitempty,max=500" example:"读书时间"`
}

// TimeEntryRequest 创建/更新时间记录请求
type TimeEntryRequest struct {
	CategoryID uint   `json:"category_id" binding:"required" example:"1"`
	StartTime  string `json:"start_time" binding:"required" example:"2026-03-15 09:00:00"`
	EndTime    string `json:"end_time" binding:"required" example:"2026-03-15 11:30:00"`
	Notes      string `json:"notes" binding:"omitempty,max=500" example:"需求评审"`
}

// TimeEntryView 时间记录列表项
type TimeEntryView struct {
	models.TimeEntry
	CategoryName string `json:"category_name"`
}

// TimeSummaryItem 按类别聚合的时长
type TimeSummaryItem struct {
	CategoryName string  `json:"category_name"`
	Minutes      int     `json:"minutes"`
	Entries      int64   `json:"entries"`
	Percentage   float64 `json:"percentage"`
}

// fillTimePercentages 按总时长补齐各类别占比
func fillTimePercentages(items []TimeSummaryItem) {
	var total float64
	for _, item := range items {
		total += float64(item.Minutes)
	}
	for i := range items {
		items[i].Percentage = service.Percentage(float64(items[i].Minutes), total)
	}
}

// ListCategories 获取时间类别列表
// @Summary 获取时间类别列表
// @Tags 时间记录
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.TimeCategory} "获取成功"
// @Router /api/v1/time/categories [get]
func (h *TimeHandler) ListCategories(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var categories []models.TimeCategory
	if err := database.DB.Where("user_id = ?", userID).
		Order("is_default DESC, name ASC").Find(&categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询时间类别失败"))
		return
	}

	Success(c, categories)
}

// CreateCategory 创建时间类别
// @Summary 创建时间类别
// @Tags 时间记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TimeCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.TimeCategory} "创建成功"
// @Failure 409 {object} Response "名称已存在"
// @Router /api/v1/time/categories [post]
func (h *TimeHandler) CreateCategory(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TimeCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		BadRequest(c, "类别名称不能为空")
		return
	}

	var count int64
	database.DB.Model(&models.TimeCategory{}).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name)).
		Count(&count)
	if count > 0 {
		Error(c, 409, "类别名称已存在")
		return
	}

	cat := models.TimeCategory{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}
	if err := database.DB.Create(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建时间类别失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", cat)
}

// DeleteCategory 删除时间类别
// @Summary 删除时间类别
// @Description 默认类别与仍有时间记录的类别不允许删除
// @Tags 时间记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别 ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "类别不存在"
// @Failure 409 {object} Response "类别不允许删除"
// @Router /api/v1/time/categories/{id} [delete]
func (h *TimeHandler) DeleteCategory(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的类别 ID")
		return
	}

	var cat models.TimeCategory
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&cat).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}
	if cat.IsDefault {
		Error(c, 409, "默认类别不允许删除")
		return
	}

	var count int64
	database.DB.Model(&models.TimeEntry{}).
		Where("user_id = ? AND category_id = ?", userID, cat.ID).
		Count(&count)
	if count > 0 {
		Error(c, 409, "类别下仍有记录，无法删除")
		return
	}

	if err := database.DB.Delete(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除时间类别失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// parseTimeEntry 解析并校验起止时间
func parseTimeEntry(req *TimeEntryRequest) (start, end time.Time, ok bool) {
	var err error
	start, err = time.ParseInLocation("2006-01-02 15:04:05", req.StartTime, time.Local)
	if err != nil {
		return
	}
	end, err = time.ParseInLocation("2006-01-02 15:04:05", req.EndTime, time.Local)
	if err != nil {
		return
	}
	ok = true
	return
}

// CreateEntry 创建时间记录
// @Summary 创建时间记录
// @Description 记录一段起止时间，结束时间必须晚于开始时间，时长由服务端算出
// @Tags 时间记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TimeEntryRequest true "时间记录"
// @Success 200 {object} Response{data=models.TimeEntry} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/time/entries [post]
func (h *TimeHandler) CreateEntry(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	start, end, ok := parseTimeEntry(&req)
	if !ok {
		BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}
	if !end.After(start) {
		BadRequest(c, "结束时间必须晚于开始时间")
		return
	}

	var cat models.TimeCategory
	if err := database.DB.Where("id = ? AND user_id = ?", req.CategoryID, userID).First(&cat).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	entry := models.TimeEntry{
		UserID:          userID,
		CategoryID:      cat.ID,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: int(end.Sub(start).Minutes()),
		Notes:           strings.TrimSpace(req.Notes),
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建时间记录失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", entry)
}

// ListEntries 获取时间记录列表
// @Summary 获取时间记录列表
// @Description 默认返回当天的记录，可用 date 参数指定日期
// @Tags 时间记录
// @Produce json
// @Security BearerAuth
// @Param date query string false "日期 (2026-03-15)，缺省为当天"
// @Param category_id query int false "类别筛选"
// @Success 200 {object} Response{data=[]TimeEntryView} "获取成功"
// @Router /api/v1/time/entries [get]
func (h *TimeHandler) ListEntries(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	day := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		var err error
		day, err = time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2006-01-02")
			return
		}
	}
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := database.DB.Model(&models.TimeEntry{}).
		Select("time_entries.*, time_categories.name as category_name").
		Joins("JOIN time_categories ON time_categories.id = time_entries.category_id").
		Where("time_entries.user_id = ? AND time_entries.start_time >= ? AND time_entries.start_time < ?", userID, dayStart, dayEnd)
	if idStr := c.Query("category_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			BadRequest(c, "无效的类别 ID")
			return
		}
		query = query.Where("time_entries.category_id = ?", id)
	}

	var entries []TimeEntryView
	if err := query.Order("time_entries.start_time DESC").Scan(&entries).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询时间记录失败"))
		return
	}

	Success(c, entries)
}

// Summary 时间分布汇总
// @Summary 时间分布汇总
// @Description 按类别汇总 [start_date, end_date] 内的总时长，缺省为当天
// @Tags 时间记录
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "开始日期 (2026-03-01)"
// @Param end_date query string false "结束日期 (2026-03-31)"
// @Success 200 {object} Response{data=[]TimeSummaryItem} "获取成功"
// @Router /api/v1/time/summary [get]
func (h *TimeHandler) Summary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, 1)

	if s := c.Query("start_date"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
			return
		}
		start = t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
			return
		}
		end = t.AddDate(0, 0, 1)
	}

	var items []TimeSummaryItem
	if err := database.DB.Model(&models.TimeEntry{}).
		Select("time_categories.name as category_name, COALESCE(SUM(time_entries.duration_minutes), 0) as minutes, COUNT(*) as entries").
		Joins("JOIN time_categories ON time_categories.id = time_entries.category_id").
		Where("time_entries.user_id = ? AND time_entries.start_time >= ? AND time_entries.start_time < ?", userID, start, end).
		Group("time_categories.name").
		Order("minutes DESC").
		Scan(&items).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计时间分布失败"))
		return
	}
	fillTimePercentages(items)

	Success(c, items)
}

// GetEntry 获取时间记录详情
// @Summary 获取时间记录详情
// @Tags 时间记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录 ID"
// @Success 200 {object} Response{data=models.TimeEntry} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/time/entries/{id} [get]
func (h *TimeHandler) GetEntry(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的记录 ID")
		return
	}

	var entry models.TimeEntry
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, entry)
}

// UpdateEntry 更新时间记录
// @Summary 更新时间记录
// @Description 修改起止时间、类别或备注，时长重新算出
// @Tags 时间记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录 ID"
// @Param request body TimeEntryRequest true "时间记录"
// @Success 200 {object} Response{data=models.TimeEntry} "更新成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/time/entries/{id} [put]
func (h *TimeHandler) UpdateEntry(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的记录 ID")
		return
	}

	var entry models.TimeEntry
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req TimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	start, end, ok := parseTimeEntry(&req)
	if !ok {
		BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}
	if !end.After(start) {
		BadRequest(c, "结束时间必须晚于开始时间")
		return
	}

	var cat models.TimeCategory
	if err := database.DB.Where("id = ? AND user_id = ?", req.CategoryID, userID).First(&cat).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	updates := map[string]interface{}{
		"category_id":      cat.ID,
		"start_time":       start,
		"end_time":         end,
		"duration_minutes": int(end.Sub(start).Minutes()),
		"notes":            strings.TrimSpace(req.Notes),
	}
	if err := database.DB.Model(&entry).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新时间记录失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", entry)
}

// TimeDashboard 时间仪表盘
type TimeDashboard struct {
	TodayMinutes int               `json:"today_minutes"`
	WeekMinutes  int               `json:"week_minutes"`
	MonthMinutes int               `json:"month_minutes"`
	Breakdown    []TimeSummaryItem `json:"breakdown"` // 当天按类别分布
}

// Dashboard 时间仪表盘
// @Summary 时间仪表盘
// @Description 今日/本周/本月总时长与当天按类别的时长分布；周从周日开始
// @Tags 时间记录
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=TimeDashboard} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/time/dashboard [get]
func (h *TimeHandler) Dashboard(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)

	sumMinutes := func(start, end time.Time) (int, error) {
		var minutes int
		err := database.DB.Model(&models.TimeEntry{}).
			Select("COALESCE(SUM(duration_minutes), 0)").
			Where("user_id = ? AND start_time >= ? AND start_time < ?", userID, start, end).
			Scan(&minutes).Error
		return minutes, err
	}

	var dash TimeDashboard
	var err error
	if dash.TodayMinutes, err = sumMinutes(today, today.AddDate(0, 0, 1)); err != nil {
		InternalError(c, SafeErrorMessage(err, "统计时间分布失败"))
		return
	}
	if dash.WeekMinutes, err = sumMinutes(weekStart, weekStart.AddDate(0, 0, 7)); err != nil {
		InternalError(c, SafeErrorMessage(err, "统计时间分布失败"))
		return
	}
	if dash.MonthMinutes, err = sumMinutes(monthStart, monthStart.AddDate(0, 1, 0)); err != nil {
		InternalError(c, SafeErrorMessage(err, "统计时间分布失败"))
		return
	}

	if err := database.DB.Model(&models.TimeEntry{}).
		Select("time_categories.name as category_name, COALESCE(SUM(time_entries.duration_minutes), 0) as minutes, COUNT(*) as entries").
		Joins("JOIN time_categories ON time_categories.id = time_entries.category_id").
		Where("time_entries.user_id = ? AND time_entries.start_time >= ? AND time_entries.start_time < ?", userID, today, today.AddDate(0, 0, 1)).
		Group("time_categories.name").
		Order("minutes DESC").
		Scan(&dash.Breakdown).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计时间分布失败"))
		return
	}
	fillTimePercentages(dash.Breakdown)

	Success(c, dash)
}

// DeleteEntry 删除时间记录
// @Summary 删除时间记录
// @Tags 时间记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录 ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/time/entries/{id} [delete]
func (h *TimeHandler) DeleteEntry(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的记录 ID")
		return
	}

	var entry models.TimeEntry
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&entry).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除时间记录失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
