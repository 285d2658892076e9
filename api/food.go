package api

import (
	"math"
	"strconv"
	"strings"
	"time"

	"lifebook/database"
	"lifebook/middleware"
	"lifebook/models"

	"github.com/gin-gonic/gin"
)

// FoodHandler 饮食记录处理器
type FoodHandler struct{}

// NewFoodHandler 创建饮食记录处理器
func NewFoodHandler() *FoodHandler {
	return &FoodHandler{}
}

// FoodEntryRequest 创建/更新饮食记录请求
type FoodEntryRequest struct {
	Name        string  `json:"name" binding:"required,max=200" example:"鸡胸肉沙拉"`
	MealType    string  `json:"meal_type" binding:"required" example:"午餐"`
	Date        string  `json:"date" binding:"required" example:"2026-03-15"`
	ServingSize string  `json:"serving_size" binding:"omitempty,max=100" example:"一份 300g"`
	Calories    int     `json:"calories" binding:"omitempty,gte=0" example:"350"`
	Protein     float64 `json:"protein" binding:"omitempty,gte=0" example:"32.5"`
	Carbs       float64 `json:"carbs" binding:"omitempty,gte=0" example:"18"`
	Fats        float64 `json:"fats" binding:"omitempty,gte=0" example:"12.4"`
	Notes       string  `json:"notes" binding:"omitempty,max=500"`
}

// DailyNutrition 单日营养汇总
type DailyNutrition struct {
	Date     string             `json:"date"`
	Calories int                `json:"calories"`
	Protein  float64            `json:"protein"`
	Carbs    float64            `json:"carbs"`
	Fats     float64            `json:"fats"`
	Meals    []models.FoodEntry `json:"meals"`
}

// foodDateInFuture 饮食日期不得晚于当天
func foodDateInFuture(date time.Time) bool {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	return date.After(today)
}

// Create 创建饮食记录
// @Summary 创建饮食记录
// @Description 记录一餐的食物与营养成分，餐次取值：早餐/午餐/晚餐/加餐；日期不得晚于当天
// @Tags 饮食记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FoodEntryRequest true "饮食记录"
// @Success 200 {object} Response{data=models.FoodEntry} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/food [post]
func (h *FoodHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req FoodEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if !models.ValidMealType(req.MealType) {
		BadRequest(c, "无效的餐次，应为：早餐/午餐/晚餐/加餐")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}
	if foodDateInFuture(date) {
		BadRequest(c, "日期不能晚于今天")
		return
	}

	entry := models.FoodEntry{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		MealType:    req.MealType,
		Date:        date,
		ServingSize: strings.TrimSpace(req.ServingSize),
		Calories:    req.Calories,
		Protein:     req.Protein,
		Carbs:       req.Carbs,
		Fats:        req.Fats,
		Notes:       strings.TrimSpace(req.Notes),
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建饮食记录失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", entry)
}

// Daily 单日饮食与营养汇总
// @Summary 单日饮食汇总
// @Description 指定日期的全部饮食记录与热量、三大营养素合计，缺省为当天
// @Tags 饮食记录
// @Produce json
// @Security BearerAuth
// @Param date query string false "日期 (2026-03-15)"
// @Success 200 {object} Response{data=DailyNutrition} "获取成功"
// @Router /api/v1/food/daily [get]
func (h *FoodHandler) Daily(c *gin.Context) {
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

	var meals []models.FoodEntry
	if err := database.DB.
		Where("user_id = ? AND date >= ? AND date < ?", userID, dayStart, dayEnd).
		Order("id ASC").
		Find(&meals).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询饮食记录失败"))
		return
	}

	summary := DailyNutrition{
		Date:  dayStart.Format("2006-01-02"),
		Meals: meals,
	}
	for _, m := range meals {
		summary.Calories += m.Calories
		summary.Protein += m.Protein
		summary.Carbs += m.Carbs
		summary.Fats += m.Fats
	}

	Success(c, summary)
}

// List 获取饮食记录列表
// @Summary 获取饮食记录列表
// @Description 支持按餐次与周期筛选，周期取值 daily/weekly/monthly，缺省返回当月
// @Tags 饮食记录
// @Produce json
// @Security BearerAuth
// @Param meal_type query string false "餐次筛选 早餐/午餐/晚餐/加餐"
// @Param period query string false "周期 daily/weekly/monthly"
// @Param start_date query string false "开始日期 (2026-03-01)"
// @Param end_date query string false "结束日期 (2026-03-31)"
// @Success 200 {object} Response{data=[]models.FoodEntry} "获取成功"
// @Router /api/v1/food [get]
func (h *FoodHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	switch c.Query("period") {
	case "", "monthly":
	case "daily":
		start = today
		end = today.AddDate(0, 0, 1)
	case "weekly":
		start = today.AddDate(0, 0, -int(today.Weekday()))
		end = start.AddDate(0, 0, 7)
	default:
		BadRequest(c, "无效的周期，可选值：daily、weekly、monthly")
		return
	}

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

	query := database.DB.
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end)
	if mealType := c.Query("meal_type"); mealType != "" {
		if !models.ValidMealType(mealType) {
			BadRequest(c, "无效的餐次，应为：早餐/午餐/晚餐/加餐")
			return
		}
		query = query.Where("meal_type = ?", mealType)
	}

	var entries []models.FoodEntry
	if err := query.Order("date DESC, id DESC").Find(&entries).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询饮食记录失败"))
		return
	}

	Success(c, entries)
}

// Get 获取饮食记录详情
// @Summary 获取饮食记录详情
// @Tags 饮食记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录 ID"
// @Success 200 {object} Response{data=models.FoodEntry} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/food/{id} [get]
func (h *FoodHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的记录 ID")
		return
	}

	var entry models.FoodEntry
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, entry)
}

// NutritionWindow 窗口营养汇总
type NutritionWindow struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Entries  int64   `json:"entries"`
}

// MealTypeStat 按餐次的热量分布
type MealTypeStat struct {
	MealType string `json:"meal_type"`
	Calories int    `json:"calories"`
	Entries  int64  `json:"entries"`
}

// FoodDashboard 饮食仪表盘
type FoodDashboard struct {
	Today            NutritionWindow `json:"today"`
	Week             NutritionWindow `json:"week"`
	Month            NutritionWindow `json:"month"`
	DailyAvgCalories float64         `json:"daily_avg_calories"` // 本月至今的日均热量
	MealTypes        []MealTypeStat  `json:"meal_types"`         // 当天按餐次分布
}

// Dashboard 饮食仪表盘
// @Summary 饮食仪表盘
// @Description 今日/本周/本月的热量与三大营养素合计，以及当天按餐次的热量分布；周从周日开始
// @Tags 饮食记录
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=FoodDashboard} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/food/dashboard [get]
func (h *FoodHandler) Dashboard(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)

	window := func(start, end time.Time) (NutritionWindow, error) {
		var w NutritionWindow
		err := database.DB.Model(&models.FoodEntry{}).
			Select("COALESCE(SUM(calories), 0) as calories, COALESCE(SUM(protein), 0) as protein, COALESCE(SUM(carbs), 0) as carbs, COALESCE(SUM(fats), 0) as fats, COUNT(*) as entries").
			Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
			Scan(&w).Error
		return w, err
	}

	var dash FoodDashboard
	var err error
	if dash.Today, err = window(today, today.AddDate(0, 0, 1)); err != nil {
		InternalError(c, SafeErrorMessage(err, "统计饮食记录失败"))
		return
	}
	if dash.Week, err = window(weekStart, weekStart.AddDate(0, 0, 7)); err != nil {
		InternalError(c, SafeErrorMessage(err, "统计饮食记录失败"))
		return
	}
	if dash.Month, err = window(monthStart, monthStart.AddDate(0, 1, 0)); err != nil {
		InternalError(c, SafeErrorMessage(err, "统计饮食记录失败"))
		return
	}
	dash.DailyAvgCalories = math.Round(float64(dash.Month.Calories)/float64(now.Day())*10) / 10

	if err := database.DB.Model(&models.FoodEntry{}).
		Select("meal_type, COALESCE(SUM(calories), 0) as calories, COUNT(*) as entries").
		Where("user_id = ? AND date >= ? AND date < ?", userID, today, today.AddDate(0, 0, 1)).
		Group("meal_type").
		Order("calories DESC").
		Scan(&dash.MealTypes).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计饮食记录失败"))
		return
	}

	Success(c, dash)
}

// Update 更新饮食记录
// @Summary 更新饮食记录
// @Tags 饮食记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录 ID"
// @Param request body FoodEntryRequest true "饮食记录"
// @Success 200 {object} Response{data=models.FoodEntry} "更新成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/food/{id} [put]
func (h *FoodHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的记录 ID")
		return
	}

	var entry models.FoodEntry
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req FoodEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if !models.ValidMealType(req.MealType) {
		BadRequest(c, "无效的餐次，应为：早餐/午餐/晚餐/加餐")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}
	if foodDateInFuture(date) {
		BadRequest(c, "日期不能晚于今天")
		return
	}

	updates := map[string]interface{}{
		"name":         strings.TrimSpace(req.Name),
		"meal_type":    req.MealType,
		"date":         date,
		"serving_size": strings.TrimSpace(req.ServingSize),
		"calories":     req.Calories,
		"protein":      req.Protein,
		"carbs":        req.Carbs,
		"fats":         req.Fats,
		"notes":        strings.TrimSpace(req.Notes),
	}
	if err := database.DB.Model(&entry).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新饮食记录失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", entry)
}

// Delete 删除饮食记录
// @Summary 删除饮食记录
// @Tags 饮食记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录 ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/food/{id} [delete]
func (h *FoodHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的记录 ID")
		return
	}

	var entry models.FoodEntry
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&entry).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除饮食记录失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
