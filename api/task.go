package api

import (
	"strconv"
	"time"

	"lifebook/database"
	"lifebook/middleware"
	"lifebook/models"

	"github.com/gin-gonic/gin"
)

// TaskHandler 任务处理器
type TaskHandler struct{}

// NewTaskHandler 创建任务处理器
func NewTaskHandler() *TaskHandler {
	return &TaskHandler{}
}

// TaskRequest 创建/更新任务请求
type TaskRequest struct {
	Title       string `json:"title" binding:"required,max=100" example:"写周报"`
	Description string `json:"description" binding:"omitempty,max=300" example:"整理本周进展"`
	Deadline    string `json:"deadline" binding:"omitempty" example:"2026-03-20 18:00:00"`
}

// TaskStatusRequest 更新任务状态请求
type TaskStatusRequest struct {
	Status int `json:"status" binding:"min=0,max=2" example:"2"` // 0 待办 1 进行中 2 已完成
}

// TaskView 任务列表项，带逾期标记
type TaskView struct {
	models.TaskItem
	Overdue bool `json:"overdue"`
}

// parseDeadline 解析截止时间，允许只给日期
func parseDeadline(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// Create 创建任务
// @Summary 创建任务
// @Description 创建待办任务，截止时间不得早于当前时间
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TaskRequest true "任务信息"
// @Success 200 {object} Response{data=models.TaskItem} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	deadline, ok := parseDeadline(req.Deadline)
	if !ok {
		BadRequest(c, "截止时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}
	if deadline != nil && deadline.Before(time.Now()) {
		BadRequest(c, "截止时间不能早于当前时间")
		return
	}

	task := models.TaskItem{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatusTodo,
		Deadline:    deadline,
	}
	if err := database.DB.Create(&task).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建任务失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", task)
}

// List 获取任务列表
// @Summary 获取任务列表
// @Description 按状态筛选任务；overdue=true 只看逾期未完成的任务。
// @Description 排序：未完成在前，按截止时间升序，无截止时间的排在最后。
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param status query int false "状态筛选 0/1/2"
// @Param overdue query bool false "只看逾期"
// @Success 200 {object} Response{data=[]TaskView} "获取成功"
// @Router /api/v1/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.Where("user_id = ?", userID)

	if statusStr := c.Query("status"); statusStr != "" {
		status, err := strconv.Atoi(statusStr)
		if err != nil || !models.ValidTaskStatus(status) {
			BadRequest(c, "无效的任务状态")
			return
		}
		query = query.Where("status = ?", status)
	}

	now := time.Now()
	if c.Query("overdue") == "true" {
		query = query.Where("status != ? AND deadline IS NOT NULL AND deadline < ?", models.TaskStatusCompleted, now)
	}

	var tasks []models.TaskItem
	if err := query.
		Order("CASE WHEN status = 2 THEN 1 ELSE 0 END ASC").
		Order("deadline IS NULL ASC, deadline ASC").
		Order("id DESC").
		Find(&tasks).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询任务失败"))
		return
	}

	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, TaskView{
			TaskItem: tasks[i],
			Overdue:  tasks[i].IsOverdue(now),
		})
	}

	Success(c, views)
}

// findTask 查找当前用户的任务
func findTask(c *gin.Context, userID uint) (*models.TaskItem, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的任务 ID")
		return nil, false
	}

	var task models.TaskItem
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&task).Error; err != nil {
		NotFound(c, "任务不存在")
		return nil, false
	}
	return &task, true
}

// Get 获取任务详情
// @Summary 获取任务详情
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务 ID"
// @Success 200 {object} Response{data=TaskView} "获取成功"
// @Failure 404 {object} Response "任务不存在"
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	task, ok := findTask(c, userID)
	if !ok {
		return
	}

	Success(c, TaskView{TaskItem: *task, Overdue: task.IsOverdue(time.Now())})
}

// TaskDashboard 任务概览
type TaskDashboard struct {
	TodoCount      int64      `json:"todo_count"`
	OngoingCount   int64      `json:"ongoing_count"`
	CompletedCount int64      `json:"completed_count"`
	OverdueCount   int64      `json:"overdue_count"`
	Upcoming       []TaskView `json:"upcoming"` // 未来 7 天内到期的未完成任务
	Overdue        []TaskView `json:"overdue"`
}

// Dashboard 任务仪表盘
// @Summary 任务仪表盘
// @Description 各状态计数、逾期计数，以及逾期与未来 7 天内到期的未完成任务清单
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=TaskDashboard} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/tasks/dashboard [get]
func (h *TaskHandler) Dashboard(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	now := time.Now()

	var dash TaskDashboard
	counts := []struct {
		status int
		dst    *int64
	}{
		{models.TaskStatusTodo, &dash.TodoCount},
		{models.TaskStatusOngoing, &dash.OngoingCount},
		{models.TaskStatusCompleted, &dash.CompletedCount},
	}
	for _, item := range counts {
		if err := database.DB.Model(&models.TaskItem{}).
			Where("user_id = ? AND status = ?", userID, item.status).
			Count(item.dst).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "统计任务失败"))
			return
		}
	}

	overdueWhere := database.DB.Model(&models.TaskItem{}).
		Where("user_id = ? AND status != ? AND deadline IS NOT NULL AND deadline < ?",
			userID, models.TaskStatusCompleted, now)
	if err := overdueWhere.Count(&dash.OverdueCount).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计任务失败"))
		return
	}

	var overdueTasks []models.TaskItem
	if err := database.DB.
		Where("user_id = ? AND status != ? AND deadline IS NOT NULL AND deadline < ?",
			userID, models.TaskStatusCompleted, now).
		Order("deadline ASC").Limit(10).
		Find(&overdueTasks).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询任务失败"))
		return
	}

	var upcomingTasks []models.TaskItem
	if err := database.DB.
		Where("user_id = ? AND status != ? AND deadline >= ? AND deadline < ?",
			userID, models.TaskStatusCompleted, now, now.AddDate(0, 0, 7)).
		Order("deadline ASC").Limit(10).
		Find(&upcomingTasks).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询任务失败"))
		return
	}

	dash.Overdue = make([]TaskView, 0, len(overdueTasks))
	for i := range overdueTasks {
		dash.Overdue = append(dash.Overdue, TaskView{TaskItem: overdueTasks[i], Overdue: true})
	}
	dash.Upcoming = make([]TaskView, 0, len(upcomingTasks))
	for i := range upcomingTasks {
		dash.Upcoming = append(dash.Upcoming, TaskView{TaskItem: upcomingTasks[i]})
	}

	Success(c, dash)
}

// Update 更新任务
// @Summary 更新任务
// @Description 修改标题、描述或截止时间，状态不在此接口变更
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务 ID"
// @Param request body TaskRequest true "任务信息"
// @Success 200 {object} Response{data=models.TaskItem} "更新成功"
// @Failure 404 {object} Response "任务不存在"
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	task, ok := findTask(c, userID)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	deadline, ok := parseDeadline(req.Deadline)
	if !ok {
		BadRequest(c, "截止时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}

	updates := map[string]interface{}{
		"title":       req.Title,
		"description": req.Description,
		"deadline":    deadline,
	}
	if err := database.DB.Model(task).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新任务失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", task)
}

// UpdateStatus 更新任务状态
// @Summary 更新任务状态
// @Description 流转任务状态。置为已完成时盖上完成时间；从已完成改回时清空完成时间
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务 ID"
// @Param request body TaskStatusRequest true "目标状态"
// @Success 200 {object} Response{data=models.TaskItem} "更新成功"
// @Failure 400 {object} Response "无效的任务状态"
// @Failure 404 {object} Response "任务不存在"
// @Router /api/v1/tasks/{id}/status [put]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	task, ok := findTask(c, userID)
	if !ok {
		return
	}

	var req TaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if !models.ValidTaskStatus(req.Status) {
		BadRequest(c, "无效的任务状态")
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.TaskStatusCompleted {
		now := time.Now()
		updates["completed_at"] = &now
	} else {
		updates["completed_at"] = nil
	}

	if err := database.DB.Model(task).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新任务状态失败"))
		return
	}

	SuccessWithMessage(c, "状态更新成功", task)
}

// Delete 删除任务
// @Summary 删除任务
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务 ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "任务不存在"
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	task, ok := findTask(c, userID)
	if !ok {
		return
	}

	if err := database.DB.Delete(task).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除任务失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
