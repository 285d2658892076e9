package api

import (
	"strconv"

	"lifebook/middleware"
	"lifebook/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 消费类别处理器
type CategoryHandler struct{}

// NewCategoryHandler 创建消费类别处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CategoryRequest 创建/更新类别请求
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=50" example:"Travel"`
	Description string `json:"description" binding:"omitempty,max=255" example:"差旅开销"`
}

// SetBudgetRequest 设置类别预算请求
// monthly_fixed_budget > 0 时按每月固定预算口径计算结余，否则按一次性预算
type SetBudgetRequest struct {
	BudgetAmount       float64 `json:"budget_amount" binding:"omitempty,gte=0" example:"500"`
	MonthlyFixedBudget float64 `json:"monthly_fixed_budget" binding:"omitempty,gte=0" example:"1000"`
}

// List 获取类别列表
// @Summary 获取消费类别列表
// @Description 获取当前用户全部类别，附带消费笔数与当月口径的预算结余
// @Tags 消费类别
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]service.CategoryView} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	views, err := expenseService().ListCategories(userID)
	if err != nil {
		ServiceError(c, err, "查询类别失败")
		return
	}

	Success(c, views)
}

// Create 创建类别
// @Summary 创建消费类别
// @Description 创建新类别，名称只允许字母、数字和空格，同名（忽略大小写）拒绝
// @Tags 消费类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.ExpenseCategory} "创建成功"
// @Failure 400 {object} Response "名称不合法"
// @Failure 409 {object} Response "名称已存在"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	cat, err := expenseService().CreateCategory(userID, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		ServiceError(c, err, "创建类别失败")
		return
	}

	SuccessWithMessage(c, "创建成功", cat)
}

// Update 更新类别
// @Summary 更新消费类别
// @Description 重命名或修改描述，默认类别也允许改名；名称冲突时类别保持原状
// @Tags 消费类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别 ID"
// @Param request body CategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.ExpenseCategory} "更新成功"
// @Failure 404 {object} Response "类别不存在"
// @Failure 409 {object} Response "名称已存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的类别 ID")
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	cat, err := expenseService().UpdateCategory(userID, uint(id), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		ServiceError(c, err, "更新类别失败")
		return
	}

	SuccessWithMessage(c, "更新成功", cat)
}

// SetBudget 设置类别预算
// @Summary 设置类别预算
// @Description 设置一次性预算或每月固定预算，切换口径后下一次仪表盘读取时重新基准化
// @Tags 消费类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别 ID"
// @Param request body SetBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.ExpenseCategory} "设置成功"
// @Failure 400 {object} Response "预算金额不合法"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id}/budget [put]
func (h *CategoryHandler) SetBudget(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的类别 ID")
		return
	}

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	cat, err := expenseService().SetCategoryBudget(userID, uint(id), req.BudgetAmount, req.MonthlyFixedBudget)
	if err != nil {
		ServiceError(c, err, "设置预算失败")
		return
	}

	SuccessWithMessage(c, "预算设置成功", cat)
}

// Delete 删除类别
// @Summary 删除消费类别
// @Description 软删除类别；默认类别与仍有消费记录的类别不允许删除
// @Tags 消费类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别 ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "类别不存在"
// @Failure 409 {object} Response "类别不允许删除"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的类别 ID")
		return
	}

	if err := expenseService().DeleteCategory(userID, uint(id)); err != nil {
		ServiceError(c, err, "删除类别失败")
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
