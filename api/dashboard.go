package api

import (
	"lifebook/database"
	"lifebook/middleware"
	"lifebook/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 消费仪表盘处理器
type DashboardHandler struct{}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Expense 消费仪表盘
// @Summary 消费仪表盘
// @Description 今日/本周/本月/本年滚动汇总、类别分布、预算结余卡片、最近消费与可选月份列表。
// @Description month（YYYY-MM）优先于 period；两者都缺省时按当月统计。
// @Tags 仪表盘
// @Produce json
// @Security BearerAuth
// @Param period query string false "分布周期 daily/weekly/monthly/yearly/all"
// @Param month query string false "指定月份 (2026-03)"
// @Success 200 {object} Response{data=service.ExpenseDashboard} "获取成功"
// @Failure 400 {object} Response "月份格式错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/dashboard [get]
func (h *DashboardHandler) Expense(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	period := c.Query("period")
	month := c.Query("month")

	svc := service.NewDashboardService(database.DB, nil)
	dash, err := svc.GetExpenseDashboard(userID, period, month)
	if err != nil {
		ServiceError(c, err, "生成仪表盘失败")
		return
	}

	Success(c, dash)
}
