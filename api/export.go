package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"lifebook/database"
	"lifebook/middleware"
	"lifebook/models"
	"lifebook/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// exportRange 解析导出时间范围
func exportRange(c *gin.Context) (start, end time.Time, startStr, endStr string, ok bool) {
	startStr = c.Query("start_date")
	endStr = c.Query("end_date")

	if startStr == "" || endStr == "" {
		BadRequest(c, "请提供开始日期和结束日期")
		return
	}

	var err error
	start, err = time.ParseInLocation("2006-01-02", startStr, time.Local)
	if err != nil {
		BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
		return
	}
	end, err = time.ParseInLocation("2006-01-02", endStr, time.Local)
	if err != nil {
		BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
		return
	}
	end = end.AddDate(0, 0, 1)
	ok = true
	return
}

// exportRow 导出用的消费行，类别名称由 JOIN 得出
type exportRow struct {
	ID           uint
	Amount       float64
	Date         time.Time
	Reason       string
	CategoryName string
	CreatedAt    time.Time
}

// queryExportRows 查询范围内的消费记录
func queryExportRows(userID uint, start, end time.Time) ([]exportRow, error) {
	var rows []exportRow
	err := database.DB.Model(&models.Expense{}).
		Select("expenses.id, expenses.amount, expenses.date, expenses.reason, expenses.created_at, expense_categories.name as category_name").
		Joins("JOIN expense_categories ON expense_categories.id = expenses.category_id").
		Where("expenses.user_id = ? AND expenses.date >= ? AND expenses.date < ?", userID, start, end).
		Order("expenses.date DESC, expenses.id DESC").
		Scan(&rows).Error
	return rows, err
}

// ExportCSV 导出消费记录为 CSV
// @Summary 导出消费记录为 CSV
// @Description 根据日期范围导出消费记录为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2026-01-01)"
// @Param end_date query string true "结束日期 (2026-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	start, end, startStr, endStr, ok := exportRange(c)
	if !ok {
		return
	}

	rows, err := queryExportRows(userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"ID", "金额", "类别", "日期", "备注", "创建时间"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	for _, row := range rows {
		record := []string{
			fmt.Sprintf("%d", row.ID),
			fmt.Sprintf("%.2f", row.Amount),
			row.CategoryName,
			row.Date.Format("2006-01-02"),
			row.Reason,
			row.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("expenses_%s_%s.csv", startStr, endStr)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出消费记录为 JSON
// @Summary 导出消费记录为 JSON
// @Description 根据日期范围导出消费记录与汇总信息
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2026-01-01)"
// @Param end_date query string true "结束日期 (2026-12-31)"
// @Success 200 {object} Response "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	start, end, startStr, endStr, ok := exportRange(c)
	if !ok {
		return
	}

	rows, err := queryExportRows(userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	var totalAmount float64
	for _, row := range rows {
		totalAmount += row.Amount
	}

	Success(c, gin.H{
		"start_date":   startStr,
		"end_date":     endStr,
		"total_count":  len(rows),
		"total_amount": totalAmount,
		"expenses":     rows,
	})
}

// ExportExcel 导出消费记录为 Excel
// @Summary 导出消费记录为 Excel
// @Description 根据日期范围导出消费记录为 xlsx 文件，末尾附合计行
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string true "开始日期 (2026-01-01)"
// @Param end_date query string true "结束日期 (2026-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	start, end, startStr, endStr, ok := exportRange(c)
	if !ok {
		return
	}

	rows, err := queryExportRows(userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "消费记录"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "金额", "类别", "日期", "备注", "创建时间"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	var totalAmount float64
	for i, row := range rows {
		values := []interface{}{
			row.ID,
			row.Amount,
			row.CategoryName,
			row.Date.Format("2006-01-02"),
			row.Reason,
			row.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
		totalAmount += row.Amount
	}

	// 合计行
	totalRow := len(rows) + 2
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	f.SetCellValue(sheet, cell, "合计")
	cell, _ = excelize.CoordinatesToCellName(2, totalRow)
	f.SetCellValue(sheet, cell, totalAmount)

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}

	filename := fmt.Sprintf("expenses_%s_%s.xlsx", startStr, endStr)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportPDF 导出仪表盘 PDF 报表
// @Summary 导出仪表盘 PDF 报表
// @Description 把当前仪表盘（汇总、分布、预算结余）渲染为 PDF 文件
// @Tags 导出
// @Produce application/pdf
// @Security BearerAuth
// @Param period query string false "分布周期 daily/weekly/monthly/yearly/all"
// @Param month query string false "指定月份 (2026-03)"
// @Success 200 {file} file "PDF 文件"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/pdf [get]
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	username := middleware.GetCurrentUsername(c)

	svc := service.NewDashboardService(database.DB, nil)
	dash, err := svc.GetExpenseDashboard(userID, c.Query("period"), c.Query("month"))
	if err != nil {
		ServiceError(c, err, "生成仪表盘失败")
		return
	}

	pdfBytes, err := service.NewPdfService().DashboardReport(username, time.Now(), dash)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成 PDF 失败"))
		return
	}

	filename := fmt.Sprintf("dashboard_%s.pdf", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", len(pdfBytes)))

	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
