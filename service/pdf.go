package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PdfService 仪表盘 PDF 报表
// gofpdf 内置字体不含 CJK，报表正文统一用英文
type PdfService struct{}

// NewPdfService 创建 PDF 报表服务
func NewPdfService() *PdfService {
	return &PdfService{}
}

// DashboardReport 渲染消费仪表盘报表，返回 PDF 文件内容
func (s *PdfService) DashboardReport(username string, generatedAt time.Time, dash *ExpenseDashboard) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Expense Dashboard Report", false)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Expense Dashboard Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Generated for %s on %s", username, generatedAt.Format("2006-01-02 15:04"))), "", 1, "C", false, 0, "")
	pdf.Ln(6)
	pdf.SetTextColor(0, 0, 0)

	// 四个滚动窗口
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	summary := []struct {
		label string
		stat  WindowStat
	}{
		{"Today", dash.Today},
		{"This Week", dash.Weekly},
		{"This Month", dash.Monthly},
		{"This Year", dash.Yearly},
	}
	for _, row := range summary {
		pdf.CellFormat(60, 7, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, fmt.Sprintf("%.2f", row.stat.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(60, 7, fmt.Sprintf("%d records", row.stat.Count), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	// 类别分布
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Category Breakdown (%s)", dash.BreakdownPeriod)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(37, 99, 235)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(70, 7, "Category", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 7, "Count", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 7, "Share", "1", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	if len(dash.Breakdown) == 0 {
		pdf.CellFormat(180, 7, "No expenses in this period", "1", 1, "C", false, 0, "")
	}
	for _, c := range dash.Breakdown {
		pdf.CellFormat(70, 7, tr(c.CategoryName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", c.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", c.Count), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.1f%%", c.Percentage), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	// 预算结余卡片
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Budget Balances", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(37, 99, 235)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(60, 7, "Category", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Type", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Budget", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 7, "Spent", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 7, "Remaining", "1", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	if len(dash.Balances) == 0 {
		pdf.CellFormat(180, 7, "No budgets configured", "1", 1, "C", false, 0, "")
	}
	for _, b := range dash.Balances {
		kind := "None"
		switch b.Kind {
		case BudgetOneTime:
			kind = "One-time"
		case BudgetRecurring:
			kind = "Monthly"
		}
		pdf.CellFormat(60, 7, tr(b.CategoryName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, kind, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", b.Budget), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", b.Spent), "1", 0, "R", false, 0, "")
		if b.Deficit > 0 {
			pdf.SetTextColor(220, 53, 69)
			pdf.CellFormat(30, 7, fmt.Sprintf("-%.2f", b.Deficit), "1", 1, "R", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		} else {
			pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", b.Remaining), "1", 1, "R", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("生成 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}
