// Package report renders monthly ledger reports to Excel workbooks.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/pkamnerd/dorm-billing/internal/application/service"
)

const sheetName = "Monthly Ledger"

// ExcelExporter writes monthly reports as .xlsx files
type ExcelExporter struct {
	outputDir string
	logger    *zap.Logger
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(outputDir string, logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{
		outputDir: outputDir,
		logger:    logger,
	}
}

// Export writes the report workbook and returns its path
func (e *ExcelExporter) Export(report *service.MonthlyReport) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	headers := []string{"Room", "Tenant", "Period", "Due Date", "Total", "Paid", "Balance", "Late Days", "Late Fee", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		e.setCell(f, cell, h)
	}
	f.SetCellStyle(sheetName, "A1", "J1", headerStyle)
	f.SetColWidth(sheetName, "A", "J", 14)
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, ActivePane: "bottomLeft"})

	row := 2
	for _, r := range report.Rows {
		e.setCell(f, fmt.Sprintf("A%d", row), r.Invoice.Room)
		e.setCell(f, fmt.Sprintf("B%d", row), r.Invoice.TenantName)
		e.setCell(f, fmt.Sprintf("C%d", row), r.Invoice.Period)
		e.setCell(f, fmt.Sprintf("D%d", row), r.Invoice.DueDate.Format("2006-01-02"))
		e.setCell(f, fmt.Sprintf("E%d", row), r.Total.StringFixed(2))
		e.setCell(f, fmt.Sprintf("F%d", row), r.Paid.StringFixed(2))
		e.setCell(f, fmt.Sprintf("G%d", row), r.Balance.StringFixed(2))
		e.setCell(f, fmt.Sprintf("H%d", row), r.LateDays)
		e.setCell(f, fmt.Sprintf("I%d", row), r.LateFee.StringFixed(2))
		e.setCell(f, fmt.Sprintf("J%d", row), r.Status.String())
		row++
	}

	// summary line
	row++
	e.setCell(f, fmt.Sprintf("A%d", row), "TOTAL")
	e.setCell(f, fmt.Sprintf("E%d", row), report.TotalBilled.StringFixed(2))
	e.setCell(f, fmt.Sprintf("F%d", row), report.TotalPaid.StringFixed(2))
	e.setCell(f, fmt.Sprintf("G%d", row), report.TotalOutstanding.StringFixed(2))
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("J%d", row), headerStyle)

	filename := fmt.Sprintf("ledger_%d_%s.xlsx", report.DormID, report.Period)
	outputPath := filepath.Join(e.outputDir, filename)
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save report workbook: %w", err)
	}

	e.logger.Info("Monthly report exported",
		zap.Int64("dorm_id", report.DormID),
		zap.String("period", report.Period),
		zap.String("path", outputPath))
	return outputPath, nil
}

// setCell writes a cell value, logging failures instead of aborting
func (e *ExcelExporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		e.logger.Error("Failed to set cell", zap.String("cell", cell), zap.Error(err))
	}
}
