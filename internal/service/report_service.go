package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iniulez/spbsfi/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ReportService exports xlsx reports for offline use.
type ReportService struct {
	itemRepo     *repository.ItemRepository
	activityRepo *repository.ActivityLogRepository
	frbRepo      *repository.FRBRepository
}

func NewReportService(itemRepo *repository.ItemRepository, activityRepo *repository.ActivityLogRepository, frbRepo *repository.FRBRepository) *ReportService {
	return &ReportService{itemRepo: itemRepo, activityRepo: activityRepo, frbRepo: frbRepo}
}

var stockReportHeaders = []string{
	"No", "Item Name", "Unit", "Current Stock", "Estimated Unit Price", "Stock Value",
}

// ExportStockReport writes the current stock position of every item.
func (s *ReportService) ExportStockReport(ctx context.Context) (*excelize.File, string, error) {
	items, _, err := s.itemRepo.FindAll(ctx, 1, 10000, nil)
	if err != nil {
		return nil, "", fmt.Errorf("list items: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Stock"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, h := range stockReportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	var totalValue float64
	for rowIdx, item := range items {
		row := rowIdx + 2
		value := item.CurrentStock * item.EstimatedUnitPrice
		totalValue += value
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), rowIdx+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.ItemName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.Unit)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.CurrentStock)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), item.EstimatedUnitPrice)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), value)
	}

	summaryRow := len(items) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("F%d", summaryRow), totalValue)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("F%d", summaryRow), summaryStyle)

	colWidths := []float64{6, 30, 8, 14, 18, 16}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("Stock_%s.xlsx", time.Now().Format("2006-01-02"))
	return f, filename, nil
}

var movementReportHeaders = []string{
	"No", "Date", "Quantity", "Result Stock", "Reference Type", "Reference", "Notes",
}

// ExportMovementReport writes the stock ledger for one item.
func (s *ReportService) ExportMovementReport(ctx context.Context, itemID string) (*excelize.File, string, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, "", err
	}
	movements, _, err := s.itemRepo.ListMovements(ctx, itemID, 1, 10000)
	if err != nil {
		return nil, "", fmt.Errorf("list movements: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Movements"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, h := range movementReportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, m := range movements {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), rowIdx+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), m.CreatedAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), m.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), m.ResultStock)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), m.ReferenceType)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), m.ReferenceID)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), m.Notes)
	}

	colWidths := []float64{6, 18, 12, 12, 14, 34, 40}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("Movements_%s_%s.xlsx", item.ItemName, time.Now().Format("2006-01-02"))
	return f, filename, nil
}

var frbReportHeaders = []string{
	"No", "FRB Code", "Status", "Recipient", "Submission Date", "Delivery Deadline",
}

// ExportFRBReport writes all FRBs matching the given filters.
func (s *ReportService) ExportFRBReport(ctx context.Context, filters map[string]string) (*excelize.File, string, error) {
	frbs, _, err := s.frbRepo.FindAll(ctx, 1, 10000, filters)
	if err != nil {
		return nil, "", fmt.Errorf("list FRBs: %w", err)
	}

	f := excelize.NewFile()
	sheet := "FRB"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, h := range frbReportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, frb := range frbs {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), rowIdx+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), frb.FRBCode)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), frb.Status)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), frb.RecipientName)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), frb.SubmissionDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), frb.DeliveryDeadline.Format("2006-01-02"))
	}

	colWidths := []float64{6, 16, 24, 20, 14, 16}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("FRB_%s.xlsx", time.Now().Format("2006-01-02"))
	return f, filename, nil
}
