// Package export renders one ledger period as an xlsx workbook.
package export

import (
	"fmt"
	"io"

	"budget/internal/core"

	"github.com/xuri/excelize/v2"
)

const (
	ExpensesSheet = "Expenses"
	SummarySheet  = "Summary"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Filename is the attachment name used for a period export.
func Filename(year, month int) string {
	return fmt.Sprintf("budget_%04d_%02d.xlsx", year, month)
}

// Workbook builds the export for one period. Amounts are written as
// decimal strings so the file shows exactly what the ledger stores.
func Workbook(year, month int, expenses []core.Expense, summary core.Summary) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(ExpensesSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{"Date", "Category", "Amount", "Note"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ExpensesSheet, cell, h); err != nil {
			f.Close()
			return nil, err
		}
	}

	for idx, e := range expenses {
		row := idx + 2
		values := []any{e.Date.String(), e.Category, e.Amount.String(), e.Note}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(ExpensesSheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
	}

	_ = f.SetColWidth(ExpensesSheet, "A", "A", 12)
	_ = f.SetColWidth(ExpensesSheet, "B", "B", 20)
	_ = f.SetColWidth(ExpensesSheet, "C", "C", 12)
	_ = f.SetColWidth(ExpensesSheet, "D", "D", 40)

	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	s := summary.Strings()
	rows := [][]any{
		{"Period", fmt.Sprintf("%04d-%02d", year, month)},
		{"Salary", s.Salary},
		{"Total expenses", s.TotalExpenses},
		{"Balance", s.Balance},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &r); err != nil {
			f.Close()
			return nil, fmt.Errorf("write summary: %w", err)
		}
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 18)

	return f, nil
}

// Write renders the workbook into w.
func Write(w io.Writer, year, month int, expenses []core.Expense, summary core.Summary) error {
	f, err := Workbook(year, month, expenses, summary)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
