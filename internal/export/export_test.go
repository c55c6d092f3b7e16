package export

import (
	"bytes"
	"testing"

	"budget/internal/core"

	"github.com/xuri/excelize/v2"
)

func TestWrite(t *testing.T) {
	period := &core.Period{Year: 2025, Month: 6, Salary: core.Money{Cents: 5000000}}
	expenses := []core.Expense{
		{Category: "Rent", Amount: core.Money{Cents: 120050}, Date: core.NewDate(2025, 6, 1), Note: "June"},
		{Category: "Food", Amount: core.Money{Cents: 30000}, Date: core.NewDate(2025, 6, 5)},
	}
	summary, err := core.Summarize(period, expenses)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, 2025, 6, expenses, summary); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != ExpensesSheet || got[1] != SummarySheet {
		t.Fatalf("sheets = %v", got)
	}

	rows, err := f.GetRows(ExpensesSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "2025-06-01" || rows[1][2] != "1200.50" || rows[1][3] != "June" {
		t.Errorf("first row = %v", rows[1])
	}

	balance, err := f.GetCellValue(SummarySheet, "B4")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if balance != "48499.50" {
		t.Errorf("balance = %s, want 48499.50", balance)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(2025, 6); got != "budget_2025_06.xlsx" {
		t.Fatalf("Filename = %s", got)
	}
}
