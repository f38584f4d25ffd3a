package memory

import (
	"context"
	"testing"

	"tally/internal/core"
	"tally/internal/sheets"
)

func TestExportYearReplacesTab(t *testing.T) {
	e := New()
	ctx := context.Background()

	months := []core.MonthStat{{Month: 1, TotalExpenses: 100}}
	if err := e.ExportYear(ctx, sheets.YearReport{UserID: "u", Year: 2025, Months: months}); err != nil {
		t.Fatal(err)
	}
	months[0].TotalExpenses = 300
	if err := e.ExportYear(ctx, sheets.YearReport{UserID: "u", Year: 2025, Months: months}); err != nil {
		t.Fatal(err)
	}

	if e.Len() != 1 {
		t.Fatalf("tabs = %d, want 1", e.Len())
	}
	rows, ok := e.Tab("u 2025")
	if !ok {
		t.Fatal("tab missing")
	}
	if rows[1][1] != 3.0 {
		t.Fatalf("january expenses = %v, want 3", rows[1][1])
	}
}
