// Package sheets exports yearly ledger summaries to spreadsheets.
package sheets

import (
	"context"
	"fmt"
	"time"

	"tally/internal/core"
)

// YearReport is the monthly breakdown of one user's year.
type YearReport struct {
	UserID string
	Year   int
	Months []core.MonthStat
}

// Exporter writes a YearReport, replacing whatever was exported for the same user and year.
type Exporter interface {
	ExportYear(ctx context.Context, r YearReport) error
}

var Header = []any{"Month", "Expenses", "Income", "Balance"}

// TabName is the sheet tab holding a user's year.
func TabName(userID string, year int) string {
	return fmt.Sprintf("%s %d", userID, year)
}

// Rows renders r as a header, one row per month and a closing total row. Amounts are
// in dollars.
func Rows(r YearReport) [][]any {
	rows := make([][]any, 0, len(r.Months)+2)
	rows = append(rows, Header)

	var exp, inc int64
	for _, m := range r.Months {
		rows = append(rows, []any{
			time.Month(m.Month).String()[:3],
			core.Money{Cents: m.TotalExpenses}.Dollars(),
			core.Money{Cents: m.Income}.Dollars(),
			core.Money{Cents: m.Balance}.Dollars(),
		})
		exp += m.TotalExpenses
		inc += m.Income
	}
	rows = append(rows, []any{
		"Total",
		core.Money{Cents: exp}.Dollars(),
		core.Money{Cents: inc}.Dollars(),
		core.Money{Cents: inc - exp}.Dollars(),
	})
	return rows
}
