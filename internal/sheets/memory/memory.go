// Package memory keeps exported year reports in process and logs them. The worker uses it
// when no spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/sheets"
)

type Exporter struct {
	mu   sync.RWMutex
	tabs map[string][][]any
}

var _ sheets.Exporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{tabs: make(map[string][][]any)}
}

func (e *Exporter) ExportYear(ctx context.Context, r sheets.YearReport) error {
	rows := sheets.Rows(r)
	tab := sheets.TabName(r.UserID, r.Year)

	e.mu.Lock()
	e.tabs[tab] = rows
	e.mu.Unlock()

	var exp, inc int64
	for _, m := range r.Months {
		exp += m.TotalExpenses
		inc += m.Income
	}
	log.FromContext(ctx).WithComponent(log.ComponentSheets).InfoContext(ctx, "Year report recorded",
		log.FieldUserID, r.UserID,
		log.FieldYear, r.Year,
		"total_expenses", core.FormatCents(exp),
		"total_income", core.FormatCents(inc))
	return nil
}

// Tab returns the rows last exported under name.
func (e *Exporter) Tab(name string) ([][]any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rows, ok := e.tabs[name]
	return rows, ok
}

func (e *Exporter) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.tabs)
}
