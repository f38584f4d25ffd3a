// Package worker consumes ledger events and keeps the spreadsheet export current.
package worker

import (
	"context"
	"fmt"
	"time"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/sheets"
)

// MonthlyReporter computes a user's twelve-month breakdown.
type MonthlyReporter interface {
	MonthlyBreakdown(ctx context.Context, userID string, year int) ([]core.MonthStat, error)
}

// LedgerWorker re-exports the year touched by each event. Events carry no amounts, so
// replays and reordering are harmless: the export always reflects current storage.
type LedgerWorker struct {
	reports  MonthlyReporter
	exporter sheets.Exporter
	timeout  time.Duration
}

func NewLedgerWorker(reports MonthlyReporter, exporter sheets.Exporter) *LedgerWorker {
	return &LedgerWorker{reports: reports, exporter: exporter, timeout: 30 * time.Second}
}

// HandleLedgerEvent satisfies amqp.Handler.
func (w *LedgerWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	logger := log.FromContext(ctx).WithComponent(log.ComponentWorker)
	logger.InfoContext(ctx, "Processing ledger event",
		"type", ev.Type,
		log.FieldUserID, ev.UserID,
		log.FieldYear, ev.Year,
		log.FieldMonth, ev.Month)

	months, err := w.reports.MonthlyBreakdown(ctx, ev.UserID, ev.Year)
	if err != nil {
		return fmt.Errorf("monthly breakdown for %s/%d: %w", ev.UserID, ev.Year, err)
	}

	report := sheets.YearReport{UserID: ev.UserID, Year: ev.Year, Months: months}
	if err := w.exporter.ExportYear(ctx, report); err != nil {
		logger.ErrorContext(ctx, "Failed to export year report",
			log.FieldUserID, ev.UserID,
			log.FieldYear, ev.Year,
			log.FieldError, err)
		return fmt.Errorf("export year report: %w", err)
	}
	return nil
}
