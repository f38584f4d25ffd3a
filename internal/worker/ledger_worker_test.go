package worker

import (
	"context"
	"errors"
	"testing"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/sheets"
	sheetsmem "tally/internal/sheets/memory"
	"tally/internal/stats"
	"tally/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingExporter struct{}

func (failingExporter) ExportYear(context.Context, sheets.YearReport) error {
	return errors.New("quota exceeded")
}

func TestHandleLedgerEventExportsYear(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, err := store.Expenses().Create(ctx, core.Expense{
		ID: "e1", UserID: "alice", Amount: core.Money{Cents: 2500}, Category: core.CategoryTravel, Date: core.NewDate(2025, 4, 2),
	})
	require.NoError(t, err)
	_, err = store.Incomes().Upsert(ctx, core.MonthlyIncome{UserID: "alice", Year: 2025, Month: 4, Amount: core.Money{Cents: 10000}})
	require.NoError(t, err)

	exporter := sheetsmem.New()
	w := NewLedgerWorker(stats.NewEngine(store.Expenses(), store.Incomes()), exporter)

	ev := amqp.NewLedgerEvent(amqp.ExpenseCreated, "alice", 2025, 4)
	require.NoError(t, w.HandleLedgerEvent(ctx, ev))

	rows, ok := exporter.Tab("alice 2025")
	require.True(t, ok)
	require.Len(t, rows, 14)
	assert.Equal(t, "Apr", rows[4][0])
	assert.Equal(t, 25.0, rows[4][1])
	assert.Equal(t, 75.0, rows[4][3])

	// replaying the same event leaves the export unchanged
	require.NoError(t, w.HandleLedgerEvent(ctx, ev))
	assert.Equal(t, 1, exporter.Len())
}

func TestHandleLedgerEventPropagatesExportFailure(t *testing.T) {
	store := memory.New()
	w := NewLedgerWorker(stats.NewEngine(store.Expenses(), store.Incomes()), failingExporter{})

	err := w.HandleLedgerEvent(context.Background(), amqp.NewLedgerEvent(amqp.IncomeUpserted, "bob", 2025, 1))
	assert.ErrorContains(t, err, "quota exceeded")
}
