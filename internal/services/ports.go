package services

import (
	"context"

	"tally/internal/amqp"
	"tally/internal/core"
)

// ExpenseRepository is the storage the expense service writes through.
type ExpenseRepository interface {
	Create(ctx context.Context, e core.Expense) (core.Expense, error)
	Get(ctx context.Context, id string) (core.Expense, error)
	Update(ctx context.Context, e core.Expense) (core.Expense, error)
	Delete(ctx context.Context, id, userID string) error
	ListByRange(ctx context.Context, userID string, rng core.DateRange) ([]core.Expense, error)
}

// IncomeRepository is the storage the income service writes through.
type IncomeRepository interface {
	Upsert(ctx context.Context, mi core.MonthlyIncome) (core.MonthlyIncome, error)
	Get(ctx context.Context, userID string, year, month int) (*core.MonthlyIncome, error)
}

// EventPublisher announces ledger changes. A nil publisher disables events.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// StatsInvalidator forgets cached breakdowns of a user. A nil invalidator is allowed.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// notifier runs the side effects shared by every successful mutation.
type notifier struct {
	events      EventPublisher
	invalidator StatsInvalidator
}

func (n notifier) changed(ctx context.Context, userID string, events ...*amqp.LedgerEvent) {
	if n.invalidator != nil {
		// the write is committed, so a caller that went away must not skip invalidation
		n.invalidator.Invalidate(context.WithoutCancel(ctx), userID)
	}
	if n.events == nil {
		return
	}
	for _, ev := range events {
		if err := n.events.PublishLedgerEvent(ctx, ev); err != nil {
			// the write already succeeded; consumers catch up on the next event
			logFor(ctx).WarnContext(ctx, "Failed to publish ledger event",
				"type", ev.Type,
				"user_id", ev.UserID,
				"error", err)
		}
	}
}
