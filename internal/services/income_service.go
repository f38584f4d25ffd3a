package services

import (
	"context"
	"fmt"

	"tally/internal/amqp"
	"tally/internal/auth"
	"tally/internal/core"
)

// IncomeService exposes monthly income to its owner. Upsert is the only write.
type IncomeService struct {
	repo   IncomeRepository
	notify notifier
}

func NewIncomeService(repo IncomeRepository, events EventPublisher, invalidator StatsInvalidator) *IncomeService {
	return &IncomeService{repo: repo, notify: notifier{events: events, invalidator: invalidator}}
}

func (s *IncomeService) Upsert(ctx context.Context, year, month int, amount core.Money) (core.MonthlyIncome, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return core.MonthlyIncome{}, err
	}

	mi := core.MonthlyIncome{UserID: userID, Year: year, Month: month, Amount: amount}
	if err := mi.Validate(); err != nil {
		return core.MonthlyIncome{}, err
	}

	saved, err := s.repo.Upsert(ctx, mi)
	if err != nil {
		return core.MonthlyIncome{}, fmt.Errorf("upsert income: %w", err)
	}

	logFor(ctx).InfoContext(ctx, "Income saved",
		"user_id", userID,
		"year", year,
		"month", month,
		"amount", saved.Amount.String())

	s.notify.changed(ctx, userID, amqp.NewLedgerEvent(amqp.IncomeUpserted, userID, year, month))
	return saved, nil
}

// Get returns nil when the caller recorded no income for the month.
func (s *IncomeService) Get(ctx context.Context, year, month int) (*core.MonthlyIncome, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	mi, err := s.repo.Get(ctx, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("get income: %w", err)
	}
	return mi, nil
}
