package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tally/internal/amqp"
	"tally/internal/auth"
	"tally/internal/core"

	"github.com/google/uuid"
)

// NewExpense is the input of ExpenseService.Create.
type NewExpense struct {
	Amount      core.Money
	Category    core.Category
	Description string
	Date        core.Date
}

// ExpenseService is the access-controlled entry point for expense reads and writes. The
// caller's identity always comes from the context; nothing is written before validation
// and ownership checks pass.
type ExpenseService struct {
	repo   ExpenseRepository
	notify notifier
	newID  func() string
}

func NewExpenseService(repo ExpenseRepository, events EventPublisher, invalidator StatsInvalidator) *ExpenseService {
	return &ExpenseService{
		repo:   repo,
		notify: notifier{events: events, invalidator: invalidator},
		newID:  uuid.NewString,
	}
}

func (s *ExpenseService) Create(ctx context.Context, in NewExpense) (core.Expense, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		ID:          s.newID(),
		UserID:      userID,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	logFor(ctx).InfoContext(ctx, "Expense created",
		"user_id", userID,
		"expense_id", created.ID,
		"amount_cents", created.Amount.Cents,
		"category", created.Category)

	s.notify.changed(ctx, userID, expenseEvent(amqp.ExpenseCreated, created))
	return created, nil
}

// Update applies the non-nil fields of patch to an expense owned by the caller. A malformed
// patch is rejected before the expense is looked up.
func (s *ExpenseService) Update(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	if _, err := auth.UserID(ctx); err != nil {
		return core.Expense{}, err
	}
	if err := patch.Validate(); err != nil {
		return core.Expense{}, err
	}

	current, err := s.owned(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}

	next := current.Apply(patch)
	if err := next.Validate(); err != nil {
		return core.Expense{}, err
	}
	if patch.Empty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	events := []*amqp.LedgerEvent{expenseEvent(amqp.ExpenseUpdated, updated)}
	if current.Date.Year() != updated.Date.Year() || current.Date.Month() != updated.Date.Month() {
		events = append(events, expenseEvent(amqp.ExpenseUpdated, current))
	}
	s.notify.changed(ctx, updated.UserID, events...)
	return updated, nil
}

// Delete permanently removes an expense owned by the caller.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	current, err := s.owned(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, current.ID, current.UserID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	logFor(ctx).InfoContext(ctx, "Expense deleted", "user_id", current.UserID, "expense_id", current.ID)
	s.notify.changed(ctx, current.UserID, expenseEvent(amqp.ExpenseDeleted, current))
	return nil
}

// List returns the caller's expenses of one month, newest first.
func (s *ExpenseService) List(ctx context.Context, year, month int) ([]core.Expense, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	out, err := s.repo.ListByRange(ctx, userID, core.MonthRange(year, month))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

// owned loads id and checks it belongs to the caller. A missing record is reported as
// not found before ownership is considered.
func (s *ExpenseService) owned(ctx context.Context, id string) (core.Expense, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return core.Expense{}, err
	}
	if strings.TrimSpace(id) == "" {
		return core.Expense{}, core.ErrNotFound
	}

	e, err := s.repo.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("load expense: %w", err)
	}
	if e.UserID != userID {
		logFor(ctx).WarnContext(ctx, "Expense access denied", "user_id", userID, "expense_id", id)
		return core.Expense{}, core.ErrForbidden
	}
	return e, nil
}

func expenseEvent(t amqp.EventType, e core.Expense) *amqp.LedgerEvent {
	ev := amqp.NewLedgerEvent(t, e.UserID, e.Date.Year(), e.Date.Month())
	ev.ExpenseID = e.ID
	return ev
}
