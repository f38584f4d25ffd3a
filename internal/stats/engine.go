package stats

import (
	"context"
	"fmt"

	"tally/internal/core"

	"golang.org/x/sync/errgroup"
)

// ExpenseSums is the read side of the expense repository the engine needs.
type ExpenseSums interface {
	SumByCategory(ctx context.Context, userID string, rng *core.DateRange) (map[core.Category]int64, error)
	SumByDate(ctx context.Context, userID string, rng core.DateRange) (map[core.Date]int64, error)
	SumByMonth(ctx context.Context, userID string, year int) (map[int]int64, error)
	SumByYear(ctx context.Context, userID string) (map[int]int64, error)
}

// IncomeReader is the read side of the income repository the engine needs.
type IncomeReader interface {
	Get(ctx context.Context, userID string, year, month int) (*core.MonthlyIncome, error)
	ListByYear(ctx context.Context, userID string, year int) ([]core.MonthlyIncome, error)
	SumAllByYear(ctx context.Context, userID string) (map[int]int64, error)
}

// Engine reads repository sums and shapes them into breakdowns. Expense and income reads of
// one breakdown run concurrently and are not taken from a common snapshot.
type Engine struct {
	expenses ExpenseSums
	incomes  IncomeReader
}

func NewEngine(expenses ExpenseSums, incomes IncomeReader) *Engine {
	return &Engine{expenses: expenses, incomes: incomes}
}

// CategoryBreakdown covers rng, or all time when rng is nil.
func (e *Engine) CategoryBreakdown(ctx context.Context, userID string, rng *core.DateRange) ([]core.CategoryStat, error) {
	sums, err := e.expenses.SumByCategory(ctx, userID, rng)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	return BuildCategoryStats(sums), nil
}

func (e *Engine) DailyBreakdown(ctx context.Context, userID string, year, month int) ([]core.DayStat, error) {
	if err := core.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}

	var (
		byDate map[core.Date]int64
		income *core.MonthlyIncome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byDate, err = e.expenses.SumByDate(gctx, userID, core.MonthRange(year, month))
		return err
	})
	g.Go(func() error {
		var err error
		income, err = e.incomes.Get(gctx, userID, year, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("daily breakdown: %w", err)
	}

	var incomeCents int64
	if income != nil {
		incomeCents = income.Amount.Cents
	}
	return BuildDailyStats(year, month, byDate, incomeCents), nil
}

func (e *Engine) MonthlyBreakdown(ctx context.Context, userID string, year int) ([]core.MonthStat, error) {
	if year < core.MinYear || year > core.MaxYear {
		return nil, core.NewValidationError("year", fmt.Sprintf("must be between %d and %d", core.MinYear, core.MaxYear))
	}

	var (
		expenses map[int]int64
		incomes  []core.MonthlyIncome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = e.expenses.SumByMonth(gctx, userID, year)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = e.incomes.ListByYear(gctx, userID, year)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("monthly breakdown: %w", err)
	}

	byMonth := make(map[int]int64, len(incomes))
	for _, mi := range incomes {
		byMonth[mi.Month] += mi.Amount.Cents
	}
	return BuildMonthlyStats(expenses, byMonth), nil
}

func (e *Engine) YearlyBreakdown(ctx context.Context, userID string) ([]core.YearStat, error) {
	var expenses, incomes map[int]int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = e.expenses.SumByYear(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = e.incomes.SumAllByYear(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("yearly breakdown: %w", err)
	}
	return BuildYearlyStats(expenses, incomes), nil
}
