package services

import (
	"context"
	"fmt"

	"tally/internal/auth"
	"tally/internal/core"
	"tally/internal/stats"
)

// ReportService scopes every breakdown to the caller and validates its period.
type ReportService struct {
	reporter stats.Reporter
}

func NewReportService(reporter stats.Reporter) *ReportService {
	return &ReportService{reporter: reporter}
}

// Categories takes an optional year and month; zero means not given.
func (s *ReportService) Categories(ctx context.Context, year, month int) ([]core.CategoryStat, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return nil, err
	}
	rng, err := core.CategoryWindow(year, month)
	if err != nil {
		return nil, err
	}
	return s.reporter.CategoryBreakdown(ctx, userID, rng)
}

func (s *ReportService) Daily(ctx context.Context, year, month int) ([]core.DayStat, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	return s.reporter.DailyBreakdown(ctx, userID, year, month)
}

func (s *ReportService) Monthly(ctx context.Context, year int) ([]core.MonthStat, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if year < core.MinYear || year > core.MaxYear {
		return nil, core.NewValidationError("year", fmt.Sprintf("must be between %d and %d", core.MinYear, core.MaxYear))
	}
	return s.reporter.MonthlyBreakdown(ctx, userID, year)
}

func (s *ReportService) Yearly(ctx context.Context) ([]core.YearStat, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.reporter.YearlyBreakdown(ctx, userID)
}
