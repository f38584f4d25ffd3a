// Package stats turns expense and income sums into reporting buckets.
package stats

import (
	"math"
	"sort"

	"tally/internal/core"
)

// BuildCategoryStats orders categories by total, largest first, and computes each share of the
// grand total rounded to two decimals. Only categories present in sums appear; a category
// whose expenses are all zero is reported with a zero total.
func BuildCategoryStats(sums map[core.Category]int64) []core.CategoryStat {
	var grand int64
	for _, total := range sums {
		grand += total
	}

	out := make([]core.CategoryStat, 0, len(sums))
	for category, total := range sums {
		out = append(out, core.CategoryStat{
			Category:   category,
			TotalCents: total,
			Percentage: percentage(total, grand),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCents != out[j].TotalCents {
			return out[i].TotalCents > out[j].TotalCents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func percentage(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}

// BuildDailyStats yields one entry per day of the month. Income is not tracked per day, so
// the month's income appears unchanged on every entry.
func BuildDailyStats(year, month int, byDate map[core.Date]int64, income int64) []core.DayStat {
	days := core.DaysInMonth(year, month)
	byDay := make([]int64, days+1)
	for d, total := range byDate {
		if d.Year() != year || d.Month() != month {
			continue
		}
		byDay[d.Day()] += total
	}

	out := make([]core.DayStat, days)
	for day := 1; day <= days; day++ {
		out[day-1] = core.DayStat{Day: day, TotalExpenses: byDay[day], Income: income}
	}
	return out
}

// BuildMonthlyStats always yields twelve entries, January first.
func BuildMonthlyStats(expenses, income map[int]int64) []core.MonthStat {
	out := make([]core.MonthStat, 12)
	for m := 1; m <= 12; m++ {
		out[m-1] = core.MonthStat{
			Month:         m,
			TotalExpenses: expenses[m],
			Income:        income[m],
			Balance:       income[m] - expenses[m],
		}
	}
	return out
}

// BuildYearlyStats yields only the years present in either input, oldest first.
func BuildYearlyStats(expenses, income map[int]int64) []core.YearStat {
	years := make(map[int]struct{}, len(expenses)+len(income))
	for y := range expenses {
		years[y] = struct{}{}
	}
	for y := range income {
		years[y] = struct{}{}
	}

	out := make([]core.YearStat, 0, len(years))
	for y := range years {
		out = append(out, core.YearStat{
			Year:          y,
			TotalExpenses: expenses[y],
			TotalIncome:   income[y],
			Balance:       income[y] - expenses[y],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
