package core

import (
	"fmt"
	"time"
)

// Years outside this window are rejected by the API.
const (
	MinYear = 2000
	MaxYear = 2100
)

// endOfDay is the offset of the last representable instant of a day, millisecond precision.
const endOfDay = 24*time.Hour - time.Millisecond

// MonthBounds returns the first and the last instant of the month, both inclusive.
func MonthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1).Add(endOfDay)
	return start, end
}

// YearBounds returns Jan 1 00:00:00.000 and Dec 31 23:59:59.999 of year.
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).Add(endOfDay)
	return start, end
}

// DaysInMonth is leap-year aware.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start Date
	End   Date
}

func MonthRange(year, month int) DateRange {
	start, end := MonthBounds(year, month)
	return DateRange{Start: DateOf(start), End: DateOf(end)}
}

func YearRange(year int) DateRange {
	start, end := YearBounds(year)
	return DateRange{Start: DateOf(start), End: DateOf(end)}
}

func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start, r.End)
}

// CategoryWindow resolves the optional year/month filter of a category breakdown.
// Zero means "not given": no year gives all time (nil), a year alone gives the whole year.
func CategoryWindow(year, month int) (*DateRange, error) {
	verr := &ValidationError{}
	if year != 0 && (year < MinYear || year > MaxYear) {
		verr.Add("year", fmt.Sprintf("must be between %d and %d", MinYear, MaxYear))
	}
	if month != 0 && (month < 1 || month > 12) {
		verr.Add("month", "must be between 1 and 12")
	}
	if month != 0 && year == 0 {
		verr.Add("year", "is required when month is given")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	switch {
	case year == 0:
		return nil, nil
	case month == 0:
		r := YearRange(year)
		return &r, nil
	default:
		r := MonthRange(year, month)
		return &r, nil
	}
}

// ValidateYearMonth checks a required year/month pair.
func ValidateYearMonth(year, month int) error {
	verr := &ValidationError{}
	if year < MinYear || year > MaxYear {
		verr.Add("year", fmt.Sprintf("must be between %d and %d", MinYear, MaxYear))
	}
	if month < 1 || month > 12 {
		verr.Add("month", "must be between 1 and 12")
	}
	return verr.OrNil()
}
