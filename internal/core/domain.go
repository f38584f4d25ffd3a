package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// MaxDescriptionLength bounds the free-text note stored with an expense.
const MaxDescriptionLength = 500

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID          string    `json:"id"`
		UserID      string    `json:"userId"`
		Amount      Money     `json:"amountCents"`
		Category    Category  `json:"category"`
		Description string    `json:"description,omitempty"`
		Date        Date      `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// ExpensePatch carries the fields of a partial update. Nil fields are left untouched.
	ExpensePatch struct {
		Amount      *Money
		Category    *Category
		Description *string
		Date        *Date
	}

	MonthlyIncome struct {
		UserID    string    `json:"userId"`
		Year      int       `json:"year"`
		Month     int       `json:"month"`
		Amount    Money     `json:"amountCents"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate reads a YYYY-MM-DD string. A full RFC 3339 timestamp is accepted as well and
// truncated to its calendar day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return DateOf(t), nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Cents)
}

func (m *Money) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &m.Cents)
}

// Validate checks the fields a caller controls and reports every offending field.
func (e Expense) Validate() error {
	verr := &ValidationError{}
	if err := e.Amount.Validate(); err != nil {
		verr.Add("amountCents", "must be a non-negative integer")
	}
	if !e.Category.Valid() {
		verr.Add("category", "must be one of the known categories")
	}
	if e.Date.IsZero() {
		verr.Add("date", "is required")
	}
	if len(e.Description) > MaxDescriptionLength {
		verr.Add("description", fmt.Sprintf("must be at most %d characters", MaxDescriptionLength))
	}
	return verr.OrNil()
}

// Apply returns a copy of e with the non-nil patch fields applied.
func (e Expense) Apply(p ExpensePatch) Expense {
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Description != nil {
		e.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	return e
}

// Empty reports whether the patch changes nothing.
func (p ExpensePatch) Empty() bool {
	return p.Amount == nil && p.Category == nil && p.Description == nil && p.Date == nil
}

// Validate checks the fields present in the patch without the record they will be applied to.
func (p ExpensePatch) Validate() error {
	verr := &ValidationError{}
	if p.Amount != nil && p.Amount.Validate() != nil {
		verr.Add("amountCents", "must be a non-negative integer")
	}
	if p.Category != nil && !p.Category.Valid() {
		verr.Add("category", "must be one of the known categories")
	}
	if p.Date != nil && p.Date.IsZero() {
		verr.Add("date", "is required")
	}
	if p.Description != nil && len(strings.TrimSpace(*p.Description)) > MaxDescriptionLength {
		verr.Add("description", fmt.Sprintf("must be at most %d characters", MaxDescriptionLength))
	}
	return verr.OrNil()
}

func (mi MonthlyIncome) Validate() error {
	verr := &ValidationError{}
	if mi.Year < MinYear || mi.Year > MaxYear {
		verr.Add("year", fmt.Sprintf("must be between %d and %d", MinYear, MaxYear))
	}
	if mi.Month < 1 || mi.Month > 12 {
		verr.Add("month", "must be between 1 and 12")
	}
	if err := mi.Amount.Validate(); err != nil {
		verr.Add("amountCents", "must be a non-negative integer")
	}
	return verr.OrNil()
}
