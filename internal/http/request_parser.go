package http

import (
	"errors"
	"strings"
	"unicode"

	"tally/internal/core"
	"tally/internal/services"
)

// expenseRequest is the body of POST and PATCH /api/expenses. Absent fields stay nil.
// Amount may be given as integer cents or as a decimal dollar string; cents win when
// both are present.
type expenseRequest struct {
	AmountCents *int64  `json:"amountCents"`
	Amount      *string `json:"amount"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
}

type incomeRequest struct {
	Year        *int   `json:"year"`
	Month       *int   `json:"month"`
	AmountCents *int64 `json:"amountCents"`
}

// toPatch converts the fields present in the request, recording malformed ones in verr.
func (req expenseRequest) toPatch(verr *core.ValidationError) core.ExpensePatch {
	var p core.ExpensePatch

	switch {
	case req.AmountCents != nil:
		p.Amount = &core.Money{Cents: *req.AmountCents}
	case req.Amount != nil:
		cents, err := core.ParseDecimalToCents(*req.Amount)
		if err != nil {
			verr.Add("amount", "must be a non-negative decimal with at most two fraction digits")
		} else {
			p.Amount = &core.Money{Cents: cents}
		}
	}

	if req.Category != nil {
		c, err := core.ParseCategory(strings.TrimSpace(*req.Category))
		if err != nil {
			var cerr *core.ValidationError
			if errors.As(err, &cerr) {
				for field, reason := range cerr.Fields {
					verr.Add(field, reason)
				}
			}
		} else {
			p.Category = &c
		}
	}

	if req.Description != nil {
		d := sanitizeInput(*req.Description)
		p.Description = &d
	}

	if req.Date != nil {
		d, err := core.ParseDate(strings.TrimSpace(*req.Date))
		if err != nil {
			verr.Add("date", "must be a date in YYYY-MM-DD format")
		} else {
			p.Date = &d
		}
	}
	return p
}

// toNewExpense requires amount, category and date on top of toPatch's checks.
func (req expenseRequest) toNewExpense() (services.NewExpense, error) {
	verr := &core.ValidationError{}
	p := req.toPatch(verr)
	if req.AmountCents == nil && req.Amount == nil {
		verr.Add("amountCents", "is required")
	}
	if req.Category == nil {
		verr.Add("category", "is required")
	}
	if req.Date == nil {
		verr.Add("date", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return services.NewExpense{}, err
	}

	in := services.NewExpense{
		Amount:   *p.Amount,
		Category: *p.Category,
		Date:     *p.Date,
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	return in, nil
}

func (req incomeRequest) validate() error {
	verr := &core.ValidationError{}
	if req.Year == nil {
		verr.Add("year", "is required")
	}
	if req.Month == nil {
		verr.Add("month", "is required")
	}
	if req.AmountCents == nil {
		verr.Add("amountCents", "is required")
	}
	return verr.OrNil()
}

// sanitizeInput trims whitespace and drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
