package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Amount:   Money{Cents: 12500},
		Category: CategoryGroceries,
		Date:     NewDate(2025, 1, 5),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zero := valid
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be allowed: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Expense)
		field  string
	}{
		{"negative amount", func(e *Expense) { e.Amount = Money{Cents: -1} }, "amountCents"},
		{"unknown category", func(e *Expense) { e.Category = "Pets" }, "category"},
		{"missing date", func(e *Expense) { e.Date = Date{} }, "date"},
		{"long description", func(e *Expense) { e.Description = strings.Repeat("x", MaxDescriptionLength+1) }, "description"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := valid
			tc.mutate(&e)
			err := e.Validate()
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Fields[tc.field] == "" {
				t.Fatalf("expected error on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestExpenseApply(t *testing.T) {
	e := Expense{ID: "a", UserID: "u1", Amount: Money{Cents: 100}, Category: CategoryOther, Date: NewDate(2025, 1, 1)}
	amount := Money{Cents: 250}
	desc := "  coffee "
	got := e.Apply(ExpensePatch{Amount: &amount, Description: &desc})
	if got.Amount.Cents != 250 || got.Description != "coffee" {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.Category != CategoryOther || got.Date != e.Date || got.UserID != "u1" {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if !(ExpensePatch{}).Empty() {
		t.Fatalf("zero patch should be empty")
	}
}

func TestExpensePatchValidate(t *testing.T) {
	negative := Money{Cents: -5}
	bad := Category("Pets")
	long := strings.Repeat("x", MaxDescriptionLength+1)
	err := ExpensePatch{Amount: &negative, Category: &bad, Description: &long}.Validate()

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"amountCents", "category", "description"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("missing field %q in %v", field, verr.Fields)
		}
	}

	zero := Money{}
	if err := (ExpensePatch{Amount: &zero}).Validate(); err != nil {
		t.Fatalf("zero amount is valid: %v", err)
	}
	if err := (ExpensePatch{}).Validate(); err != nil {
		t.Fatalf("empty patch is valid: %v", err)
	}
}

func TestMonthlyIncomeValidate(t *testing.T) {
	if err := (MonthlyIncome{Year: 2025, Month: 1, Amount: Money{Cents: 500000}}).Validate(); err != nil {
		t.Fatal(err)
	}
	for _, month := range []int{0, 13} {
		err := MonthlyIncome{Year: 2025, Month: month}.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Fields["month"] == "" {
			t.Fatalf("month %d: expected month error, got %v", month, err)
		}
	}
}

func TestParseCategory(t *testing.T) {
	if len(Categories()) != 11 {
		t.Fatalf("expected 11 categories, got %d", len(Categories()))
	}
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		if err != nil || got != c {
			t.Fatalf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	if _, err := ParseCategory("groceries"); !errors.Is(err, ErrValidation) {
		t.Fatalf("categories are case sensitive, got %v", err)
	}
}

func TestCategoryDisplayTable(t *testing.T) {
	table := CategoryDisplayTable()
	if len(table) != len(Categories()) {
		t.Fatalf("table has %d rows", len(table))
	}
	for _, row := range table {
		if !strings.HasPrefix(row.Color, "#") || row.Label == "" {
			t.Fatalf("incomplete display row %+v", row)
		}
	}
	if table[len(table)-1].Value != CategoryOther {
		t.Fatalf("Other should be listed last")
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2025-01-05"`), &d); err != nil {
		t.Fatal(err)
	}
	if d != NewDate(2025, 1, 5) {
		t.Fatalf("got %v", d)
	}
	if err := json.Unmarshal([]byte(`"2025-01-05T18:30:00Z"`), &d); err != nil || d != NewDate(2025, 1, 5) {
		t.Fatalf("timestamp not truncated: %v, %v", d, err)
	}
	b, _ := json.Marshal(NewDate(2024, 2, 29))
	if string(b) != `"2024-02-29"` {
		t.Fatalf("marshal = %s", b)
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &d); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestStorageError(t *testing.T) {
	cause := fmt.Errorf("disk I/O error")
	err := WrapStorage("insert expense", cause)
	if !errors.Is(err, ErrStorage) || !errors.Is(err, cause) {
		t.Fatalf("wrapped error lost identity: %v", err)
	}
	if WrapStorage("get", ErrNotFound) != ErrNotFound {
		t.Fatalf("not found must pass through")
	}
	if WrapStorage("noop", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}
