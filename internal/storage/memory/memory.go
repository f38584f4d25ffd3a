// Package memory keeps expenses and income in process memory. It backs the
// "memory" data backend and the tests of the packages above storage.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"tally/internal/core"
)

type incomeKey struct {
	userID string
	year   int
	month  int
}

type Store struct {
	mu       sync.RWMutex
	expenses map[string]core.Expense
	incomes  map[incomeKey]core.MonthlyIncome
	now      func() time.Time
}

func New() *Store {
	return &Store{
		expenses: make(map[string]core.Expense),
		incomes:  make(map[incomeKey]core.MonthlyIncome),
		now:      time.Now,
	}
}

// Expenses returns the expense repository view of the store.
func (s *Store) Expenses() *Expenses { return &Expenses{s: s} }

// Incomes returns the income repository view of the store.
func (s *Store) Incomes() *Incomes { return &Incomes{s: s} }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

type Expenses struct {
	s *Store
}

func (r *Expenses) Create(_ context.Context, e core.Expense) (core.Expense, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ts := r.s.now().UTC()
	e.CreatedAt, e.UpdatedAt = ts, ts
	r.s.expenses[e.ID] = e
	return e, nil
}

func (r *Expenses) Get(_ context.Context, id string) (core.Expense, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.expenses[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

func (r *Expenses) Update(_ context.Context, e core.Expense) (core.Expense, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.expenses[e.ID]
	if !ok || cur.UserID != e.UserID {
		return core.Expense{}, core.ErrNotFound
	}
	e.CreatedAt = cur.CreatedAt
	e.UpdatedAt = r.s.now().UTC()
	r.s.expenses[e.ID] = e
	return e, nil
}

func (r *Expenses) Delete(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.expenses[id]
	if !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(r.s.expenses, id)
	return nil
}

func (r *Expenses) ListByRange(_ context.Context, userID string, rng core.DateRange) ([]core.Expense, error) {
	out := []core.Expense{}
	r.each(userID, func(e core.Expense) {
		if rng.Contains(e.Date) {
			out = append(out, e)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Expenses) SumByCategory(_ context.Context, userID string, rng *core.DateRange) (map[core.Category]int64, error) {
	out := make(map[core.Category]int64)
	r.each(userID, func(e core.Expense) {
		if rng == nil || rng.Contains(e.Date) {
			out[e.Category] += e.Amount.Cents
		}
	})
	return out, nil
}

func (r *Expenses) SumByDate(_ context.Context, userID string, rng core.DateRange) (map[core.Date]int64, error) {
	out := make(map[core.Date]int64)
	r.each(userID, func(e core.Expense) {
		if rng.Contains(e.Date) {
			out[e.Date] += e.Amount.Cents
		}
	})
	return out, nil
}

func (r *Expenses) SumByMonth(_ context.Context, userID string, year int) (map[int]int64, error) {
	out := make(map[int]int64)
	r.each(userID, func(e core.Expense) {
		if e.Date.Year() == year {
			out[e.Date.Month()] += e.Amount.Cents
		}
	})
	return out, nil
}

func (r *Expenses) SumByYear(_ context.Context, userID string) (map[int]int64, error) {
	out := make(map[int]int64)
	r.each(userID, func(e core.Expense) {
		out[e.Date.Year()] += e.Amount.Cents
	})
	return out, nil
}

func (r *Expenses) each(userID string, fn func(core.Expense)) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.expenses {
		if e.UserID == userID {
			fn(e)
		}
	}
}

type Incomes struct {
	s *Store
}

func (r *Incomes) Upsert(_ context.Context, mi core.MonthlyIncome) (core.MonthlyIncome, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := incomeKey{mi.UserID, mi.Year, mi.Month}
	ts := r.s.now().UTC()
	if cur, ok := r.s.incomes[key]; ok {
		mi.CreatedAt = cur.CreatedAt
	} else {
		mi.CreatedAt = ts
	}
	mi.UpdatedAt = ts
	r.s.incomes[key] = mi
	return mi, nil
}

func (r *Incomes) Get(_ context.Context, userID string, year, month int) (*core.MonthlyIncome, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	mi, ok := r.s.incomes[incomeKey{userID, year, month}]
	if !ok {
		return nil, nil
	}
	return &mi, nil
}

func (r *Incomes) ListByYear(_ context.Context, userID string, year int) ([]core.MonthlyIncome, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []core.MonthlyIncome{}
	for k, mi := range r.s.incomes {
		if k.userID == userID && k.year == year {
			out = append(out, mi)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (r *Incomes) SumAllByYear(_ context.Context, userID string) (map[int]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[int]int64)
	for k, mi := range r.s.incomes {
		if k.userID == userID {
			out[k.year] += mi.Amount.Cents
		}
	}
	return out, nil
}
