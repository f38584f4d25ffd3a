package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tally/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SQLiteStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *SQLiteStoreSuite) SetupTest() {
	s.ctx = context.Background()
	path := filepath.Join(s.T().TempDir(), "data", "tally.db")
	store, err := Open(s.ctx, DialectSQLite, path)
	require.NoError(s.T(), err)
	s.store = store
}

func (s *SQLiteStoreSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *SQLiteStoreSuite) createExpense(id, user string, cents int64, cat core.Category, d core.Date) core.Expense {
	e, err := s.store.Expenses().Create(s.ctx, core.Expense{
		ID:       id,
		UserID:   user,
		Amount:   core.Money{Cents: cents},
		Category: cat,
		Date:     d,
	})
	s.Require().NoError(err)
	return e
}

func (s *SQLiteStoreSuite) TestCreateThenGetRoundTrip() {
	created := s.createExpense("e1", "u1", 12500, core.CategoryGroceries, core.NewDate(2025, 1, 5))

	got, err := s.store.Expenses().Get(s.ctx, "e1")
	s.Require().NoError(err)
	s.Equal(created.Amount, got.Amount)
	s.Equal(core.CategoryGroceries, got.Category)
	s.Equal(core.NewDate(2025, 1, 5), got.Date)
	s.Equal("u1", got.UserID)
	s.WithinDuration(created.CreatedAt, got.CreatedAt, time.Millisecond)
}

func (s *SQLiteStoreSuite) TestGetMissing() {
	_, err := s.store.Expenses().Get(s.ctx, "nope")
	s.ErrorIs(err, core.ErrNotFound)
}

func (s *SQLiteStoreSuite) TestListByRangeNewestFirst() {
	s.createExpense("a", "u1", 100, core.CategoryOther, core.NewDate(2025, 1, 5))
	s.createExpense("b", "u1", 200, core.CategoryOther, core.NewDate(2025, 1, 31))
	s.createExpense("c", "u1", 300, core.CategoryOther, core.NewDate(2025, 2, 1))
	s.createExpense("d", "u2", 400, core.CategoryOther, core.NewDate(2025, 1, 20))

	list, err := s.store.Expenses().ListByRange(s.ctx, "u1", core.MonthRange(2025, 1))
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("b", list[0].ID)
	s.Equal("a", list[1].ID)
}

func (s *SQLiteStoreSuite) TestUpdateAndDeleteScopedToOwner() {
	e := s.createExpense("a", "u1", 100, core.CategoryOther, core.NewDate(2025, 1, 5))

	e.Amount = core.Money{Cents: 250}
	e.Description = "lunch"
	updated, err := s.store.Expenses().Update(s.ctx, e)
	s.Require().NoError(err)
	s.Equal(int64(250), updated.Amount.Cents)

	foreign := e
	foreign.UserID = "u2"
	_, err = s.store.Expenses().Update(s.ctx, foreign)
	s.ErrorIs(err, core.ErrNotFound)

	s.ErrorIs(s.store.Expenses().Delete(s.ctx, "a", "u2"), core.ErrNotFound)
	s.NoError(s.store.Expenses().Delete(s.ctx, "a", "u1"))
	s.ErrorIs(s.store.Expenses().Delete(s.ctx, "a", "u1"), core.ErrNotFound)
}

func (s *SQLiteStoreSuite) TestAggregations() {
	s.createExpense("a", "u1", 12500, core.CategoryGroceries, core.NewDate(2025, 1, 5))
	s.createExpense("b", "u1", 5000, core.CategoryUtilities, core.NewDate(2025, 1, 10))
	s.createExpense("c", "u1", 1000, core.CategoryGroceries, core.NewDate(2025, 1, 10))
	s.createExpense("d", "u1", 700, core.CategoryTravel, core.NewDate(2024, 6, 1))
	s.createExpense("e", "u2", 9999, core.CategoryTravel, core.NewDate(2025, 1, 10))

	repo := s.store.Expenses()

	all, err := repo.SumByCategory(s.ctx, "u1", nil)
	s.Require().NoError(err)
	s.Equal(map[core.Category]int64{
		core.CategoryGroceries: 13500,
		core.CategoryUtilities: 5000,
		core.CategoryTravel:    700,
	}, all)

	jan := core.MonthRange(2025, 1)
	month, err := repo.SumByCategory(s.ctx, "u1", &jan)
	s.Require().NoError(err)
	s.NotContains(month, core.CategoryTravel)

	byDate, err := repo.SumByDate(s.ctx, "u1", jan)
	s.Require().NoError(err)
	s.Equal(int64(12500), byDate[core.NewDate(2025, 1, 5)])
	s.Equal(int64(6000), byDate[core.NewDate(2025, 1, 10)])

	byMonth, err := repo.SumByMonth(s.ctx, "u1", 2025)
	s.Require().NoError(err)
	s.Equal(map[int]int64{1: 18500}, byMonth)

	byYear, err := repo.SumByYear(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(map[int]int64{2024: 700, 2025: 18500}, byYear)
}

func (s *SQLiteStoreSuite) TestIncomeUpsertIsIdempotentOnKey() {
	inc := s.store.Incomes()

	first, err := inc.Upsert(s.ctx, core.MonthlyIncome{UserID: "u1", Year: 2025, Month: 1, Amount: core.Money{Cents: 400000}})
	s.Require().NoError(err)
	second, err := inc.Upsert(s.ctx, core.MonthlyIncome{UserID: "u1", Year: 2025, Month: 1, Amount: core.Money{Cents: 500000}})
	s.Require().NoError(err)
	s.Equal(int64(500000), second.Amount.Cents)
	s.WithinDuration(first.CreatedAt, second.CreatedAt, time.Millisecond)

	list, err := inc.ListByYear(s.ctx, "u1", 2025)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(int64(500000), list[0].Amount.Cents)

	missing, err := inc.Get(s.ctx, "u1", 2025, 2)
	s.NoError(err)
	s.Nil(missing)

	_, err = inc.Upsert(s.ctx, core.MonthlyIncome{UserID: "u1", Year: 2024, Month: 12, Amount: core.Money{Cents: 100}})
	s.Require().NoError(err)
	sums, err := inc.SumAllByYear(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(map[int]int64{2024: 100, 2025: 500000}, sums)
}

func (s *SQLiteStoreSuite) TestConcurrentUpsertsLeaveOneRow() {
	inc := s.store.Incomes()
	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(cents int64) {
			defer wg.Done()
			_, err := inc.Upsert(s.ctx, core.MonthlyIncome{UserID: "u1", Year: 2025, Month: 3, Amount: core.Money{Cents: cents}})
			errs <- err
		}(int64(i * 100))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	list, err := inc.ListByYear(s.ctx, "u1", 2025)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func TestOpenUnknownDialect(t *testing.T) {
	_, err := Open(context.Background(), Dialect("oracle"), "x")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := dialects[DialectPostgres]
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))
	lite := dialects[DialectSQLite]
	assert.Equal(t, "a = ? AND b = ?", lite.rebind("a = ? AND b = ?"))
}

func TestSQLDateScan(t *testing.T) {
	var d sqlDate
	require.NoError(t, d.Scan("2024-02-29"))
	assert.Equal(t, core.NewDate(2024, 2, 29), d.Date)
	require.NoError(t, d.Scan(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, core.NewDate(2025, 1, 5), d.Date)
	assert.Error(t, d.Scan(42))
}
