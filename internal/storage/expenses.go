package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"tally/internal/core"
)

const expenseColumns = "id, user_id, amount_cents, category, description, date, created_at, updated_at"

type ExpenseRepository struct {
	store *Store
}

func (r *ExpenseRepository) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	ts := r.store.timestamp()
	e.CreatedAt, e.UpdatedAt = ts, ts

	q := r.store.def.rebind(`INSERT INTO expenses (` + expenseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.store.db.ExecContext(ctx, q,
		e.ID, e.UserID, e.Amount.Cents, string(e.Category), e.Description,
		r.store.def.dateArg(e.Date), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return core.Expense{}, core.WrapStorage("insert expense", err)
	}

	slog.DebugContext(ctx, "Expense stored",
		"expense_id", e.ID,
		"user_id", e.UserID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)
	return e, nil
}

func (r *ExpenseRepository) Get(ctx context.Context, id string) (core.Expense, error) {
	q := r.store.def.rebind(`SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`)
	e, err := scanExpense(r.store.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, core.WrapStorage("get expense", err)
	}
	return e, nil
}

// Update overwrites the mutable fields of the expense owned by e.UserID.
func (r *ExpenseRepository) Update(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.UpdatedAt = r.store.timestamp()

	q := r.store.def.rebind(`UPDATE expenses
		SET amount_cents = ?, category = ?, description = ?, date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)
	res, err := r.store.db.ExecContext(ctx, q,
		e.Amount.Cents, string(e.Category), e.Description, r.store.def.dateArg(e.Date), e.UpdatedAt,
		e.ID, e.UserID)
	if err != nil {
		return core.Expense{}, core.WrapStorage("update expense", err)
	}
	if err := requireAffected(res); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id, userID string) error {
	q := r.store.def.rebind(`DELETE FROM expenses WHERE id = ? AND user_id = ?`)
	res, err := r.store.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return core.WrapStorage("delete expense", err)
	}
	return requireAffected(res)
}

// ListByRange returns the user's expenses inside rng, newest date first.
func (r *ExpenseRepository) ListByRange(ctx context.Context, userID string, rng core.DateRange) ([]core.Expense, error) {
	q := r.store.def.rebind(`SELECT ` + expenseColumns + ` FROM expenses
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC, created_at DESC, id`)
	rows, err := r.store.db.QueryContext(ctx, q, userID,
		r.store.def.dateArg(rng.Start), r.store.def.dateArg(rng.End))
	if err != nil {
		return nil, core.WrapStorage("list expenses", err)
	}
	defer rows.Close()

	out := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, core.WrapStorage("scan expense", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapStorage("list expenses", err)
	}
	return out, nil
}

// SumByCategory totals the user's expenses per category; a nil range means all time.
func (r *ExpenseRepository) SumByCategory(ctx context.Context, userID string, rng *core.DateRange) (map[core.Category]int64, error) {
	query := `SELECT category, CAST(SUM(amount_cents) AS BIGINT) FROM expenses WHERE user_id = ?`
	args := []any{userID}
	if rng != nil {
		query += ` AND date >= ? AND date <= ?`
		args = append(args, r.store.def.dateArg(rng.Start), r.store.def.dateArg(rng.End))
	}
	query += ` GROUP BY category`

	rows, err := r.store.db.QueryContext(ctx, r.store.def.rebind(query), args...)
	if err != nil {
		return nil, core.WrapStorage("sum by category", err)
	}
	defer rows.Close()

	out := make(map[core.Category]int64)
	for rows.Next() {
		var (
			category string
			total    int64
		)
		if err := rows.Scan(&category, &total); err != nil {
			return nil, core.WrapStorage("scan category sum", err)
		}
		out[core.Category(category)] = total
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapStorage("sum by category", err)
	}
	return out, nil
}

func (r *ExpenseRepository) SumByDate(ctx context.Context, userID string, rng core.DateRange) (map[core.Date]int64, error) {
	q := r.store.def.rebind(`SELECT date, CAST(SUM(amount_cents) AS BIGINT) FROM expenses
		WHERE user_id = ? AND date >= ? AND date <= ?
		GROUP BY date`)
	rows, err := r.store.db.QueryContext(ctx, q, userID,
		r.store.def.dateArg(rng.Start), r.store.def.dateArg(rng.End))
	if err != nil {
		return nil, core.WrapStorage("sum by date", err)
	}
	defer rows.Close()

	out := make(map[core.Date]int64)
	for rows.Next() {
		var (
			d     sqlDate
			total int64
		)
		if err := rows.Scan(&d, &total); err != nil {
			return nil, core.WrapStorage("scan date sum", err)
		}
		out[d.Date] = total
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapStorage("sum by date", err)
	}
	return out, nil
}

// SumByMonth totals the user's expenses of year per month number.
func (r *ExpenseRepository) SumByMonth(ctx context.Context, userID string, year int) (map[int]int64, error) {
	rng := core.YearRange(year)
	q := r.store.def.rebind(`SELECT ` + r.store.def.monthExpr + ` AS m, CAST(SUM(amount_cents) AS BIGINT) FROM expenses
		WHERE user_id = ? AND date >= ? AND date <= ?
		GROUP BY m`)
	return r.sumByKey(ctx, "sum by month", q, userID,
		r.store.def.dateArg(rng.Start), r.store.def.dateArg(rng.End))
}

// SumByYear totals the user's expenses per calendar year.
func (r *ExpenseRepository) SumByYear(ctx context.Context, userID string) (map[int]int64, error) {
	q := r.store.def.rebind(`SELECT ` + r.store.def.yearExpr + ` AS y, CAST(SUM(amount_cents) AS BIGINT) FROM expenses
		WHERE user_id = ?
		GROUP BY y`)
	return r.sumByKey(ctx, "sum by year", q, userID)
}

func (r *ExpenseRepository) sumByKey(ctx context.Context, op, query string, args ...any) (map[int]int64, error) {
	return queryIntSums(ctx, r.store.db, op, query, args...)
}

func queryIntSums(ctx context.Context, db *sql.DB, op, query string, args ...any) (map[int]int64, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.WrapStorage(op, err)
	}
	defer rows.Close()

	out := make(map[int]int64)
	for rows.Next() {
		var key, total int64
		if err := rows.Scan(&key, &total); err != nil {
			return nil, core.WrapStorage(op, err)
		}
		out[int(key)] = total
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapStorage(op, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                    core.Expense
		category             string
		date                 sqlDate
		createdAt, updatedAt sqlTime
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Amount.Cents, &category, &e.Description,
		&date, &createdAt, &updatedAt); err != nil {
		return core.Expense{}, err
	}
	e.Category = core.Category(category)
	e.Date = date.Date
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time
	return e, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return core.WrapStorage("rows affected", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
