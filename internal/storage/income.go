package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"tally/internal/core"
)

const incomeColumns = "user_id, year, month, amount_cents, created_at, updated_at"

type IncomeRepository struct {
	store *Store
}

// Upsert creates the (user, year, month) record or overwrites its amount in one statement,
// so concurrent writers cannot produce duplicates. The last writer wins.
func (r *IncomeRepository) Upsert(ctx context.Context, mi core.MonthlyIncome) (core.MonthlyIncome, error) {
	ts := r.store.timestamp()
	q := r.store.def.rebind(`INSERT INTO monthly_income (` + incomeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, year, month)
		DO UPDATE SET amount_cents = excluded.amount_cents, updated_at = excluded.updated_at
		RETURNING ` + incomeColumns)

	out, err := scanIncome(r.store.db.QueryRowContext(ctx, q,
		mi.UserID, mi.Year, mi.Month, mi.Amount.Cents, ts, ts))
	if err != nil {
		return core.MonthlyIncome{}, core.WrapStorage("upsert income", err)
	}

	slog.DebugContext(ctx, "Income upserted",
		"user_id", out.UserID,
		"year", out.Year,
		"month", out.Month,
		"amount_cents", out.Amount.Cents)
	return out, nil
}

// Get returns nil without error when the month has no income record.
func (r *IncomeRepository) Get(ctx context.Context, userID string, year, month int) (*core.MonthlyIncome, error) {
	q := r.store.def.rebind(`SELECT ` + incomeColumns + ` FROM monthly_income
		WHERE user_id = ? AND year = ? AND month = ?`)
	mi, err := scanIncome(r.store.db.QueryRowContext(ctx, q, userID, year, month))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, core.WrapStorage("get income", err)
	}
	return &mi, nil
}

func (r *IncomeRepository) ListByYear(ctx context.Context, userID string, year int) ([]core.MonthlyIncome, error) {
	q := r.store.def.rebind(`SELECT ` + incomeColumns + ` FROM monthly_income
		WHERE user_id = ? AND year = ?
		ORDER BY month`)
	rows, err := r.store.db.QueryContext(ctx, q, userID, year)
	if err != nil {
		return nil, core.WrapStorage("list income", err)
	}
	defer rows.Close()

	out := []core.MonthlyIncome{}
	for rows.Next() {
		mi, err := scanIncome(rows)
		if err != nil {
			return nil, core.WrapStorage("scan income", err)
		}
		out = append(out, mi)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapStorage("list income", err)
	}
	return out, nil
}

// SumAllByYear totals the user's income per calendar year.
func (r *IncomeRepository) SumAllByYear(ctx context.Context, userID string) (map[int]int64, error) {
	q := r.store.def.rebind(`SELECT year, CAST(SUM(amount_cents) AS BIGINT) FROM monthly_income
		WHERE user_id = ?
		GROUP BY year`)
	return queryIntSums(ctx, r.store.db, "sum income by year", q, userID)
}

func scanIncome(row rowScanner) (core.MonthlyIncome, error) {
	var (
		mi                   core.MonthlyIncome
		createdAt, updatedAt sqlTime
	)
	if err := row.Scan(&mi.UserID, &mi.Year, &mi.Month, &mi.Amount.Cents, &createdAt, &updatedAt); err != nil {
		return core.MonthlyIncome{}, err
	}
	mi.CreatedAt = createdAt.Time
	mi.UpdatedAt = updatedAt.Time
	return mi, nil
}
