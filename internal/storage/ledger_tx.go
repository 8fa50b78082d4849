package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pondo/internal/core"
)

// LedgerTx exposes the row-level primitives available inside a repository
// transaction. The balance arithmetic itself lives in the ledger service;
// these methods only move rows.
type LedgerTx struct {
	tx *sql.Tx
}

// InsertIncome inserts an income row and returns its id.
func (t *LedgerTx) InsertIncome(ctx context.Context, in core.Income) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO income(username, name, amount_cents, date, remaining_cents) VALUES(?,?,?,?,?)`,
		in.Username, in.Name, in.Amount.Cents, in.Date.String(), in.Remaining.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("income id: %w", err)
	}
	return id, nil
}

// GetIncome reads an income row within the transaction, so the remaining
// balance seen here is the one the transaction will update.
func (t *LedgerTx) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+incomeColumns+` FROM income WHERE id=?`, id)
	in, err := scanIncome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, fmt.Errorf("income %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("get income: %w", err)
	}
	return in, nil
}

// SetIncomeRemaining writes the derived remaining balance.
func (t *LedgerTx) SetIncomeRemaining(ctx context.Context, id int64, remaining core.Money) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE income SET remaining_cents=? WHERE id=?`, remaining.Cents, id)
	if err != nil {
		return fmt.Errorf("set income remaining: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set income remaining rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("income %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// UpdateIncomeRow rewrites an income's user-editable fields plus its
// recomputed remaining balance.
func (t *LedgerTx) UpdateIncomeRow(ctx context.Context, in core.Income) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE income SET name=?, amount_cents=?, date=?, remaining_cents=? WHERE id=?`,
		in.Name, in.Amount.Cents, in.Date.String(), in.Remaining.Cents, in.ID)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update income rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("income %d: %w", in.ID, core.ErrNotFound)
	}
	return nil
}

// DeleteIncomeRow removes an income row.
func (t *LedgerTx) DeleteIncomeRow(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM income WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete income rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("income %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// UnlinkExpenses nulls income_id on every expense referencing the income,
// returning how many were unlinked.
func (t *LedgerTx) UnlinkExpenses(ctx context.Context, incomeID int64) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE expenses SET income_id=NULL WHERE income_id=?`, incomeID)
	if err != nil {
		return 0, fmt.Errorf("unlink expenses: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("unlink expenses rows: %w", err)
	}
	return n, nil
}

// InsertExpense inserts an expense row and returns its id. IncomeID zero is
// stored as NULL.
func (t *LedgerTx) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO expenses(username, name, category, date, amount_cents, income_id) VALUES(?,?,?,?,?,?)`,
		e.Username, e.Name, e.Category, e.Date.String(), e.Amount.Cents, nullableID(e.IncomeID))
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense id: %w", err)
	}
	return id, nil
}

// GetExpense reads an expense row within the transaction.
func (t *LedgerTx) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id=?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// UpdateExpenseRow rewrites an expense's fields.
func (t *LedgerTx) UpdateExpenseRow(ctx context.Context, e core.Expense) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE expenses SET name=?, category=?, date=?, amount_cents=?, income_id=? WHERE id=?`,
		e.Name, e.Category, e.Date.String(), e.Amount.Cents, nullableID(e.IncomeID), e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %d: %w", e.ID, core.ErrNotFound)
	}
	return nil
}

// DeleteExpenseRow removes an expense row.
func (t *LedgerTx) DeleteExpenseRow(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM expenses WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
