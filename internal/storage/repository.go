package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pondo/internal/core"
	applog "pondo/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository owns the ledger tables. Every mutation of income and
// expense rows goes through Tx so the refund/deduct protocols commit or roll
// back as a unit.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite serializes writers anyway; one connection avoids busy errors.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Tx runs fn inside a database transaction, rolling back on error.
func (r *SQLiteRepository) Tx(ctx context.Context, fn func(tx *LedgerTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&LedgerTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", applog.FieldError, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation detects UNIQUE constraint failures from the sqlite
// driver, which surfaces them as plain errors.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateUser inserts a user and seeds the default category set in one
// transaction. Returns core.ErrConflict if the username is taken.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (int64, error) {
	var id int64
	err := r.Tx(ctx, func(tx *LedgerTx) error {
		res, err := tx.tx.ExecContext(ctx,
			`INSERT INTO users(username, password, email) VALUES(?,?,?)`,
			u.Username, u.Password, u.Email)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("username %s: %w", u.Username, core.ErrConflict)
			}
			return fmt.Errorf("insert user: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("user id: %w", err)
		}
		for _, name := range core.DefaultCategories {
			if _, err := tx.tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO categories(username, name) VALUES(?,?)`,
				u.Username, name); err != nil {
				return fmt.Errorf("seed category %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "User created", applog.FieldUsername, u.Username, applog.FieldEntryID, id)
	return id, nil
}

// GetUser fetches a user by username.
func (r *SQLiteRepository) GetUser(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password, email FROM users WHERE username=?`,
		username).Scan(&u.ID, &u.Username, &u.Password, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %s: %w", username, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ListCategories returns the user's category names in alphabetical order.
func (r *SQLiteRepository) ListCategories(ctx context.Context, username string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM categories WHERE username=? ORDER BY name`, username)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AddCategory inserts a category; duplicates map to core.ErrConflict.
func (r *SQLiteRepository) AddCategory(ctx context.Context, username, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories(username, name) VALUES(?,?)`, username, name)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %s: %w", name, core.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category by name. Expenses keep the name by
// value, so nothing else is touched.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, username, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE username=? AND name=?`, username, name)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %s: %w", name, core.ErrNotFound)
	}
	return nil
}

const incomeColumns = `id, username, name, amount_cents, date, remaining_cents`

func scanIncome(row interface{ Scan(...any) error }) (core.Income, error) {
	var in core.Income
	var date string
	if err := row.Scan(&in.ID, &in.Username, &in.Name, &in.Amount.Cents, &date, &in.Remaining.Cents); err != nil {
		return core.Income{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Income{}, fmt.Errorf("income %d has malformed date %q", in.ID, date)
	}
	in.Date = d
	return in, nil
}

const expenseColumns = `id, username, name, category, date, amount_cents, income_id`

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var e core.Expense
	var date string
	var incomeID sql.NullInt64
	if err := row.Scan(&e.ID, &e.Username, &e.Name, &e.Category, &date, &e.Amount.Cents, &incomeID); err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d has malformed date %q", e.ID, date)
	}
	e.Date = d
	if incomeID.Valid {
		e.IncomeID = incomeID.Int64
	}
	return e, nil
}

// GetIncome fetches a single income by id.
func (r *SQLiteRepository) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	row := r.db.QueryRowContext(ctx,
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

// GetExpense fetches a single expense by id.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
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

// ListIncomes returns the user's incomes, newest first.
func (r *SQLiteRepository) ListIncomes(ctx context.Context, username string) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+incomeColumns+` FROM income WHERE username=? ORDER BY date DESC, id DESC`,
		username)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

// ListExpenses returns the user's expenses, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, username string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE username=? ORDER BY date DESC, id DESC`,
		username)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ListExpensesByPeriod filters expenses by year, and by month when month is
// nonzero.
func (r *SQLiteRepository) ListExpensesByPeriod(ctx context.Context, username string, year, month int) ([]core.Expense, error) {
	q := `SELECT ` + expenseColumns + ` FROM expenses
	      WHERE username=? AND strftime('%Y', date)=?`
	args := []any{username, fmt.Sprintf("%04d", year)}
	if month != 0 {
		q += ` AND strftime('%m', date)=?`
		args = append(args, fmt.Sprintf("%02d", month))
	}
	q += ` ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses by period: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ListEntries returns the user's combined expense and income feed. A nonzero
// year (and optionally month) restricts the period.
func (r *SQLiteRepository) ListEntries(ctx context.Context, username string, year, month int) ([]core.Entry, error) {
	var (
		expenses []core.Expense
		err      error
	)
	if year != 0 {
		expenses, err = r.ListExpensesByPeriod(ctx, username, year, month)
	} else {
		expenses, err = r.ListExpenses(ctx, username)
	}
	if err != nil {
		return nil, err
	}

	incomes, err := r.ListIncomes(ctx, username)
	if err != nil {
		return nil, err
	}

	entries := make([]core.Entry, 0, len(expenses)+len(incomes))
	for _, e := range expenses {
		entries = append(entries, e.AsEntry())
	}
	for _, in := range incomes {
		if year != 0 {
			if in.Date.Year() != year {
				continue
			}
			if month != 0 && int(in.Date.Month()) != month {
				continue
			}
		}
		entries = append(entries, in.AsEntry())
	}
	return entries, nil
}

// IncomeName resolves an income id to its display name; unlinked ids render
// as the general bucket.
func (r *SQLiteRepository) IncomeName(ctx context.Context, id int64) (string, error) {
	if id == 0 {
		return core.GeneralIncomeName, nil
	}
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT name FROM income WHERE id=?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.GeneralIncomeName, nil
	}
	if err != nil {
		return "", fmt.Errorf("income name: %w", err)
	}
	return name, nil
}

// TotalExpenses sums all expense amounts for the user.
func (r *SQLiteRepository) TotalExpenses(ctx context.Context, username string) (core.Money, error) {
	var cents sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(amount_cents) FROM expenses WHERE username=?`, username).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("total expenses: %w", err)
	}
	return core.Money{Cents: cents.Int64}, nil
}

// ExpenseCount counts the user's expenses.
func (r *SQLiteRepository) ExpenseCount(ctx context.Context, username string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE username=?`, username).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("expense count: %w", err)
	}
	return n, nil
}
