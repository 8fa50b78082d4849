package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"pondo/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "pondo.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateUserSeedsDefaultCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateUser(ctx, core.User{Username: "ana", Password: "secret1"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected nonzero id")
	}

	cats, err := repo.ListCategories(ctx, "ana")
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != len(core.DefaultCategories) {
		t.Fatalf("expected %d categories, got %d", len(core.DefaultCategories), len(cats))
	}

	_, err = repo.CreateUser(ctx, core.User{Username: "ana", Password: "other66"})
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, core.User{Username: "ana", Password: "secret1", Email: "a@b.co"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	u, err := repo.GetUser(ctx, "ana")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Password != "secret1" || u.Email != "a@b.co" {
		t.Fatalf("unexpected user: %+v", u)
	}

	if _, err := repo.GetUser(ctx, "ghost"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCategoryAddDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, core.User{Username: "ana", Password: "secret1"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := repo.AddCategory(ctx, "ana", "Travel"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	if err := repo.AddCategory(ctx, "ana", "Travel"); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := repo.DeleteCategory(ctx, "ana", "Travel"); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if err := repo.DeleteCategory(ctx, "ana", "Travel"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func insertIncome(t *testing.T, repo *SQLiteRepository, in core.Income) int64 {
	t.Helper()
	var id int64
	err := repo.Tx(context.Background(), func(tx *LedgerTx) error {
		var err error
		id, err = tx.InsertIncome(context.Background(), in)
		return err
	})
	if err != nil {
		t.Fatalf("insert income: %v", err)
	}
	return id
}

func insertExpense(t *testing.T, repo *SQLiteRepository, e core.Expense) int64 {
	t.Helper()
	var id int64
	err := repo.Tx(context.Background(), func(tx *LedgerTx) error {
		var err error
		id, err = tx.InsertExpense(context.Background(), e)
		return err
	})
	if err != nil {
		t.Fatalf("insert expense: %v", err)
	}
	return id
}

func TestIncomeRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id := insertIncome(t, repo, core.Income{
		Username:  "ana",
		Name:      "Salary",
		Amount:    core.Money{Cents: 500000},
		Date:      core.NewDate(2024, 1, 1),
		Remaining: core.Money{Cents: 500000},
	})

	in, err := repo.GetIncome(ctx, id)
	if err != nil {
		t.Fatalf("get income: %v", err)
	}
	if in.Name != "Salary" || in.Amount.Cents != 500000 || in.Remaining.Cents != 500000 {
		t.Fatalf("unexpected income: %+v", in)
	}
	if in.Date.String() != "2024-01-01" {
		t.Fatalf("date round trip: %s", in.Date)
	}

	if _, err := repo.GetIncome(ctx, 999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExpenseNullIncomeID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id := insertExpense(t, repo, core.Expense{
		Username: "ana",
		Name:     "Lunch",
		Category: "Food",
		Date:     core.NewDate(2024, 1, 2),
		Amount:   core.Money{Cents: 20000},
	})

	e, err := repo.GetExpense(ctx, id)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	if e.IncomeID != 0 {
		t.Fatalf("expected unlinked expense, got income id %d", e.IncomeID)
	}
}

func TestUnlinkExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	incomeID := insertIncome(t, repo, core.Income{
		Username: "ana", Name: "Salary",
		Amount: core.Money{Cents: 100000}, Date: core.NewDate(2024, 1, 1),
		Remaining: core.Money{Cents: 100000},
	})
	e1 := insertExpense(t, repo, core.Expense{
		Username: "ana", Name: "a", Category: "Food",
		Date: core.NewDate(2024, 1, 2), Amount: core.Money{Cents: 100}, IncomeID: incomeID,
	})
	e2 := insertExpense(t, repo, core.Expense{
		Username: "ana", Name: "b", Category: "Food",
		Date: core.NewDate(2024, 1, 3), Amount: core.Money{Cents: 200}, IncomeID: incomeID,
	})

	err := repo.Tx(ctx, func(tx *LedgerTx) error {
		n, err := tx.UnlinkExpenses(ctx, incomeID)
		if err != nil {
			return err
		}
		if n != 2 {
			t.Fatalf("expected 2 unlinked, got %d", n)
		}
		return tx.DeleteIncomeRow(ctx, incomeID)
	})
	if err != nil {
		t.Fatalf("unlink+delete: %v", err)
	}

	for _, id := range []int64{e1, e2} {
		e, err := repo.GetExpense(ctx, id)
		if err != nil {
			t.Fatalf("get expense: %v", err)
		}
		if e.IncomeID != 0 {
			t.Fatalf("expense %d still linked", id)
		}
	}
}

func TestTxRollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.Tx(ctx, func(tx *LedgerTx) error {
		if _, err := tx.InsertExpense(ctx, core.Expense{
			Username: "ana", Name: "x", Category: "Food",
			Date: core.NewDate(2024, 1, 2), Amount: core.Money{Cents: 100},
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	n, err := repo.ExpenseCount(ctx, "ana")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("rollback failed, %d rows visible", n)
	}
}

func TestListEntriesAndPeriodFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	insertIncome(t, repo, core.Income{
		Username: "ana", Name: "Salary",
		Amount: core.Money{Cents: 500000}, Date: core.NewDate(2024, 3, 1),
		Remaining: core.Money{Cents: 500000},
	})
	insertExpense(t, repo, core.Expense{
		Username: "ana", Name: "Lunch", Category: "Food",
		Date: core.NewDate(2024, 3, 5), Amount: core.Money{Cents: 20000},
	})
	insertExpense(t, repo, core.Expense{
		Username: "ana", Name: "Old", Category: "Other",
		Date: core.NewDate(2023, 12, 31), Amount: core.Money{Cents: 100},
	})
	insertExpense(t, repo, core.Expense{
		Username: "bob", Name: "NotMine", Category: "Other",
		Date: core.NewDate(2024, 3, 5), Amount: core.Money{Cents: 100},
	})

	entries, err := repo.ListEntries(ctx, "ana", 0, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	entries, err = repo.ListEntries(ctx, "ana", 2024, 3)
	if err != nil {
		t.Fatalf("list entries by period: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for 2024-03, got %d", len(entries))
	}

	expenses, err := repo.ListExpensesByPeriod(ctx, "ana", 2023, 0)
	if err != nil {
		t.Fatalf("period filter: %v", err)
	}
	if len(expenses) != 1 || expenses[0].Name != "Old" {
		t.Fatalf("unexpected period result: %+v", expenses)
	}
}

func TestIncomeNameFallback(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	name, err := repo.IncomeName(ctx, 0)
	if err != nil || name != core.GeneralIncomeName {
		t.Fatalf("expected general bucket, got %q %v", name, err)
	}
	name, err = repo.IncomeName(ctx, 123)
	if err != nil || name != core.GeneralIncomeName {
		t.Fatalf("missing income should fall back to general, got %q %v", name, err)
	}

	id := insertIncome(t, repo, core.Income{
		Username: "ana", Name: "Salary",
		Amount: core.Money{Cents: 1}, Date: core.NewDate(2024, 1, 1), Remaining: core.Money{Cents: 1},
	})
	name, err = repo.IncomeName(ctx, id)
	if err != nil || name != "Salary" {
		t.Fatalf("expected Salary, got %q %v", name, err)
	}
}

func TestTotals(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	total, err := repo.TotalExpenses(ctx, "ana")
	if err != nil || total.Cents != 0 {
		t.Fatalf("empty total: %v %v", total, err)
	}

	insertExpense(t, repo, core.Expense{
		Username: "ana", Name: "a", Category: "Food",
		Date: core.NewDate(2024, 1, 2), Amount: core.Money{Cents: 150},
	})
	insertExpense(t, repo, core.Expense{
		Username: "ana", Name: "b", Category: "Food",
		Date: core.NewDate(2024, 1, 3), Amount: core.Money{Cents: 250},
	})

	total, err = repo.TotalExpenses(ctx, "ana")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total.Cents != 400 {
		t.Fatalf("expected 400, got %d", total.Cents)
	}

	n, err := repo.ExpenseCount(ctx, "ana")
	if err != nil || n != 2 {
		t.Fatalf("count: %d %v", n, err)
	}
}
