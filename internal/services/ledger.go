package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"pondo/internal/core"
	applog "pondo/internal/log"
	"pondo/internal/storage"
)

// ActivityPublisher receives a notification after a ledger mutation commits.
// Publishing is best effort: the mutation has already been persisted.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, op string, kind core.EntryKind, id int64, username string) error
}

// LedgerService orchestrates income and expense mutations across SQLite and
// AMQP. All balance arithmetic happens here, inside a repository transaction,
// under a per-user lock so concurrent mutations on the same ledger serialize.
type LedgerService struct {
	storage *storage.SQLiteRepository
	events  ActivityPublisher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLedgerService(storage *storage.SQLiteRepository, events ActivityPublisher) *LedgerService {
	return &LedgerService{
		storage: storage,
		events:  events,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *LedgerService) userLock(username string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[username]
	if !ok {
		l = &sync.Mutex{}
		s.locks[username] = l
	}
	return l
}

// AddIncome records a new income. The remaining balance starts equal to the
// amount.
func (s *LedgerService) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	in.Remaining = in.Amount

	l := s.userLock(in.Username)
	l.Lock()
	defer l.Unlock()

	err := s.storage.Tx(ctx, func(tx *storage.LedgerTx) error {
		id, err := tx.InsertIncome(ctx, in)
		if err != nil {
			return err
		}
		in.ID = id
		return nil
	})
	if err != nil {
		return core.Income{}, err
	}

	s.publish(ctx, "create", core.KindIncome, in.ID, in.Username)
	return in, nil
}

// AddExpense records a new expense and, when linked to an income, deducts its
// amount from that income's remaining balance. The balance floors at zero; an
// overspend does not block the expense, it is reported through the returned
// flag so callers can warn.
func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, bool, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, false, err
	}

	l := s.userLock(e.Username)
	l.Lock()
	defer l.Unlock()

	var insufficient bool
	err := s.storage.Tx(ctx, func(tx *storage.LedgerTx) error {
		if e.IncomeID != 0 {
			in, err := tx.GetIncome(ctx, e.IncomeID)
			if err != nil {
				return err
			}
			if in.Username != e.Username {
				return fmt.Errorf("income %d: %w", e.IncomeID, core.ErrNotFound)
			}
			insufficient = e.Amount.Cents > in.Remaining.Cents
			if err := tx.SetIncomeRemaining(ctx, in.ID, in.Remaining.SubFloor(e.Amount)); err != nil {
				return err
			}
		}
		id, err := tx.InsertExpense(ctx, e)
		if err != nil {
			return err
		}
		e.ID = id
		return nil
	})
	if err != nil {
		return core.Expense{}, false, err
	}

	if insufficient {
		slog.WarnContext(ctx, "Income overspent",
			applog.FieldIncomeID, e.IncomeID, applog.FieldExpenseID, e.ID, applog.FieldAmountCents, e.Amount.Cents)
	}
	s.publish(ctx, "create", core.KindExpense, e.ID, e.Username)
	return e, insufficient, nil
}

// refund returns an expense's amount to its linked income, capped so the
// remaining balance never exceeds the original amount.
func refund(ctx context.Context, tx *storage.LedgerTx, incomeID int64, amount core.Money) error {
	if incomeID == 0 {
		return nil
	}
	in, err := tx.GetIncome(ctx, incomeID)
	if err != nil {
		return err
	}
	rem := in.Remaining.Add(amount)
	if rem.Cents > in.Amount.Cents {
		rem = in.Amount
	}
	return tx.SetIncomeRemaining(ctx, in.ID, rem)
}

// UpdateExpense rewrites an expense. The old amount is refunded to the old
// income first, then the new amount is deducted from the new income, so
// moving an expense between incomes or changing its amount keeps both
// balances consistent. Works for the same-income case too: the deduction sees
// the refunded balance.
func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, bool, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, false, err
	}

	l := s.userLock(e.Username)
	l.Lock()
	defer l.Unlock()

	var insufficient bool
	err := s.storage.Tx(ctx, func(tx *storage.LedgerTx) error {
		old, err := tx.GetExpense(ctx, e.ID)
		if err != nil {
			return err
		}
		if old.Username != e.Username {
			return fmt.Errorf("expense %d: %w", e.ID, core.ErrNotFound)
		}
		if err := refund(ctx, tx, old.IncomeID, old.Amount); err != nil {
			return err
		}
		if e.IncomeID != 0 {
			in, err := tx.GetIncome(ctx, e.IncomeID)
			if err != nil {
				return err
			}
			if in.Username != e.Username {
				return fmt.Errorf("income %d: %w", e.IncomeID, core.ErrNotFound)
			}
			insufficient = e.Amount.Cents > in.Remaining.Cents
			if err := tx.SetIncomeRemaining(ctx, in.ID, in.Remaining.SubFloor(e.Amount)); err != nil {
				return err
			}
		}
		return tx.UpdateExpenseRow(ctx, e)
	})
	if err != nil {
		return core.Expense{}, false, err
	}

	s.publish(ctx, "update", core.KindExpense, e.ID, e.Username)
	return e, insufficient, nil
}

// DeleteExpense removes an expense and refunds its amount to the linked
// income.
func (s *LedgerService) DeleteExpense(ctx context.Context, username string, id int64) error {
	l := s.userLock(username)
	l.Lock()
	defer l.Unlock()

	err := s.storage.Tx(ctx, func(tx *storage.LedgerTx) error {
		e, err := tx.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		if e.Username != username {
			return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
		}
		if err := refund(ctx, tx, e.IncomeID, e.Amount); err != nil {
			return err
		}
		return tx.DeleteExpenseRow(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, "delete", core.KindExpense, id, username)
	return nil
}

// UpdateIncome rewrites an income while preserving what has already been
// spent from it: the new remaining balance is the new amount minus the spent
// portion, floored at zero.
func (s *LedgerService) UpdateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}

	l := s.userLock(in.Username)
	l.Lock()
	defer l.Unlock()

	err := s.storage.Tx(ctx, func(tx *storage.LedgerTx) error {
		old, err := tx.GetIncome(ctx, in.ID)
		if err != nil {
			return err
		}
		if old.Username != in.Username {
			return fmt.Errorf("income %d: %w", in.ID, core.ErrNotFound)
		}
		spent := core.Money{Cents: old.Amount.Cents - old.Remaining.Cents}
		in.Remaining = in.Amount.SubFloor(spent)
		return tx.UpdateIncomeRow(ctx, in)
	})
	if err != nil {
		return core.Income{}, err
	}

	s.publish(ctx, "update", core.KindIncome, in.ID, in.Username)
	return in, nil
}

// DeleteIncome removes an income. Expenses that were linked to it survive as
// general expenses: they are unlinked, not deleted, so the spending history
// stays intact.
func (s *LedgerService) DeleteIncome(ctx context.Context, username string, id int64) error {
	l := s.userLock(username)
	l.Lock()
	defer l.Unlock()

	var unlinked int64
	err := s.storage.Tx(ctx, func(tx *storage.LedgerTx) error {
		in, err := tx.GetIncome(ctx, id)
		if err != nil {
			return err
		}
		if in.Username != username {
			return fmt.Errorf("income %d: %w", id, core.ErrNotFound)
		}
		unlinked, err = tx.UnlinkExpenses(ctx, id)
		if err != nil {
			return err
		}
		return tx.DeleteIncomeRow(ctx, id)
	})
	if err != nil {
		return err
	}

	if unlinked > 0 {
		slog.InfoContext(ctx, "Expenses unlinked from deleted income",
			applog.FieldIncomeID, id, "count", unlinked)
	}
	s.publish(ctx, "delete", core.KindIncome, id, username)
	return nil
}

// Income fetches one income, scoped to the user.
func (s *LedgerService) Income(ctx context.Context, username string, id int64) (core.Income, error) {
	in, err := s.storage.GetIncome(ctx, id)
	if err != nil {
		return core.Income{}, err
	}
	if in.Username != username {
		return core.Income{}, fmt.Errorf("income %d: %w", id, core.ErrNotFound)
	}
	return in, nil
}

// Expense fetches one expense, scoped to the user.
func (s *LedgerService) Expense(ctx context.Context, username string, id int64) (core.Expense, error) {
	e, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	if e.Username != username {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	return e, nil
}

// Incomes lists the user's incomes, newest first.
func (s *LedgerService) Incomes(ctx context.Context, username string) ([]core.Income, error) {
	return s.storage.ListIncomes(ctx, username)
}

// Expenses lists the user's expenses, newest first.
func (s *LedgerService) Expenses(ctx context.Context, username string) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx, username)
}

// ExpensesByPeriod lists the user's expenses for a year, or a year and month.
func (s *LedgerService) ExpensesByPeriod(ctx context.Context, username string, year, month int) ([]core.Expense, error) {
	return s.storage.ListExpensesByPeriod(ctx, username, year, month)
}

// Entries returns the user's combined activity feed, optionally restricted to
// a year or a year+month period.
func (s *LedgerService) Entries(ctx context.Context, username string, year, month int) ([]core.Entry, error) {
	return s.storage.ListEntries(ctx, username, year, month)
}

// IncomeName resolves an income id for display; zero or missing ids render as
// the general bucket.
func (s *LedgerService) IncomeName(ctx context.Context, id int64) (string, error) {
	return s.storage.IncomeName(ctx, id)
}

func (s *LedgerService) publish(ctx context.Context, op string, kind core.EntryKind, id int64, username string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishActivity(ctx, op, kind, id, username); err != nil {
		slog.ErrorContext(ctx, "Failed to publish activity event",
			applog.FieldOperation, op, applog.FieldEntryKind, string(kind), applog.FieldEntryID, id, applog.FieldError, err)
	}
}

// Close closes the underlying storage.
func (s *LedgerService) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
