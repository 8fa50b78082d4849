package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pondo/internal/amqp"
	"pondo/internal/core"
	"pondo/internal/sheets/memory"
	"pondo/internal/storage"
)

func newTestWorker(t *testing.T) (*ExportWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "pondo.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	store := memory.New()
	return NewExportWorker(repo, store), repo, store
}

func TestHandleActivityMessageHydratesExpense(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()

	var id int64
	err := repo.Tx(ctx, func(tx *storage.LedgerTx) error {
		var err error
		id, err = tx.InsertExpense(ctx, core.Expense{
			Username: "ana", Name: "Lunch", Category: "Food",
			Date: core.NewDate(2024, 3, 5), Amount: core.Money{Cents: 20000},
		})
		return err
	})
	if err != nil {
		t.Fatalf("insert expense: %v", err)
	}

	msg := amqp.NewActivityMessage("create", core.KindExpense, id, "ana")
	if err := w.HandleActivityMessage(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rows := store.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.Op != "create" || row.Name != "Lunch" || row.Category != "Food" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.Amount.Cents != 20000 || row.Date.String() != "2024-03-05" {
		t.Fatalf("row not hydrated: %+v", row)
	}
}

func TestHandleActivityMessageHydratesIncome(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()

	var id int64
	err := repo.Tx(ctx, func(tx *storage.LedgerTx) error {
		var err error
		id, err = tx.InsertIncome(ctx, core.Income{
			Username: "ana", Name: "Salary",
			Amount: core.Money{Cents: 500000}, Date: core.NewDate(2024, 3, 1),
			Remaining: core.Money{Cents: 500000},
		})
		return err
	})
	if err != nil {
		t.Fatalf("insert income: %v", err)
	}

	if err := w.HandleActivityMessage(ctx, amqp.NewActivityMessage("update", core.KindIncome, id, "ana")); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rows := store.Rows()
	if len(rows) != 1 || rows[0].Name != "Salary" || rows[0].Kind != core.KindIncome {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestHandleActivityMessageDeleteSkipsHydration(t *testing.T) {
	w, _, store := newTestWorker(t)
	ctx := context.Background()

	msg := &amqp.ActivityMessage{
		Op: "delete", Kind: core.KindExpense, ID: 7, Username: "ana", Timestamp: time.Now(),
	}
	if err := w.HandleActivityMessage(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rows := store.Rows()
	if len(rows) != 1 || rows[0].ID != 7 || rows[0].Name != "" {
		t.Fatalf("delete row should carry identifiers only: %+v", rows)
	}
}

func TestHandleActivityMessageVanishedEntry(t *testing.T) {
	w, _, store := newTestWorker(t)
	ctx := context.Background()

	// Entry was deleted before the create message got consumed.
	msg := amqp.NewActivityMessage("create", core.KindExpense, 99, "ana")
	if err := w.HandleActivityMessage(ctx, msg); err != nil {
		t.Fatalf("vanished entry should not fail the message: %v", err)
	}
	if len(store.Rows()) != 1 {
		t.Fatalf("expected identifier-only row")
	}
}
