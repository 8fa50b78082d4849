package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pondo/internal/amqp"
	"pondo/internal/core"
	applog "pondo/internal/log"
	"pondo/internal/sheets"
	"pondo/internal/storage"
)

// ExportWorker drains activity messages and appends them to the activity
// sheet. Messages carry only identifiers; the current entry state is re-read
// from storage so the exported row reflects the latest committed values.
type ExportWorker struct {
	storage *storage.SQLiteRepository
	writer  sheets.ActivityWriter
}

func NewExportWorker(storage *storage.SQLiteRepository, writer sheets.ActivityWriter) *ExportWorker {
	return &ExportWorker{
		storage: storage,
		writer:  writer,
	}
}

// HandleActivityMessage processes a single activity message from AMQP.
func (w *ExportWorker) HandleActivityMessage(ctx context.Context, msg *amqp.ActivityMessage) error {
	slog.InfoContext(ctx, "Processing activity message",
		applog.FieldOperation, msg.Op,
		applog.FieldEntryKind, string(msg.Kind),
		applog.FieldEntryID, msg.ID)

	row := sheets.ActivityRow{
		Timestamp: msg.Timestamp,
		Op:        msg.Op,
		Kind:      msg.Kind,
		ID:        msg.ID,
		Username:  msg.Username,
	}

	// Deletes export identifiers only; the row is already gone. For creates
	// and updates, hydrate from the current database state. An entry deleted
	// between publish and consume is treated the same as a delete event.
	if msg.Op != "delete" {
		if err := w.hydrate(ctx, msg, &row); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				slog.WarnContext(ctx, "Entry vanished before export, writing identifiers only",
					applog.FieldEntryKind, string(msg.Kind), applog.FieldEntryID, msg.ID)
			} else {
				return err
			}
		}
	}

	ref, err := w.writer.Append(ctx, row)
	if err != nil {
		return fmt.Errorf("append activity row: %w", err)
	}

	slog.InfoContext(ctx, "Exported activity row", applog.FieldSheetsRef, ref, applog.FieldEntryID, msg.ID)
	return nil
}

func (w *ExportWorker) hydrate(ctx context.Context, msg *amqp.ActivityMessage, row *sheets.ActivityRow) error {
	switch msg.Kind {
	case core.KindExpense:
		e, err := w.storage.GetExpense(ctx, msg.ID)
		if err != nil {
			return err
		}
		row.Name = e.Name
		row.Category = e.Category
		row.Date = e.Date
		row.Amount = e.Amount
	case core.KindIncome:
		in, err := w.storage.GetIncome(ctx, msg.ID)
		if err != nil {
			return err
		}
		row.Name = in.Name
		row.Date = in.Date
		row.Amount = in.Amount
	default:
		return fmt.Errorf("unknown entry kind %q", msg.Kind)
	}
	return nil
}

// Run consumes activity messages until the context is cancelled.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeActivity(ctx, func(msg *amqp.ActivityMessage) error {
		return w.HandleActivityMessage(ctx, msg)
	})
}
