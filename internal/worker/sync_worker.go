// Package worker bridges transfer-sync messages to the savings ledger.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"roundup/internal/amqp"
	"roundup/internal/core"
	"roundup/internal/ledger"
)

// TransferStore is the slice of storage the worker needs.
type TransferStore interface {
	GetTransfer(ctx context.Context, id int64) (core.TransferRecord, error)
	MarkSynced(ctx context.Context, id int64) error
}

// SyncWorker loads recorded transfers referenced by sync messages and
// appends them to the ledger.
type SyncWorker struct {
	store  TransferStore
	writer ledger.TransferWriter
}

func NewSyncWorker(store TransferStore, writer ledger.TransferWriter) *SyncWorker {
	return &SyncWorker{
		store:  store,
		writer: writer,
	}
}

// HandleSyncMessage processes a single transfer sync message. Returning an
// error makes the AMQP layer requeue the message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransferSyncMessage) error {
	record, err := w.store.GetTransfer(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transfer from storage: %w", err)
	}

	if record.Synced {
		slog.InfoContext(ctx, "Transfer already synced, skipping", "id", msg.ID)
		return nil
	}

	ref, err := w.writer.Append(ctx, record)
	if err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.store.MarkSynced(ctx, msg.ID); err != nil {
		// The ledger write went through; a failed flag update only costs
		// an idempotent retry later.
		slog.WarnContext(ctx, "Failed to mark transfer as synced",
			"id", msg.ID, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Synced transfer to ledger",
		"id", msg.ID,
		"ledger_ref", ref)

	return nil
}
