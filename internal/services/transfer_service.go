package services

import (
	"context"
	"fmt"
	"log/slog"

	"roundup/internal/core"
)

const transferSyncVersion = 1

// TransferHistory is the slice of storage this service needs.
type TransferHistory interface {
	RecordTransfer(ctx context.Context, record core.TransferRecord) (int64, error)
	ListUnsynced(ctx context.Context, limit int) ([]core.TransferRecord, error)
}

// SyncPublisher announces recorded transfers to the ledger worker.
type SyncPublisher interface {
	PublishTransferSync(ctx context.Context, id, version int64) error
}

// TransferService records executed round-up transfers locally and publishes
// a sync message for each one so the worker can mirror it to the ledger.
type TransferService struct {
	history   TransferHistory
	publisher SyncPublisher
}

// NewTransferService creates a TransferService. publisher may be nil, in
// which case transfers are recorded locally and picked up later by
// RepublishPending.
func NewTransferService(history TransferHistory, publisher SyncPublisher) *TransferService {
	return &TransferService{
		history:   history,
		publisher: publisher,
	}
}

// RecordRoundUp saves a transfer to the local history and publishes a sync
// message. A publish failure is logged but not returned; the row stays
// unsynced and RepublishPending retries it.
func (s *TransferService) RecordRoundUp(ctx context.Context, record core.TransferRecord) error {
	id, err := s.history.RecordTransfer(ctx, record)
	if err != nil {
		return fmt.Errorf("record transfer: %w", err)
	}

	s.publish(ctx, id)
	return nil
}

// RepublishPending re-announces transfers that never reached the ledger,
// oldest first. Called at startup to drain anything left over from a
// previous run.
func (s *TransferService) RepublishPending(ctx context.Context, limit int) error {
	records, err := s.history.ListUnsynced(ctx, limit)
	if err != nil {
		return fmt.Errorf("list unsynced transfers: %w", err)
	}

	for _, record := range records {
		s.publish(ctx, record.ID)
	}

	if len(records) > 0 {
		slog.InfoContext(ctx, "Republished pending transfer sync messages", "count", len(records))
	}
	return nil
}

func (s *TransferService) publish(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransferSync(ctx, id, transferSyncVersion); err != nil {
		slog.WarnContext(ctx, "Failed to publish transfer sync message",
			"id", id, "error", err)
	}
}
