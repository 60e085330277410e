package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"roundup/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "transfers.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleRecord() core.TransferRecord {
	start := time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC)
	return core.TransferRecord{
		AccountID:     uuid.New(),
		GoalID:        uuid.New(),
		Amount:        core.Money{Currency: "GBP", MinorUnits: 158},
		IntervalStart: start,
		IntervalEnd:   start.Add(core.WeekDuration),
	}
}

func TestRecordAndGetTransfer(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	record := sampleRecord()

	id, err := repo.RecordTransfer(ctx, record)
	if err != nil {
		t.Fatalf("record transfer: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero row id")
	}

	got, err := repo.GetTransfer(ctx, id)
	if err != nil {
		t.Fatalf("get transfer: %v", err)
	}
	if got.AccountID != record.AccountID {
		t.Fatalf("account id: expected %v, got %v", record.AccountID, got.AccountID)
	}
	if got.GoalID != record.GoalID {
		t.Fatalf("goal id: expected %v, got %v", record.GoalID, got.GoalID)
	}
	if got.Amount != record.Amount {
		t.Fatalf("amount: expected %v, got %v", record.Amount, got.Amount)
	}
	if got.TransferID == uuid.Nil {
		t.Fatal("expected a generated transfer id")
	}
	if !got.IntervalStart.Equal(record.IntervalStart) {
		t.Fatalf("interval start: expected %v, got %v", record.IntervalStart, got.IntervalStart)
	}
	if got.Synced {
		t.Fatal("fresh transfers must start unsynced")
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be filled")
	}
}

func TestListUnsyncedAndMarkSynced(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.RecordTransfer(ctx, sampleRecord())
	if err != nil {
		t.Fatalf("record transfer: %v", err)
	}
	second, err := repo.RecordTransfer(ctx, sampleRecord())
	if err != nil {
		t.Fatalf("record transfer: %v", err)
	}

	pending, err := repo.ListUnsynced(ctx, 10)
	if err != nil {
		t.Fatalf("list unsynced: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending transfers, got %d", len(pending))
	}
	if pending[0].ID != first || pending[1].ID != second {
		t.Fatalf("expected oldest-first order, got %d then %d", pending[0].ID, pending[1].ID)
	}

	if err := repo.MarkSynced(ctx, first); err != nil {
		t.Fatalf("mark synced: %v", err)
	}

	pending, err = repo.ListUnsynced(ctx, 10)
	if err != nil {
		t.Fatalf("list unsynced: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second {
		t.Fatalf("expected only the second transfer pending, got %+v", pending)
	}

	synced, err := repo.GetTransfer(ctx, first)
	if err != nil {
		t.Fatalf("get transfer: %v", err)
	}
	if !synced.Synced {
		t.Fatal("expected transfer to be marked synced")
	}
}

func TestListUnsyncedRespectsLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := repo.RecordTransfer(ctx, sampleRecord()); err != nil {
			t.Fatalf("record transfer: %v", err)
		}
	}

	pending, err := repo.ListUnsynced(ctx, 3)
	if err != nil {
		t.Fatalf("list unsynced: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 transfers, got %d", len(pending))
	}
}
