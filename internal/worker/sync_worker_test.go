package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundup/internal/amqp"
	"roundup/internal/core"
	"roundup/internal/ledger/memory"
)

type fakeStore struct {
	records map[int64]core.TransferRecord
	getErr  error
	markErr error
	marked  []int64
}

func (s *fakeStore) GetTransfer(ctx context.Context, id int64) (core.TransferRecord, error) {
	if s.getErr != nil {
		return core.TransferRecord{}, s.getErr
	}
	record, ok := s.records[id]
	if !ok {
		return core.TransferRecord{}, errors.New("not found")
	}
	return record, nil
}

func (s *fakeStore) MarkSynced(ctx context.Context, id int64) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.marked = append(s.marked, id)
	return nil
}

func TestHandleSyncMessageAppendsAndMarks(t *testing.T) {
	record := core.TransferRecord{
		ID:     7,
		GoalID: uuid.New(),
		Amount: core.Money{Currency: "GBP", MinorUnits: 158},
	}
	store := &fakeStore{records: map[int64]core.TransferRecord{7: record}}
	ledgerStore := memory.New()
	w := NewSyncWorker(store, ledgerStore)

	err := w.HandleSyncMessage(context.Background(), amqp.NewTransferSyncMessage(7, 1))
	require.NoError(t, err)

	appended := ledgerStore.Records()
	require.Len(t, appended, 1)
	assert.Equal(t, record.GoalID, appended[0].GoalID)
	assert.Equal(t, []int64{7}, store.marked)
}

func TestHandleSyncMessageSkipsAlreadySynced(t *testing.T) {
	store := &fakeStore{records: map[int64]core.TransferRecord{3: {ID: 3, Synced: true}}}
	ledgerStore := memory.New()
	w := NewSyncWorker(store, ledgerStore)

	err := w.HandleSyncMessage(context.Background(), amqp.NewTransferSyncMessage(3, 1))
	require.NoError(t, err)
	assert.Empty(t, ledgerStore.Records())
	assert.Empty(t, store.marked)
}

func TestHandleSyncMessageStorageErrorPropagates(t *testing.T) {
	store := &fakeStore{getErr: errors.New("db locked")}
	w := NewSyncWorker(store, memory.New())

	err := w.HandleSyncMessage(context.Background(), amqp.NewTransferSyncMessage(1, 1))
	assert.Error(t, err)
}

func TestHandleSyncMessageMarkFailureIsNotFatal(t *testing.T) {
	store := &fakeStore{
		records: map[int64]core.TransferRecord{5: {ID: 5}},
		markErr: errors.New("db locked"),
	}
	ledgerStore := memory.New()
	w := NewSyncWorker(store, ledgerStore)

	err := w.HandleSyncMessage(context.Background(), amqp.NewTransferSyncMessage(5, 1))
	require.NoError(t, err, "ledger write succeeded; flag update retries later")
	assert.Len(t, ledgerStore.Records(), 1)
}
