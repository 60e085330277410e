package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundup/internal/core"
)

type stubHistory struct {
	nextID   int64
	saved    []core.TransferRecord
	saveErr  error
	unsynced []core.TransferRecord
	listErr  error
}

func (s *stubHistory) RecordTransfer(ctx context.Context, record core.TransferRecord) (int64, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	s.nextID++
	s.saved = append(s.saved, record)
	return s.nextID, nil
}

func (s *stubHistory) ListUnsynced(ctx context.Context, limit int) ([]core.TransferRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(s.unsynced) > limit {
		return s.unsynced[:limit], nil
	}
	return s.unsynced, nil
}

type stubPublisher struct {
	published []int64
	err       error
}

func (s *stubPublisher) PublishTransferSync(ctx context.Context, id, version int64) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, id)
	return nil
}

func TestRecordRoundUpSavesAndPublishes(t *testing.T) {
	history := &stubHistory{}
	publisher := &stubPublisher{}
	svc := NewTransferService(history, publisher)

	record := core.TransferRecord{
		AccountID: uuid.New(),
		GoalID:    uuid.New(),
		Amount:    core.Money{Currency: "GBP", MinorUnits: 158},
	}
	err := svc.RecordRoundUp(context.Background(), record)
	require.NoError(t, err)

	require.Len(t, history.saved, 1)
	assert.Equal(t, record.GoalID, history.saved[0].GoalID)
	assert.Equal(t, []int64{1}, publisher.published)
}

func TestRecordRoundUpStorageErrorPropagates(t *testing.T) {
	history := &stubHistory{saveErr: errors.New("disk full")}
	svc := NewTransferService(history, &stubPublisher{})

	err := svc.RecordRoundUp(context.Background(), core.TransferRecord{})
	assert.Error(t, err)
}

func TestRecordRoundUpPublishFailureIsNotFatal(t *testing.T) {
	history := &stubHistory{}
	svc := NewTransferService(history, &stubPublisher{err: errors.New("broker down")})

	err := svc.RecordRoundUp(context.Background(), core.TransferRecord{})
	require.NoError(t, err)
	assert.Len(t, history.saved, 1)
}

func TestRecordRoundUpWithoutPublisher(t *testing.T) {
	history := &stubHistory{}
	svc := NewTransferService(history, nil)

	err := svc.RecordRoundUp(context.Background(), core.TransferRecord{})
	require.NoError(t, err)
	assert.Len(t, history.saved, 1)
}

func TestRepublishPending(t *testing.T) {
	history := &stubHistory{unsynced: []core.TransferRecord{{ID: 4}, {ID: 9}}}
	publisher := &stubPublisher{}
	svc := NewTransferService(history, publisher)

	err := svc.RepublishPending(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 9}, publisher.published)
}

func TestRepublishPendingListError(t *testing.T) {
	history := &stubHistory{listErr: errors.New("db locked")}
	svc := NewTransferService(history, &stubPublisher{})

	err := svc.RepublishPending(context.Background(), 50)
	assert.Error(t, err)
}
