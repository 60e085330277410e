package amqp

import (
	"encoding/json"
	"time"
)

// TransferSyncMessage asks the worker to sync one recorded transfer to the
// savings ledger. It carries only the row id and version; the worker loads
// the full record from storage.
type TransferSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransferSyncMessage creates a sync message for the given row.
func NewTransferSyncMessage(id, version int64) *TransferSyncMessage {
	return &TransferSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TransferSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransferSyncMessageFromJSON creates a message from JSON bytes.
func TransferSyncMessageFromJSON(data []byte) (*TransferSyncMessage, error) {
	var msg TransferSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
