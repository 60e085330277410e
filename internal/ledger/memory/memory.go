// Package memory is an in-memory ledger backend for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"strconv"
	"sync"

	"roundup/internal/core"

	ports "roundup/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	records []core.TransferRecord
}

var _ ports.TransferWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append implements ledger.TransferWriter.
func (s *Store) Append(ctx context.Context, record core.TransferRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return strconv.Itoa(len(s.records)), nil
}

// Records returns a snapshot of everything appended so far.
func (s *Store) Records() []core.TransferRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.TransferRecord, len(s.records))
	copy(out, s.records)
	return out
}
