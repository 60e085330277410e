// Package ledger defines the outbound port for the savings-history ledger
// that recorded round-up transfers are synced into.
package ledger

import (
	"context"

	"roundup/internal/core"
)

// TransferWriter appends one executed transfer to the ledger, returning a
// backend-specific row reference.
type TransferWriter interface {
	Append(ctx context.Context, record core.TransferRecord) (rowRef string, err error)
}
