package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Direction says whether a feed item moved money into or out of the account.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// AccountType mirrors the account types the API reports.
type AccountType string

const (
	AccountTypePrimary          AccountType = "PRIMARY"
	AccountTypeAdditional       AccountType = "ADDITIONAL"
	AccountTypeLoan             AccountType = "LOAN"
	AccountTypeFixedTermDeposit AccountType = "FIXED_TERM_DEPOSIT"
)

// DisplayName returns the human readable name for the account type.
func (t AccountType) DisplayName() string {
	switch t {
	case AccountTypePrimary:
		return "Primary"
	case AccountTypeAdditional:
		return "Additional"
	case AccountTypeLoan:
		return "Loan"
	case AccountTypeFixedTermDeposit:
		return "Fixed Term Deposit"
	default:
		return string(t)
	}
}

// Account is one of the user's bank accounts. Immutable after decoding.
type Account struct {
	ID              uuid.UUID
	AccountType     AccountType
	DefaultCategory string
	CreatedAt       time.Time
	Name            string
	Currency        string
}

// FeedItem is a single transaction in an account's activity feed.
// Amount and TransactionTime may be absent on not-yet-settled entries.
type FeedItem struct {
	ID              uuid.UUID
	Direction       Direction
	Reference       string
	Amount          *Money
	Source          string
	TransactionTime *time.Time
}

// SavingsGoal is a handle to a savings bucket funds can be moved into.
type SavingsGoal struct {
	ID uuid.UUID
}

// RoundUpSavingsRequest carries a computed round-up amount from the
// confirmation prompt through to the transfer call. Never persisted.
type RoundUpSavingsRequest struct {
	Goal   SavingsGoal
	Amount Money
}

// TransferRecord is a locally recorded, successfully executed round-up
// transfer. Rows live in the SQLite history and are synced to the ledger.
type TransferRecord struct {
	ID            int64
	AccountID     uuid.UUID
	GoalID        uuid.UUID
	TransferID    uuid.UUID
	Amount        Money
	IntervalStart time.Time
	IntervalEnd   time.Time
	CreatedAt     time.Time
	Synced        bool
}

var (
	// ErrUnknown covers API responses that report failure without a reason,
	// e.g. a transfer acknowledged with success=false.
	ErrUnknown = errors.New("unknown error occurred")

	// ErrWeekResolution means a week start could not be derived from the
	// reference date.
	ErrWeekResolution = errors.New("could not resolve start of week")

	// ErrCreateSavingsGoal means the API reported a non-success creating a goal.
	ErrCreateSavingsGoal = errors.New("failed to create savings goal")
)
