// Package api talks to the bank's REST API and maps its wire formats onto
// the domain types in internal/core.
package api

import (
	"context"

	"github.com/google/uuid"

	"roundup/internal/core"
)

// Gateway is the outbound port the session components consume. The live
// implementation is Client; tests substitute stubs.
type Gateway interface {
	// Accounts lists the user's accounts.
	Accounts(ctx context.Context) ([]core.Account, error)

	// AccountFeed returns the transactions settled between the interval's
	// endpoints for one account category.
	AccountFeed(ctx context.Context, accountID uuid.UUID, categoryID string, interval core.WeekInterval) ([]core.FeedItem, error)

	// SavingsGoals lists the savings goals attached to an account.
	SavingsGoals(ctx context.Context, accountID uuid.UUID) ([]core.SavingsGoal, error)

	// CreateSavingsGoal creates a goal with the given name and currency.
	CreateSavingsGoal(ctx context.Context, accountID uuid.UUID, name, currency string) (core.SavingsGoal, error)

	// TransferToSavingsGoal moves amount into the goal. The returned bool is
	// the API's own success flag; false without an error means the transfer
	// was acknowledged but not executed.
	TransferToSavingsGoal(ctx context.Context, accountID uuid.UUID, goalID uuid.UUID, amount core.Money) (bool, error)
}
