package api

import (
	"time"

	"github.com/google/uuid"

	"roundup/internal/core"
)

// Wire shapes as the API serves them. Optional fields are pointers so a
// missing key survives decoding; entries without the fields the domain
// needs are dropped during mapping.

type currencyAndAmount struct {
	Currency   string `json:"currency"`
	MinorUnits int64  `json:"minorUnits"`
}

func (c *currencyAndAmount) toMoney() *core.Money {
	if c == nil {
		return nil
	}
	return &core.Money{Currency: c.Currency, MinorUnits: c.MinorUnits}
}

type accountsResponse struct {
	Accounts []struct {
		AccountUID      *uuid.UUID `json:"accountUid"`
		AccountType     string     `json:"accountType"`
		DefaultCategory string     `json:"defaultCategory"`
		CreatedAt       *time.Time `json:"createdAt"`
		Name            string     `json:"name"`
		Currency        string     `json:"currency"`
	} `json:"accounts"`
}

func (r accountsResponse) toAccounts() []core.Account {
	accounts := make([]core.Account, 0, len(r.Accounts))
	for _, a := range r.Accounts {
		if a.AccountUID == nil {
			continue
		}
		account := core.Account{
			ID:              *a.AccountUID,
			AccountType:     core.AccountType(a.AccountType),
			DefaultCategory: a.DefaultCategory,
			Name:            a.Name,
			Currency:        a.Currency,
		}
		if a.CreatedAt != nil {
			account.CreatedAt = *a.CreatedAt
		}
		accounts = append(accounts, account)
	}
	return accounts
}

type feedResponse struct {
	FeedItems []struct {
		FeedItemUID     *uuid.UUID         `json:"feedItemUid"`
		Direction       *string            `json:"direction"`
		Reference       *string            `json:"reference"`
		Amount          *currencyAndAmount `json:"amount"`
		Source          *string            `json:"source"`
		TransactionTime *time.Time         `json:"transactionTime"`
	} `json:"feedItems"`
}

func (r feedResponse) toFeedItems() []core.FeedItem {
	items := make([]core.FeedItem, 0, len(r.FeedItems))
	for _, f := range r.FeedItems {
		// Entries without an id or direction are unusable downstream.
		if f.FeedItemUID == nil || f.Direction == nil {
			continue
		}
		var direction core.Direction
		switch *f.Direction {
		case "IN":
			direction = core.Inbound
		case "OUT":
			direction = core.Outbound
		default:
			continue
		}
		item := core.FeedItem{
			ID:              *f.FeedItemUID,
			Direction:       direction,
			Amount:          f.Amount.toMoney(),
			TransactionTime: f.TransactionTime,
		}
		if f.Reference != nil {
			item.Reference = *f.Reference
		}
		if f.Source != nil {
			item.Source = *f.Source
		}
		items = append(items, item)
	}
	return items
}

type savingsGoalsResponse struct {
	SavingsGoalList []struct {
		SavingsGoalUID *uuid.UUID `json:"savingsGoalUid"`
		Name           *string    `json:"name"`
		State          *string    `json:"state"`
	} `json:"savingsGoalList"`
}

func (r savingsGoalsResponse) toSavingsGoals() []core.SavingsGoal {
	goals := make([]core.SavingsGoal, 0, len(r.SavingsGoalList))
	for _, g := range r.SavingsGoalList {
		if g.SavingsGoalUID == nil {
			continue
		}
		goals = append(goals, core.SavingsGoal{ID: *g.SavingsGoalUID})
	}
	return goals
}

type createSavingsGoalRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

type createSavingsGoalResponse struct {
	SavingsGoalUID *uuid.UUID `json:"savingsGoalUid"`
	Success        *bool      `json:"success"`
}

type transferRequest struct {
	Amount currencyAndAmount `json:"amount"`
}

type transferResponse struct {
	TransferUID *uuid.UUID `json:"transferUid"`
	Success     *bool      `json:"success"`
}
