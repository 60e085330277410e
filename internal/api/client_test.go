package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundup/internal/core"
)

func TestAccountsDecodesAndAttachesBearerToken(t *testing.T) {
	accountID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/accounts", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		fmt.Fprintf(w, `{"accounts":[
			{"accountUid":%q,"accountType":"PRIMARY","defaultCategory":"cat-1","createdAt":"2024-01-10T09:00:00.000Z","name":"Personal","currency":"GBP"},
			{"accountType":"LOAN","name":"No ID"}
		]}`, accountID)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token")
	accounts, err := client.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1, "entries without an accountUid are dropped")

	account := accounts[0]
	assert.Equal(t, accountID, account.ID)
	assert.Equal(t, core.AccountTypePrimary, account.AccountType)
	assert.Equal(t, "cat-1", account.DefaultCategory)
	assert.Equal(t, "Personal", account.Name)
	assert.Equal(t, "GBP", account.Currency)
	assert.Equal(t, 2024, account.CreatedAt.Year())
}

func TestAccountFeedSendsIntervalAndMapsDirections(t *testing.T) {
	accountID := uuid.New()
	outboundID := uuid.New()
	inboundID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t,
			fmt.Sprintf("/api/v2/feed/account/%s/category/cat-1/transactions-between", accountID),
			r.URL.Path)
		assert.Equal(t, "2024-08-05T00:00:00.000Z", r.URL.Query().Get("minTransactionTimestamp"))
		assert.Equal(t, "2024-08-12T00:00:00.000Z", r.URL.Query().Get("maxTransactionTimestamp"))
		fmt.Fprintf(w, `{"feedItems":[
			{"feedItemUid":%q,"direction":"OUT","reference":"coffee","amount":{"currency":"GBP","minorUnits":435},"source":"MASTER_CARD","transactionTime":"2024-08-06T08:15:00.000Z"},
			{"feedItemUid":%q,"direction":"IN","amount":{"currency":"GBP","minorUnits":123}},
			{"feedItemUid":%q,"direction":"SIDEWAYS"},
			{"direction":"OUT"}
		]}`, outboundID, inboundID, uuid.New())
	}))
	defer server.Close()

	interval := core.NewWeekInterval(time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC))
	client := NewClient(server.URL, "")
	items, err := client.AccountFeed(context.Background(), accountID, "cat-1", interval)
	require.NoError(t, err)
	require.Len(t, items, 2, "items lacking id or a known direction are dropped")

	assert.Equal(t, outboundID, items[0].ID)
	assert.Equal(t, core.Outbound, items[0].Direction)
	assert.Equal(t, "coffee", items[0].Reference)
	require.NotNil(t, items[0].Amount)
	assert.Equal(t, int64(435), items[0].Amount.MinorUnits)
	assert.Equal(t, core.Inbound, items[1].Direction)
}

func TestSavingsGoals(t *testing.T) {
	accountID := uuid.New()
	goalID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fmt.Sprintf("/api/v2/account/%s/savings-goals", accountID), r.URL.Path)
		fmt.Fprintf(w, `{"savingsGoalList":[
			{"savingsGoalUid":%q,"name":"Rainy day","state":"ACTIVE"},
			{"name":"no uid"}
		]}`, goalID)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	goals, err := client.SavingsGoals(context.Background(), accountID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, goalID, goals[0].ID)
}

func TestCreateSavingsGoal(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		goalID := uuid.New()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			fmt.Fprintf(w, `{"savingsGoalUid":%q,"success":true}`, goalID)
		}))
		defer server.Close()

		client := NewClient(server.URL, "")
		goal, err := client.CreateSavingsGoal(context.Background(), uuid.New(), "Tech Challenge Round Up!", "GBP")
		require.NoError(t, err)
		assert.Equal(t, goalID, goal.ID)
	})

	t.Run("api reports non-success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"savingsGoalUid":%q,"success":false}`, uuid.New())
		}))
		defer server.Close()

		client := NewClient(server.URL, "")
		_, err := client.CreateSavingsGoal(context.Background(), uuid.New(), "Tech Challenge Round Up!", "GBP")
		assert.ErrorIs(t, err, core.ErrCreateSavingsGoal)
	})
}

func TestTransferToSavingsGoal(t *testing.T) {
	accountID := uuid.New()
	goalID := uuid.New()
	transferID := uuid.New()

	t.Run("uses a fresh transfer id per call", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t,
				fmt.Sprintf("/api/v2/account/%s/savings-goals/%s/add-money/%s", accountID, goalID, transferID),
				r.URL.Path)
			fmt.Fprintf(w, `{"transferUid":%q,"success":true}`, transferID)
		}))
		defer server.Close()

		client := NewClient(server.URL, "", WithTransferIDGenerator(func() uuid.UUID { return transferID }))
		ok, err := client.TransferToSavingsGoal(context.Background(), accountID, goalID, core.Money{Currency: "GBP", MinorUnits: 158})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("success flag false is not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"transferUid":%q,"success":false}`, transferID)
		}))
		defer server.Close()

		client := NewClient(server.URL, "")
		ok, err := client.TransferToSavingsGoal(context.Background(), accountID, goalID, core.Money{Currency: "GBP", MinorUnits: 158})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestHTTPErrorStatusSurfacesAsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error_description":"invalid token"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "expired")
	_, err := client.Accounts(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "invalid token")
}
