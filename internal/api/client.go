package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"roundup/internal/core"
)

const (
	userAgent        = "roundup/1.0"
	timestampLayout  = "2006-01-02T15:04:05.000Z"
	defaultTimeout   = 15 * time.Second
	maxErrorBodySize = 4 << 10
)

// Client is the live Gateway implementation over the bank's REST API.
type Client struct {
	baseURL       string
	accessToken   string
	httpClient    *http.Client
	newTransferID func() uuid.UUID
}

var _ Gateway = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTransferIDGenerator overrides how per-call transfer idempotency IDs
// are generated. Tests use this to pin the ID.
func WithTransferIDGenerator(gen func() uuid.UUID) Option {
	return func(c *Client) { c.newTransferID = gen }
}

// NewClient creates a client for the API at baseURL. The access token is
// attached as a bearer token when non-empty.
func NewClient(baseURL, accessToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		accessToken:   accessToken,
		httpClient:    &http.Client{Timeout: defaultTimeout},
		newTransferID: uuid.New,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Accounts implements Gateway.
func (c *Client) Accounts(ctx context.Context) ([]core.Account, error) {
	var out accountsResponse
	if err := c.get(ctx, "/api/v2/accounts", nil, &out); err != nil {
		return nil, fmt.Errorf("get accounts: %w", err)
	}
	return out.toAccounts(), nil
}

// AccountFeed implements Gateway.
func (c *Client) AccountFeed(ctx context.Context, accountID uuid.UUID, categoryID string, interval core.WeekInterval) ([]core.FeedItem, error) {
	path := fmt.Sprintf("/api/v2/feed/account/%s/category/%s/transactions-between", accountID, url.PathEscape(categoryID))
	query := url.Values{
		"minTransactionTimestamp": []string{interval.Start.UTC().Format(timestampLayout)},
		"maxTransactionTimestamp": []string{interval.End.UTC().Format(timestampLayout)},
	}
	var out feedResponse
	if err := c.get(ctx, path, query, &out); err != nil {
		return nil, fmt.Errorf("get account feed: %w", err)
	}
	return out.toFeedItems(), nil
}

// SavingsGoals implements Gateway.
func (c *Client) SavingsGoals(ctx context.Context, accountID uuid.UUID) ([]core.SavingsGoal, error) {
	var out savingsGoalsResponse
	if err := c.get(ctx, fmt.Sprintf("/api/v2/account/%s/savings-goals", accountID), nil, &out); err != nil {
		return nil, fmt.Errorf("get savings goals: %w", err)
	}
	return out.toSavingsGoals(), nil
}

// CreateSavingsGoal implements Gateway.
func (c *Client) CreateSavingsGoal(ctx context.Context, accountID uuid.UUID, name, currency string) (core.SavingsGoal, error) {
	body := createSavingsGoalRequest{Name: name, Currency: currency}
	var out createSavingsGoalResponse
	if err := c.put(ctx, fmt.Sprintf("/api/v2/account/%s/savings-goals", accountID), body, &out); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create savings goal: %w", err)
	}
	if out.SavingsGoalUID == nil || out.Success == nil || !*out.Success {
		return core.SavingsGoal{}, core.ErrCreateSavingsGoal
	}
	return core.SavingsGoal{ID: *out.SavingsGoalUID}, nil
}

// TransferToSavingsGoal implements Gateway. A fresh transfer ID is minted
// per call so retries are idempotent on the API side.
func (c *Client) TransferToSavingsGoal(ctx context.Context, accountID uuid.UUID, goalID uuid.UUID, amount core.Money) (bool, error) {
	transferID := c.newTransferID()
	path := fmt.Sprintf("/api/v2/account/%s/savings-goals/%s/add-money/%s", accountID, goalID, transferID)
	body := transferRequest{Amount: currencyAndAmount{Currency: amount.Currency, MinorUnits: amount.MinorUnits}}
	var out transferResponse
	if err := c.put(ctx, path, body, &out); err != nil {
		return false, fmt.Errorf("transfer to savings goal: %w", err)
	}
	success := out.Success != nil && *out.Success
	slog.DebugContext(ctx, "Transfer call completed",
		"transfer_id", transferID,
		"goal_id", goalID,
		"success", success)
	return success, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := readErrorMessage(resp.Body)
		return &Error{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorMessage extracts a short description from an error payload.
// The API reports either {"error_description": ...} or {"errors": [{"message": ...}]}.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return ""
	}
	var payload struct {
		ErrorDescription string `json:"error_description"`
		Errors           []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.ErrorDescription != "" {
		return payload.ErrorDescription
	}
	if len(payload.Errors) > 0 {
		return payload.Errors[0].Message
	}
	return ""
}
