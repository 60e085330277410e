// Package feed owns the "which week is on screen" state of one account's
// transaction feed and drives week-by-week pagination against the API.
package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"roundup/internal/alert"
	"roundup/internal/core"
)

// Fetcher is the slice of the API gateway the controller needs.
type Fetcher interface {
	AccountFeed(ctx context.Context, accountID uuid.UUID, categoryID string, interval core.WeekInterval) ([]core.FeedItem, error)
}

// ChangeKind discriminates the observable state transitions a controller
// publishes. On a successful fetch the order is fixed: items, then
// interval, then loading=false.
type ChangeKind int

const (
	ChangeItems ChangeKind = iota
	ChangeInterval
	ChangeLoading
)

// Change is one published state transition. Only the field matching Kind
// is meaningful.
type Change struct {
	Kind     ChangeKind
	Items    []core.FeedItem
	Interval core.WeekInterval
	Loading  bool
}

// Controller maintains the displayed week and its feed items for a single
// account screen. One in-flight fetch is allowed at a time; navigation
// requested while loading is dropped, not queued.
type Controller struct {
	account core.Account
	gateway Fetcher
	alerts  *alert.Queue

	mu        sync.Mutex
	interval  *core.WeekInterval
	items     []core.FeedItem
	loading   bool
	observers []func(Change)
}

// NewController creates a controller for account. Failures are routed into
// alerts rather than returned to callers.
func NewController(account core.Account, gateway Fetcher, alerts *alert.Queue) *Controller {
	return &Controller{
		account: account,
		gateway: gateway,
		alerts:  alerts,
	}
}

// Subscribe registers fn to receive every state change, in publish order.
// fn runs with the controller's lock held and must not call back into it.
func (c *Controller) Subscribe(fn func(Change)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Items returns a snapshot of the current week's feed items.
func (c *Controller) Items() []core.FeedItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]core.FeedItem, len(c.items))
	copy(items, c.items)
	return items
}

// Interval returns the displayed week, if one has been published yet.
func (c *Controller) Interval() (core.WeekInterval, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interval == nil {
		return core.WeekInterval{}, false
	}
	return *c.interval, true
}

// IsLoading reports whether a fetch is in flight.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Account returns the account this controller serves.
func (c *Controller) Account() core.Account {
	return c.account
}

// LoadInitial fetches the week containing ref. The loading flag flips
// before this returns; the fetch itself completes asynchronously.
func (c *Controller) LoadInitial(ctx context.Context, ref time.Time) {
	interval, err := core.WeekIntervalContaining(ref)
	if err != nil {
		slog.ErrorContext(ctx, "Week resolution failed", "account_id", c.account.ID, "ref", ref)
		c.alerts.Push(err.Error())
		return
	}
	c.startFetch(ctx, interval)
}

// LoadNextWeek advances the displayed week. A no-op while loading or
// before the first interval is published.
func (c *Controller) LoadNextWeek(ctx context.Context) {
	c.navigate(ctx, core.WeekInterval.Next)
}

// LoadPreviousWeek rewinds the displayed week under the same guards.
func (c *Controller) LoadPreviousWeek(ctx context.Context) {
	c.navigate(ctx, core.WeekInterval.Previous)
}

// Reload refetches the currently displayed interval in place. Used after a
// round-up transfer lands so the new feed state shows up.
func (c *Controller) Reload(ctx context.Context) {
	c.mu.Lock()
	if c.interval == nil || c.loading {
		c.mu.Unlock()
		return
	}
	interval := *c.interval
	c.mu.Unlock()
	c.startFetch(ctx, interval)
}

func (c *Controller) navigate(ctx context.Context, shift func(core.WeekInterval) core.WeekInterval) {
	c.mu.Lock()
	if c.interval == nil || c.loading {
		c.mu.Unlock()
		return
	}
	target := shift(*c.interval)
	c.loading = true
	c.publishLocked(Change{Kind: ChangeLoading, Loading: true})
	c.mu.Unlock()

	go c.fetch(ctx, target)
}

func (c *Controller) startFetch(ctx context.Context, interval core.WeekInterval) {
	c.mu.Lock()
	c.loading = true
	c.publishLocked(Change{Kind: ChangeLoading, Loading: true})
	c.mu.Unlock()

	go c.fetch(ctx, interval)
}

// fetch runs off the caller's goroutine. On success it publishes items,
// interval and loading=false in that order; on failure the previous items
// and interval stay untouched.
func (c *Controller) fetch(ctx context.Context, interval core.WeekInterval) {
	items, err := c.gateway.AccountFeed(ctx, c.account.ID, c.account.DefaultCategory, interval)
	if err != nil {
		slog.ErrorContext(ctx, "Feed fetch failed",
			"account_id", c.account.ID,
			"interval_start", interval.Start,
			"error", err)
		c.alerts.Push(err.Error())
		c.mu.Lock()
		c.loading = false
		c.publishLocked(Change{Kind: ChangeLoading, Loading: false})
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.items = items
	c.publishLocked(Change{Kind: ChangeItems, Items: items})
	c.interval = &interval
	c.publishLocked(Change{Kind: ChangeInterval, Interval: interval})
	c.loading = false
	c.publishLocked(Change{Kind: ChangeLoading, Loading: false})
	c.mu.Unlock()
}

func (c *Controller) publishLocked(change Change) {
	for _, fn := range c.observers {
		fn(change)
	}
}
