// Package roundup drives the multi-step round-up savings workflow: resolve
// or create a savings goal, compute the round-up amount from the displayed
// feed, confirm with the user, execute the transfer and refresh the feed.
package roundup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"roundup/internal/alert"
	"roundup/internal/core"
)

// DefaultGoalName is used when a savings goal has to be created first.
const DefaultGoalName = "Tech Challenge Round Up!"

// GoalGateway is the slice of the API gateway the orchestrator needs.
type GoalGateway interface {
	SavingsGoals(ctx context.Context, accountID uuid.UUID) ([]core.SavingsGoal, error)
	CreateSavingsGoal(ctx context.Context, accountID uuid.UUID, name, currency string) (core.SavingsGoal, error)
	TransferToSavingsGoal(ctx context.Context, accountID uuid.UUID, goalID uuid.UUID, amount core.Money) (bool, error)
}

// FeedScreen is the feed controller surface the orchestrator reads from
// and refreshes. Satisfied by *feed.Controller.
type FeedScreen interface {
	Items() []core.FeedItem
	Interval() (core.WeekInterval, bool)
	Reload(ctx context.Context)
}

// Recorder persists successfully executed transfers to the local history.
// Recording is best effort; a failure never disturbs the user-facing flow.
type Recorder interface {
	RecordRoundUp(ctx context.Context, record core.TransferRecord) error
}

// PromptKind discriminates the confirmation prompts the workflow raises.
type PromptKind int

const (
	// PromptCreateGoal asks whether to create a savings goal first.
	PromptCreateGoal PromptKind = iota
	// PromptConfirmTransfer asks to confirm sending the computed amount.
	PromptConfirmTransfer
	// PromptTransferDone acknowledges a completed transfer.
	PromptTransferDone
)

// Prompt is the pending question shown to the user. Request is set for
// transfer confirmation and acknowledgement prompts.
type Prompt struct {
	Kind    PromptKind
	Request *core.RoundUpSavingsRequest
	Message string
}

// Orchestrator runs one account's round-up workflow. At most one run is
// active at a time, tracked by the roundingUp flag; it is intentionally
// independent of the feed controller's loading flag.
type Orchestrator struct {
	account  core.Account
	gateway  GoalGateway
	alerts   *alert.Queue
	screen   FeedScreen
	recorder Recorder

	mu         sync.Mutex
	roundingUp bool
	prompt     *Prompt
	onChange   func()
}

// NewOrchestrator wires the workflow for account. recorder may be nil when
// no local history is configured.
func NewOrchestrator(account core.Account, gateway GoalGateway, screen FeedScreen, alerts *alert.Queue, recorder Recorder) *Orchestrator {
	return &Orchestrator{
		account:  account,
		gateway:  gateway,
		alerts:   alerts,
		screen:   screen,
		recorder: recorder,
	}
}

// SetOnChange registers a callback fired after every observable state
// change. Used by the CLI to redraw; must not call back in.
func (o *Orchestrator) SetOnChange(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onChange = fn
}

// IsRoundingUp reports whether a workflow run is active.
func (o *Orchestrator) IsRoundingUp() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.roundingUp
}

// Prompt returns the pending prompt, if any.
func (o *Orchestrator) Prompt() (Prompt, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.prompt == nil {
		return Prompt{}, false
	}
	return *o.prompt, true
}

// Start begins a run: flips roundingUp and resolves the target savings
// goal. Ignored when a run is already active.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if o.roundingUp {
		o.mu.Unlock()
		return
	}
	o.roundingUp = true
	o.notifyLocked()
	o.mu.Unlock()

	go o.resolveGoal(ctx)
}

// ConfirmGoalCreation answers the "create one?" prompt affirmatively.
func (o *Orchestrator) ConfirmGoalCreation(ctx context.Context) {
	if !o.takePrompt(PromptCreateGoal) {
		return
	}
	go o.createGoal(ctx)
}

// ConfirmTransfer answers the transfer confirmation prompt affirmatively.
func (o *Orchestrator) ConfirmTransfer(ctx context.Context) {
	o.mu.Lock()
	if o.prompt == nil || o.prompt.Kind != PromptConfirmTransfer || o.prompt.Request == nil {
		o.mu.Unlock()
		return
	}
	request := *o.prompt.Request
	o.prompt = nil
	o.notifyLocked()
	o.mu.Unlock()

	go o.transfer(ctx, request)
}

// AcknowledgeSuccess dismisses the "successfully sent" prompt and reloads
// the feed for the interval currently shown.
func (o *Orchestrator) AcknowledgeSuccess(ctx context.Context) {
	if !o.takePrompt(PromptTransferDone) {
		return
	}
	o.screen.Reload(ctx)
}

// Cancel dismisses any pending prompt without acting on it and returns
// the workflow to idle.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prompt = nil
	o.roundingUp = false
	o.notifyLocked()
}

func (o *Orchestrator) resolveGoal(ctx context.Context) {
	goals, err := o.gateway.SavingsGoals(ctx, o.account.ID)
	if err != nil {
		o.fail(ctx, err)
		return
	}
	if len(goals) == 0 {
		o.setPrompt(&Prompt{
			Kind:    PromptCreateGoal,
			Message: "You don't have a current savings account, do you want to proceed to create one?",
		})
		return
	}
	// The API returns goals in its own order; the first one wins.
	o.promptTransfer(goals[0])
}

func (o *Orchestrator) createGoal(ctx context.Context) {
	goal, err := o.gateway.CreateSavingsGoal(ctx, o.account.ID, DefaultGoalName, o.account.Currency)
	if err != nil {
		o.fail(ctx, err)
		return
	}
	o.promptTransfer(goal)
}

func (o *Orchestrator) promptTransfer(goal core.SavingsGoal) {
	amount := o.computeAmount()
	request := core.RoundUpSavingsRequest{Goal: goal, Amount: amount}
	o.setPrompt(&Prompt{
		Kind:    PromptConfirmTransfer,
		Request: &request,
		Message: fmt.Sprintf("You are about to send this amount %s to your savings goal.", amount),
	})
}

// computeAmount sums the outbound feed amounts and their individually
// rounded-up counterparts; the transfer amount is the difference, which is
// never negative.
func (o *Orchestrator) computeAmount() core.Money {
	original := core.Zero(o.account.Currency)
	rounded := core.Zero(o.account.Currency)
	for _, item := range o.screen.Items() {
		if item.Direction != core.Outbound || item.Amount == nil {
			continue
		}
		original = original.Add(*item.Amount)
		rounded = rounded.Add(item.Amount.RoundUpToNearestHundred())
	}
	return rounded.Subtract(original)
}

func (o *Orchestrator) transfer(ctx context.Context, request core.RoundUpSavingsRequest) {
	ok, err := o.gateway.TransferToSavingsGoal(ctx, o.account.ID, request.Goal.ID, request.Amount)
	if err != nil {
		o.fail(ctx, err)
		return
	}
	if !ok {
		// The API acknowledged the call but reported failure without a
		// reason; surfaced the same way as a hard failure.
		o.fail(ctx, core.ErrUnknown)
		return
	}

	o.record(ctx, request)

	o.mu.Lock()
	o.prompt = &Prompt{
		Kind:    PromptTransferDone,
		Request: &request,
		Message: fmt.Sprintf("Successfully sent %s to your savings goal.", request.Amount),
	}
	o.roundingUp = false
	o.notifyLocked()
	o.mu.Unlock()
}

func (o *Orchestrator) record(ctx context.Context, request core.RoundUpSavingsRequest) {
	if o.recorder == nil {
		return
	}
	record := core.TransferRecord{
		AccountID: o.account.ID,
		GoalID:    request.Goal.ID,
		Amount:    request.Amount,
		CreatedAt: time.Now(),
	}
	if interval, ok := o.screen.Interval(); ok {
		record.IntervalStart = interval.Start
		record.IntervalEnd = interval.End
	}
	if err := o.recorder.RecordRoundUp(ctx, record); err != nil {
		slog.ErrorContext(ctx, "Failed to record round-up transfer",
			"account_id", o.account.ID,
			"goal_id", request.Goal.ID,
			"error", err)
	}
}

func (o *Orchestrator) fail(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "Round-up step failed", "account_id", o.account.ID, "error", err)
	o.alerts.Push(err.Error())
	o.mu.Lock()
	o.roundingUp = false
	o.notifyLocked()
	o.mu.Unlock()
}

// takePrompt clears the pending prompt if it matches kind, reporting
// whether it did.
func (o *Orchestrator) takePrompt(kind PromptKind) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.prompt == nil || o.prompt.Kind != kind {
		return false
	}
	o.prompt = nil
	o.notifyLocked()
	return true
}

func (o *Orchestrator) setPrompt(p *Prompt) {
	o.mu.Lock()
	o.prompt = p
	o.notifyLocked()
	o.mu.Unlock()
}

func (o *Orchestrator) notifyLocked() {
	if o.onChange != nil {
		o.onChange()
	}
}
