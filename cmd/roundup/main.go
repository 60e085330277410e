package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"roundup/internal/alert"
	"roundup/internal/amqp"
	"roundup/internal/api"
	"roundup/internal/cli"
	"roundup/internal/core"
	"roundup/internal/feed"
	"roundup/internal/roundup"
	"roundup/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("cli")

	logger.Info("Starting roundup")

	cfg := cli.LoadAndValidateConfig(logger)

	gateway := api.NewClient(cfg.APIBaseURL, cfg.AccessToken)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
	} else {
		logger.Info("AMQP disabled - transfers are recorded locally only")
	}

	transferService := services.NewTransferService(sqliteRepo, publisher)
	accountService := services.NewAccountService(gateway, cfg.AccountCacheTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Drain sync messages left over from a previous run.
	if publisher != nil {
		if err := transferService.RepublishPending(ctx, cfg.RepublishBatchSize); err != nil {
			logger.Warn("Failed to republish pending transfers", "error", err)
		}
	}

	account, err := chooseAccount(ctx, accountService)
	if err != nil {
		logger.Error("Failed to select account", "error", err)
		os.Exit(1)
	}

	s := newSession(account, gateway, transferService)
	s.run(ctx)
}

func chooseAccount(ctx context.Context, accounts *services.AccountService) (core.Account, error) {
	list, err := accounts.Accounts(ctx)
	if err != nil {
		return core.Account{}, err
	}
	if len(list) == 0 {
		return core.Account{}, fmt.Errorf("no accounts available")
	}
	if len(list) == 1 {
		return list[0], nil
	}

	fmt.Println("Accounts:")
	for i, account := range list {
		fmt.Printf("  %d) %s (%s, %s)\n", i+1, account.Name, account.AccountType.DisplayName(), account.Currency)
	}
	fmt.Print("Select account: ")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil && n >= 1 && n <= len(list) {
			return list[n-1], nil
		}
		fmt.Printf("Enter a number between 1 and %d: ", len(list))
	}
	return core.Account{}, fmt.Errorf("no account selected")
}

// session owns the interactive feed screen for one account: the displayed
// week, its round-up workflow and the alert stream.
type session struct {
	account      core.Account
	alerts       *alert.Queue
	controller   *feed.Controller
	orchestrator *roundup.Orchestrator

	// renderCh coalesces redraw requests; observers run under the
	// publishers' locks and must not read state back directly.
	renderCh chan struct{}
}

func newSession(account core.Account, gateway *api.Client, recorder roundup.Recorder) *session {
	s := &session{
		account:  account,
		renderCh: make(chan struct{}, 1),
	}
	s.alerts = alert.NewQueue(s.requestRender)
	s.controller = feed.NewController(account, gateway, s.alerts)
	s.controller.Subscribe(func(feed.Change) { s.requestRender() })
	s.orchestrator = roundup.NewOrchestrator(account, gateway, s.controller, s.alerts, recorder)
	s.orchestrator.SetOnChange(s.requestRender)
	return s
}

func (s *session) run(ctx context.Context) {
	go func() {
		for range s.renderCh {
			s.render()
		}
	}()

	fmt.Printf("Feed for %s. Commands: next, prev, roundup, yes, no, dismiss, show, quit\n", s.account.Name)
	s.controller.LoadInitial(ctx, time.Now())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "next", "n":
			s.controller.LoadNextWeek(ctx)
		case "prev", "p":
			s.controller.LoadPreviousWeek(ctx)
		case "roundup", "r":
			s.orchestrator.Start(ctx)
		case "yes", "y":
			s.confirm(ctx)
		case "no", "c":
			s.orchestrator.Cancel()
		case "dismiss", "d":
			if active, ok := s.alerts.Active(); ok {
				s.alerts.Dismiss(active)
			}
		case "show", "s":
			s.requestRender()
		case "quit", "q":
			return
		case "":
		default:
			fmt.Println("Commands: next, prev, roundup, yes, no, dismiss, show, quit")
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("Reading input failed", "error", err)
	}
}

// confirm answers whichever prompt is pending.
func (s *session) confirm(ctx context.Context) {
	prompt, ok := s.orchestrator.Prompt()
	if !ok {
		return
	}
	switch prompt.Kind {
	case roundup.PromptCreateGoal:
		s.orchestrator.ConfirmGoalCreation(ctx)
	case roundup.PromptConfirmTransfer:
		s.orchestrator.ConfirmTransfer(ctx)
	case roundup.PromptTransferDone:
		s.orchestrator.AcknowledgeSuccess(ctx)
	}
}

func (s *session) requestRender() {
	select {
	case s.renderCh <- struct{}{}:
	default:
	}
}

func (s *session) render() {
	var b strings.Builder

	if interval, ok := s.controller.Interval(); ok {
		fmt.Fprintf(&b, "\n== %s ==\n", interval.Format())
	} else {
		b.WriteString("\n== loading feed ==\n")
	}

	items := s.controller.Items()
	if len(items) == 0 {
		b.WriteString("  (no transactions this week)\n")
	}
	for _, item := range items {
		marker := "+"
		if item.Direction == core.Outbound {
			marker = "-"
		}
		amount := "pending"
		if item.Amount != nil {
			amount = item.Amount.String()
		}
		fmt.Fprintf(&b, "  %s %-10s %s\n", marker, amount, item.Reference)
	}

	if s.controller.IsLoading() {
		b.WriteString("  loading...\n")
	}
	if prompt, ok := s.orchestrator.Prompt(); ok {
		fmt.Fprintf(&b, "\n%s [yes/no]\n", prompt.Message)
	} else if s.orchestrator.IsRoundingUp() {
		b.WriteString("\nworking on your round-up...\n")
	}
	if active, ok := s.alerts.Active(); ok {
		fmt.Fprintf(&b, "\n! %s [dismiss]\n", active)
	}

	fmt.Print(b.String())
}
