package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/familyfinance/finchat/internal/store"
	"github.com/familyfinance/finchat/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger is the persistence the assistant reads from and writes to.
type Ledger interface {
	BankLister
	ListFinancesByType(ctx context.Context, userID int64, financeType store.FinanceType, limit int) ([]store.Finance, error)
	CreateFinance(ctx context.Context, finance *store.Finance) error
}

// ChatService runs one conversational turn at a time per user. A user is
// either idle or waiting to confirm the action held in the pending store.
type ChatService struct {
	ledger   Ledger
	banks    *BankResolver
	pending  PendingStore
	locks    *userLocks
	classify func(string) Intent
}

func NewChatService(ledger Ledger, pending PendingStore) *ChatService {
	return &ChatService{
		ledger:   ledger,
		banks:    NewBankResolver(ledger),
		pending:  pending,
		locks:    newUserLocks(),
		classify: Classify,
	}
}

// HandleMessage answers one message. Conversational dead ends (no value, no
// match, ambiguous confirmation) are replies, not errors; an error means a
// collaborator failed and nothing was persisted.
func (s *ChatService) HandleMessage(ctx context.Context, userID int64, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		chatTurnsTotal.WithLabelValues(outcomeHelp).Inc()
		return ReplyHelp, nil
	}

	unlock := s.locks.lock(userID)
	defer unlock()
	defer s.reportPending()

	if action, ok := s.pending.Get(userID); ok {
		return s.handleConfirmation(ctx, userID, message, action)
	}

	reply, outcome, err := s.handleIntent(ctx, userID, message)
	if err != nil {
		chatTurnsTotal.WithLabelValues(outcomeError).Inc()
		return "", err
	}
	chatTurnsTotal.WithLabelValues(outcome).Inc()
	return reply, nil
}

func (s *ChatService) handleConfirmation(ctx context.Context, userID int64, message string, action PendingAction) (string, error) {
	switch strings.ToLower(message) {
	case "sim":
		finance := &store.Finance{
			Description: action.Description,
			Amount:      action.Amount,
			Type:        action.FinanceType(),
			UserID:      userID,
		}
		if action.Bank != nil {
			bankID := action.Bank.ID
			finance.BankID = &bankID
		}
		if err := s.ledger.CreateFinance(ctx, finance); err != nil {
			chatTurnsTotal.WithLabelValues(outcomeError).Inc()
			return "", fmt.Errorf("failed to persist pending action %s: %w", action.ID, err)
		}
		s.pending.Delete(userID)
		slog.Info("Pending action confirmed",
			"user_id", userID, "action_id", action.ID, "finance_id", finance.ID, "type", finance.Type)
		chatTurnsTotal.WithLabelValues(outcomeConfirmed).Inc()
		return confirmedReply(action), nil

	case "não", "nao":
		s.pending.Delete(userID)
		slog.Info("Pending action cancelled", "user_id", userID, "action_id", action.ID)
		chatTurnsTotal.WithLabelValues(outcomeCancelled).Inc()
		return ReplyCancelled, nil

	default:
		chatTurnsTotal.WithLabelValues(outcomeAwaitingReply).Inc()
		return ReplyConfirmYesNo, nil
	}
}

func (s *ChatService) handleIntent(ctx context.Context, userID int64, message string) (string, string, error) {
	intent := s.classify(message)
	chatIntentsTotal.WithLabelValues(intent.String()).Inc()
	slog.Debug("Intent detected", "user_id", userID, "intent", intent.String())

	switch intent {
	case IntentBalance:
		balance, err := s.Balance(ctx, userID)
		if err != nil {
			return "", "", err
		}
		return balanceReply(balance), outcomeBalance, nil

	case IntentRecentIncomes:
		return s.recent(ctx, userID, store.FinanceIncome, recentIncomesHeader, ReplyNoIncomes)

	case IntentRecentExpenses:
		return s.recent(ctx, userID, store.FinanceExpense, recentExpensesHeader, ReplyNoExpenses)

	case IntentIncome, IntentExpense:
		return s.stage(ctx, userID, message, intent)

	default:
		return ReplyUnknown, outcomeUnknown, nil
	}
}

// Balance re-aggregates every income minus every expense of the user.
func (s *ChatService) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	incomes, err := s.ledger.ListFinancesByType(ctx, userID, store.FinanceIncome, 0)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load incomes for user %d: %w", userID, err)
	}
	expenses, err := s.ledger.ListFinancesByType(ctx, userID, store.FinanceExpense, 0)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load expenses for user %d: %w", userID, err)
	}
	return utils.Sum(amounts(incomes)).Sub(utils.Sum(amounts(expenses))), nil
}

func amounts(finances []store.Finance) []decimal.Decimal {
	out := make([]decimal.Decimal, len(finances))
	for i, f := range finances {
		out[i] = f.Amount
	}
	return out
}

func (s *ChatService) recent(ctx context.Context, userID int64, financeType store.FinanceType, header, empty string) (string, string, error) {
	finances, err := s.ledger.ListFinancesByType(ctx, userID, financeType, recentFinancesLimit)
	if err != nil {
		return "", "", fmt.Errorf("failed to load recent %s for user %d: %w", financeType, userID, err)
	}
	if len(finances) == 0 {
		return empty, outcomeRecent, nil
	}
	return recentReply(header, finances), outcomeRecent, nil
}

func (s *ChatService) stage(ctx context.Context, userID int64, message string, intent Intent) (string, string, error) {
	extracted := Extract(message)
	if extracted.Amount == nil {
		return ReplyMissingAmount, outcomeMissingAmount, nil
	}
	// Amounts are staged, confirmed and stored in cents.
	amount := extracted.Amount.Round(2)
	if amount.IsZero() {
		return ReplyMissingAmount, outcomeMissingAmount, nil
	}

	bank, err := s.banks.Resolve(ctx, message, userID)
	if err != nil {
		return "", "", err
	}

	action := PendingAction{
		ID:          uuid.NewString(),
		Kind:        intent,
		Amount:      amount,
		Description: extracted.Description,
		Bank:        bank,
	}
	s.pending.Set(userID, action)
	slog.Info("Pending action staged",
		"user_id", userID, "action_id", action.ID, "intent", intent.String(), "amount", action.Amount.String())

	return confirmationPrompt(action), outcomeStaged, nil
}

func (s *ChatService) reportPending() {
	if counter, ok := s.pending.(interface{ Len() int }); ok {
		pendingActionsGauge.Set(float64(counter.Len()))
	}
}
