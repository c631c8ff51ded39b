package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/familyfinance/finchat/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLedger is an in-memory Ledger with switchable failures.
type memLedger struct {
	mu        sync.Mutex
	banks     []store.Bank
	finances  []store.Finance
	nextID    int64
	createErr error
	listErr   error
}

func (l *memLedger) ListBanks(_ context.Context, userID int64) ([]store.Bank, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []store.Bank
	for _, b := range l.banks {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (l *memLedger) ListFinancesByType(_ context.Context, userID int64, financeType store.FinanceType, limit int) ([]store.Finance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listErr != nil {
		return nil, l.listErr
	}
	var out []store.Finance
	for i := len(l.finances) - 1; i >= 0; i-- {
		f := l.finances[i]
		if f.UserID == userID && f.Type == financeType {
			out = append(out, f)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *memLedger) CreateFinance(_ context.Context, f *store.Finance) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.createErr != nil {
		return l.createErr
	}
	l.nextID++
	f.ID = l.nextID
	f.Date = time.Now()
	l.finances = append(l.finances, *f)
	return nil
}

func (l *memLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.finances)
}

func (l *memLedger) add(userID int64, t store.FinanceType, desc, amount string) {
	l.finances = append(l.finances, store.Finance{
		ID: int64(len(l.finances) + 1), UserID: userID, Type: t, Description: desc, Amount: decimal.RequireFromString(amount),
	})
}

func newTestChatService(t *testing.T, ledger Ledger) (*ChatService, *MemoryPendingStore) {
	t.Helper()
	pending := NewMemoryPendingStore(time.Minute)
	t.Cleanup(pending.Close)
	return NewChatService(ledger, pending), pending
}

func TestHandleMessage_EmptyShowsHelp(t *testing.T) {
	svc, pending := newTestChatService(t, &memLedger{})

	for _, msg := range []string{"", "   ", "\n\t"} {
		reply, err := svc.HandleMessage(context.Background(), 1, msg)
		require.NoError(t, err)
		assert.Equal(t, ReplyHelp, reply)
	}
	assert.Equal(t, 0, pending.Len())
}

func TestHandleMessage_Balance(t *testing.T) {
	ledger := &memLedger{}
	ledger.add(1, store.FinanceIncome, "salário", "500")
	ledger.add(1, store.FinanceIncome, "freela", "200")
	ledger.add(1, store.FinanceExpense, "mercado", "150")
	ledger.add(1, store.FinanceExpense, "luz", "50")
	ledger.add(2, store.FinanceIncome, "outro usuário", "9999")

	svc, _ := newTestChatService(t, ledger)
	reply, err := svc.HandleMessage(context.Background(), 1, "Qual é meu saldo?")
	require.NoError(t, err)
	assert.Contains(t, reply, "R$ 500,00")
	assert.Equal(t, "💰 Seu saldo atual é de R$ 500,00.", reply)

	balance, err := svc.Balance(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestHandleMessage_ConfirmIncome(t *testing.T) {
	ledger := &memLedger{banks: []store.Bank{{ID: 4, UserID: 1, Name: "Itaú"}, {ID: 5, UserID: 1, Name: "Nubank"}}}
	svc, pending := newTestChatService(t, ledger)
	ctx := context.Background()

	reply, err := svc.HandleMessage(ctx, 1, "recebi 200 salário no nubank")
	require.NoError(t, err)
	assert.Equal(t, `Você quer adicionar uma entrada de R$ 200,00 no Banco Nubank com a descrição "recebi  salário no nubank", correto? (sim/não)`, reply)
	_, ok := pending.Get(1)
	require.True(t, ok)
	assert.Equal(t, 0, ledger.count())

	reply, err = svc.HandleMessage(ctx, 1, "SIM")
	require.NoError(t, err)
	assert.Equal(t, "✅ Entrada adicionada com sucesso: recebi  salário no nubank - R$ 200,00 (Banco: Nubank)", reply)

	require.Equal(t, 1, ledger.count())
	f := ledger.finances[0]
	assert.True(t, decimal.NewFromInt(200).Equal(f.Amount))
	assert.Equal(t, store.FinanceIncome, f.Type)
	require.NotNil(t, f.BankID)
	assert.Equal(t, int64(5), *f.BankID)

	_, ok = pending.Get(1)
	assert.False(t, ok)

	// A second "sim" is a fresh turn, not a duplicate entry.
	reply, err = svc.HandleMessage(ctx, 1, "sim")
	require.NoError(t, err)
	assert.Equal(t, ReplyUnknown, reply)
	assert.Equal(t, 1, ledger.count())
}

func TestHandleMessage_CancelExpense(t *testing.T) {
	ledger := &memLedger{}
	svc, pending := newTestChatService(t, ledger)
	ctx := context.Background()

	reply, err := svc.HandleMessage(ctx, 1, "Pagar conta de luz 200 reais")
	require.NoError(t, err)
	assert.Equal(t, `Você quer registrar uma despesa de R$ 200,00 no Banco padrão com a descrição "conta de luz", correto? (sim/não)`, reply)

	reply, err = svc.HandleMessage(ctx, 1, "talvez")
	require.NoError(t, err)
	assert.Equal(t, ReplyConfirmYesNo, reply)
	_, ok := pending.Get(1)
	assert.True(t, ok, "ambiguous answer keeps the action")

	reply, err = svc.HandleMessage(ctx, 1, "Não")
	require.NoError(t, err)
	assert.Equal(t, ReplyCancelled, reply)
	assert.Equal(t, 0, ledger.count())
	_, ok = pending.Get(1)
	assert.False(t, ok)
}

func TestHandleMessage_ConfirmationIsExact(t *testing.T) {
	svc, pending := newTestChatService(t, &memLedger{})
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, 1, "gastei 10")
	require.NoError(t, err)

	reply, err := svc.HandleMessage(ctx, 1, " sim ")
	require.NoError(t, err)
	assert.Equal(t, ReplyConfirmYesNo, reply)

	reply, err = svc.HandleMessage(ctx, 1, "nao")
	require.NoError(t, err)
	assert.Equal(t, ReplyCancelled, reply)
	assert.Equal(t, 0, pending.Len())
}

func TestHandleMessage_MissingAmount(t *testing.T) {
	svc, pending := newTestChatService(t, &memLedger{})

	for _, msg := range []string{"quero adicionar dinheiro", "pagar 0 de luz"} {
		reply, err := svc.HandleMessage(context.Background(), 1, msg)
		require.NoError(t, err)
		assert.Equal(t, ReplyMissingAmount, reply, msg)
	}
	assert.Equal(t, 0, pending.Len())
}

func TestHandleMessage_Unknown(t *testing.T) {
	svc, _ := newTestChatService(t, &memLedger{})

	assert.Equal(t, IntentUnknown, Classify("banana com feijão"))
	reply, err := svc.HandleMessage(context.Background(), 1, "banana com feijão")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(reply), "não entendi")
}

func TestHandleMessage_RecentLists(t *testing.T) {
	ledger := &memLedger{}
	svc, _ := newTestChatService(t, ledger)
	ctx := context.Background()

	svc.classify = func(string) Intent { return IntentRecentIncomes }
	reply, err := svc.HandleMessage(ctx, 1, "últimas entradas")
	require.NoError(t, err)
	assert.Equal(t, ReplyNoIncomes, reply)

	for i := 1; i <= 6; i++ {
		ledger.add(1, store.FinanceIncome, fmt.Sprintf("pix %d", i), fmt.Sprintf("%d0", i))
	}
	reply, err = svc.HandleMessage(ctx, 1, "últimas entradas")
	require.NoError(t, err)
	lines := strings.Split(reply, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, recentIncomesHeader, lines[0])
	assert.Equal(t, "- pix 6: R$ 60,00", lines[1])
	assert.Equal(t, "- pix 2: R$ 20,00", lines[5])

	svc.classify = func(string) Intent { return IntentRecentExpenses }
	reply, err = svc.HandleMessage(ctx, 1, "últimas despesas")
	require.NoError(t, err)
	assert.Equal(t, ReplyNoExpenses, reply)
}

func TestHandleMessage_StoreErrors(t *testing.T) {
	boom := errors.New("db down")
	ctx := context.Background()

	t.Run("balance", func(t *testing.T) {
		svc, _ := newTestChatService(t, &memLedger{listErr: boom})
		_, err := svc.HandleMessage(ctx, 1, "saldo")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("confirm keeps the action", func(t *testing.T) {
		ledger := &memLedger{}
		svc, pending := newTestChatService(t, ledger)

		_, err := svc.HandleMessage(ctx, 1, "ganhei 50")
		require.NoError(t, err)

		ledger.createErr = boom
		_, err = svc.HandleMessage(ctx, 1, "sim")
		assert.ErrorIs(t, err, boom)
		_, ok := pending.Get(1)
		assert.True(t, ok)

		ledger.createErr = nil
		reply, err := svc.HandleMessage(ctx, 1, "sim")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(reply, "✅ Entrada adicionada com sucesso"))
		assert.Equal(t, 1, ledger.count())
	})
}

func TestHandleMessage_ConcurrentConfirmations(t *testing.T) {
	ledger := &memLedger{}
	svc, _ := newTestChatService(t, ledger)
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, 1, "depositar 100")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.HandleMessage(ctx, 1, "sim")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ledger.count())
}

func TestChatService_WithSQLite(t *testing.T) {
	db, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	user := &store.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "h"}
	require.NoError(t, db.CreateUser(ctx, user))
	require.NoError(t, db.CreateBank(ctx, &store.Bank{UserID: user.ID, Name: "Nubank"}))
	require.NoError(t, db.CreateBank(ctx, &store.Bank{UserID: user.ID, Name: "Itaú"}))

	svc, _ := newTestChatService(t, db)

	steps := []struct {
		message string
		prefix  string
	}{
		{"recebi 700 de salário no itaú", "Você quer adicionar uma entrada de R$ 700,00 no Banco Itaú"},
		{"sim", "✅ Entrada adicionada com sucesso"},
		{"gastei 200,00 no mercado", "Você quer registrar uma despesa de R$ 200,00 no Banco Nubank"},
		{"sim", "✅ Despesa adicionada com sucesso"},
		{"qual meu saldo", "💰 Seu saldo atual é de R$ 500,00."},
	}
	for _, step := range steps {
		reply, err := svc.HandleMessage(ctx, user.ID, step.message)
		require.NoError(t, err, step.message)
		assert.True(t, strings.HasPrefix(reply, step.prefix), "%q -> %q", step.message, reply)
	}

	finances, err := db.ListFinances(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, finances, 2)
}

func TestHandleMessage_AmountStagedInCents(t *testing.T) {
	ledger := &memLedger{}
	svc, _ := newTestChatService(t, ledger)
	ctx := context.Background()

	reply, err := svc.HandleMessage(ctx, 1, "gastei 10,555")
	require.NoError(t, err)
	assert.Contains(t, reply, "R$ 10,56")

	_, err = svc.HandleMessage(ctx, 1, "sim")
	require.NoError(t, err)
	require.Equal(t, 1, ledger.count())
	assert.Equal(t, "10.56", ledger.finances[0].Amount.String())

	reply, err = svc.HandleMessage(ctx, 1, "pagar 0,001 de taxa")
	require.NoError(t, err)
	assert.Equal(t, ReplyMissingAmount, reply)
}
