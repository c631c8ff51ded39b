package core

import (
	"fmt"
	"strings"

	"github.com/familyfinance/finchat/internal/store"
	"github.com/familyfinance/finchat/internal/utils"
	"github.com/shopspring/decimal"
)

const (
	ReplyHelp = `Olá! Sou seu assistente financeiro 💬
Você pode me pedir coisas como:
- "Adicionar 500 reais no Itaú"
- "Pagar conta de luz 200 reais"
- "Qual é meu saldo?"
- "Me mostre as últimas entradas ou saídas"

Antes de registrar valores, sempre pedirei confirmação.`

	ReplyCancelled       = "Ok, ação cancelada. Por favor, envie novamente o valor e a descrição."
	ReplyConfirmYesNo    = "Por favor, responda apenas com 'sim' ou 'não' para confirmar a ação."
	ReplyMissingAmount   = "Não consegui identificar o valor. Tente escrever algo como: 'Quero adicionar 500 reais'."
	ReplyUnknown         = "Desculpe, não entendi. Você pode tentar: saldo, entradas, saídas ou adicionar uma entrada/despesa."
	ReplyNoIncomes       = "Você ainda não tem entradas registradas."
	ReplyNoExpenses      = "Você ainda não tem despesas registradas."
	ReplyInternalError   = "Erro interno ao processar a mensagem."
	defaultBankLabel     = "padrão"
	recentFinancesLimit  = 5
	recentIncomesHeader  = "📈 Suas últimas entradas:"
	recentExpensesHeader = "📉 Suas últimas despesas:"
)

func balanceReply(balance decimal.Decimal) string {
	return fmt.Sprintf("💰 Seu saldo atual é de %s.", utils.FormatReais(balance))
}

func recentReply(header string, finances []store.Finance) string {
	lines := make([]string, 0, len(finances))
	for _, f := range finances {
		lines = append(lines, fmt.Sprintf("- %s: %s", f.Description, utils.FormatReais(f.Amount)))
	}
	return header + "\n" + strings.Join(lines, "\n")
}

func confirmationPrompt(action PendingAction) string {
	verb := "registrar uma despesa"
	if action.Kind == IntentIncome {
		verb = "adicionar uma entrada"
	}
	bankName := defaultBankLabel
	if action.Bank != nil && action.Bank.Name != "" {
		bankName = action.Bank.Name
	}
	return fmt.Sprintf("Você quer %s de %s no Banco %s com a descrição \"%s\", correto? (sim/não)",
		verb, utils.FormatReais(action.Amount), bankName, action.Description)
}

func confirmedReply(action PendingAction) string {
	label := "Despesa"
	if action.Kind == IntentIncome {
		label = "Entrada"
	}
	reply := fmt.Sprintf("✅ %s adicionada com sucesso: %s - %s", label, action.Description, utils.FormatReais(action.Amount))
	if action.Bank != nil {
		reply += fmt.Sprintf(" (Banco: %s)", action.Bank.Name)
	}
	return reply
}
