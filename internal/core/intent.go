package core

import "strings"

// Intent is the category a chat message is classified into.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentIncome
	IntentExpense
	IntentBalance
	IntentRecentIncomes
	IntentRecentExpenses
)

func (i Intent) String() string {
	switch i {
	case IntentIncome:
		return "income"
	case IntentExpense:
		return "expense"
	case IntentBalance:
		return "balance"
	case IntentRecentIncomes:
		return "recent_incomes"
	case IntentRecentExpenses:
		return "recent_expenses"
	default:
		return "unknown"
	}
}

// IntentRulesVersion changes whenever a keyword or the rule order changes.
const IntentRulesVersion = 1

// IntentRule matches when the lower-cased message contains any of its keywords.
type IntentRule struct {
	Intent   Intent
	Keywords []string
}

// intentRules is evaluated top to bottom and the first match wins. Income and
// expense come before balance, so "adicionar 10 ao saldo" is an income.
var intentRules = []IntentRule{
	{Intent: IntentIncome, Keywords: []string{"adicionar", "depositar", "recebi", "ganhei", "entrada", "receita"}},
	{Intent: IntentExpense, Keywords: []string{"pagar", "comprar", "conta", "despesa", "gastei", "saída", "saida"}},
	{Intent: IntentBalance, Keywords: []string{"saldo"}},
	{Intent: IntentRecentIncomes, Keywords: []string{"entradas", "receitas"}},
	{Intent: IntentRecentExpenses, Keywords: []string{"saídas", "saidas", "despesas"}},
}

// IntentRules returns a copy of the ordered rule table.
func IntentRules() []IntentRule {
	rules := make([]IntentRule, len(intentRules))
	for i, r := range intentRules {
		rules[i] = IntentRule{Intent: r.Intent, Keywords: append([]string(nil), r.Keywords...)}
	}
	return rules
}

// Classify maps free text to an Intent using substring keyword checks.
func Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Intent
			}
		}
	}
	return IntentUnknown
}
