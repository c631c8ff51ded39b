package core

import (
	"regexp"
	"strings"

	"github.com/familyfinance/finchat/internal/utils"
	"github.com/shopspring/decimal"
)

const defaultDescription = "Sem descrição"

var (
	amountPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	// Stop words are stripped as raw substrings, so "um" also leaves "algum" as "alg".
	stopWordPattern = regexp.MustCompile(`(?i)(quero|adicionar|pagar|uma|um|reais|dinheiro|entrada|saída|despesa|receita)`)
)

// ExtractedTransaction is the amount and description pulled out of a message.
// Amount is nil when the message has no number in it.
type ExtractedTransaction struct {
	Amount      *decimal.Decimal
	Description string
}

// Extract takes the first number in text as the amount and what is left,
// minus stop words, as the description.
func Extract(text string) ExtractedTransaction {
	var out ExtractedTransaction

	rest := text
	if loc := amountPattern.FindStringIndex(text); loc != nil {
		if amount, err := utils.ParseAmount(text[loc[0]:loc[1]]); err == nil {
			out.Amount = &amount
		}
		rest = text[:loc[0]] + text[loc[1]:]
	}

	desc := strings.TrimSpace(rest)
	desc = strings.TrimSpace(stopWordPattern.ReplaceAllString(desc, ""))
	if desc == "" {
		desc = defaultDescription
	}
	out.Description = desc
	return out
}
