package store

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts and balances go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// FinanceType is the persisted direction of a finance entry.
type FinanceType string

const (
	FinanceIncome  FinanceType = "entrada"
	FinanceExpense FinanceType = "saida"
)

// Valid reports whether t is one of the known finance types.
func (t FinanceType) Valid() bool {
	return t == FinanceIncome || t == FinanceExpense
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Do not expose this in JSON responses
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Bank struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Name        string          `json:"name"`
	AccountType string          `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"`
	Logo        *string         `json:"logo"` // Nullable
}

// Finance is a single income or expense entry.
type Finance struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        FinanceType     `json:"type"`
	BankID      *int64          `json:"bankId"` // Nullable
	UserID      int64           `json:"userId"`
	Date        time.Time       `json:"date"`
}
