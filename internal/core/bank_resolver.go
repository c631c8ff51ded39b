package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/familyfinance/finchat/internal/store"
)

// BankLister is the read access the resolver needs.
type BankLister interface {
	ListBanks(ctx context.Context, userID int64) ([]store.Bank, error)
}

type BankResolver struct {
	banks BankLister
}

func NewBankResolver(banks BankLister) *BankResolver {
	return &BankResolver{banks: banks}
}

// Resolve returns the first of the user's banks whose name appears in text,
// falling back to the user's first bank. It returns nil when the user has none.
func (r *BankResolver) Resolve(ctx context.Context, text string, userID int64) (*store.Bank, error) {
	banks, err := r.banks.ListBanks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list banks for user %d: %w", userID, err)
	}
	if len(banks) == 0 {
		return nil, nil
	}

	lower := strings.ToLower(text)
	for i := range banks {
		if strings.Contains(lower, strings.ToLower(banks[i].Name)) {
			return &banks[i], nil
		}
	}
	return &banks[0], nil
}
