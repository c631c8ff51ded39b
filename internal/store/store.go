package store

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)

// Store is the persistence boundary shared by the SQLite and Postgres backends.
type Store interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// ListBanks returns the user's banks ordered by id ascending.
	ListBanks(ctx context.Context, userID int64) ([]Bank, error)
	GetBank(ctx context.Context, id, userID int64) (*Bank, error)
	CreateBank(ctx context.Context, bank *Bank) error
	UpdateBank(ctx context.Context, bank *Bank) error
	DeleteBank(ctx context.Context, id, userID int64) error

	// ListFinances returns every entry of the user, newest id first.
	ListFinances(ctx context.Context, userID int64) ([]Finance, error)
	// ListFinancesByType returns entries of one type ordered by date descending.
	// A limit <= 0 returns all of them.
	ListFinancesByType(ctx context.Context, userID int64, financeType FinanceType, limit int) ([]Finance, error)
	CreateFinance(ctx context.Context, finance *Finance) error
	DeleteFinance(ctx context.Context, id, userID int64) error

	Close() error
}

// Open picks the backend from the shape of databaseURL.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return NewPostgresStore(ctx, databaseURL)
	}
	return NewSQLiteStore(databaseURL)
}
