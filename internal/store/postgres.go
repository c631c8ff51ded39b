package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS banks (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    account_type TEXT NOT NULL DEFAULT '',
    balance NUMERIC NOT NULL DEFAULT 0,
    logo TEXT
);

CREATE TABLE IF NOT EXISTS finances (
    id BIGSERIAL PRIMARY KEY,
    description TEXT NOT NULL,
    amount NUMERIC NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('entrada', 'saida')),
    bank_id BIGINT REFERENCES banks (id) ON DELETE SET NULL,
    user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    date TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_banks_user ON banks (user_id);
CREATE INDEX IF NOT EXISTS idx_finances_user_type_date ON finances (user_id, type, date DESC);
`

// PostgresStore keeps the same contract as SQLiteStore on top of a pgx pool.
// Numeric columns travel as text so decimal values round-trip exactly.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *User) error {
	if user.Role == "" {
		user.Role = "user"
	}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		user.Name, user.Email, user.PasswordHash, user.Role,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isPgUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, "SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1", email)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.getUser(ctx, "SELECT id, name, email, password_hash, role, created_at FROM users WHERE id = $1", id)
}

func (s *PostgresStore) getUser(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	err := s.pool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func scanPgBank(row pgx.Row) (*Bank, error) {
	var bank Bank
	var balance string
	if err := row.Scan(&bank.ID, &bank.UserID, &bank.Name, &bank.AccountType, &balance, &bank.Logo); err != nil {
		return nil, err
	}
	var err error
	if bank.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("invalid balance for bank %d: %w", bank.ID, err)
	}
	return &bank, nil
}

func (s *PostgresStore) ListBanks(ctx context.Context, userID int64) ([]Bank, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, user_id, name, account_type, balance::text, logo FROM banks WHERE user_id = $1 ORDER BY id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query banks: %w", err)
	}
	defer rows.Close()

	var banks []Bank
	for rows.Next() {
		bank, err := scanPgBank(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank row: %w", err)
		}
		banks = append(banks, *bank)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate banks: %w", err)
	}
	return banks, nil
}

func (s *PostgresStore) GetBank(ctx context.Context, id, userID int64) (*Bank, error) {
	bank, err := scanPgBank(s.pool.QueryRow(ctx,
		"SELECT id, user_id, name, account_type, balance::text, logo FROM banks WHERE id = $1 AND user_id = $2", id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bank: %w", err)
	}
	return bank, nil
}

func (s *PostgresStore) CreateBank(ctx context.Context, bank *Bank) error {
	err := s.pool.QueryRow(ctx,
		"INSERT INTO banks (user_id, name, account_type, balance, logo) VALUES ($1, $2, $3, $4::numeric, $5) RETURNING id",
		bank.UserID, bank.Name, bank.AccountType, bank.Balance.String(), bank.Logo,
	).Scan(&bank.ID)
	if err != nil {
		return fmt.Errorf("failed to insert bank: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateBank(ctx context.Context, bank *Bank) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE banks SET name = $1, account_type = $2, balance = $3::numeric, logo = $4 WHERE id = $5 AND user_id = $6",
		bank.Name, bank.AccountType, bank.Balance.String(), bank.Logo, bank.ID, bank.UserID)
	if err != nil {
		return fmt.Errorf("failed to update bank: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteBank(ctx context.Context, id, userID int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM banks WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete bank: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListFinances(ctx context.Context, userID int64) ([]Finance, error) {
	return s.queryFinances(ctx,
		"SELECT id, description, amount::text, type, bank_id, user_id, date FROM finances WHERE user_id = $1 ORDER BY id DESC",
		userID)
}

func (s *PostgresStore) ListFinancesByType(ctx context.Context, userID int64, financeType FinanceType, limit int) ([]Finance, error) {
	query := "SELECT id, description, amount::text, type, bank_id, user_id, date FROM finances WHERE user_id = $1 AND type = $2 ORDER BY date DESC, id DESC"
	if limit > 0 {
		return s.queryFinances(ctx, query+" LIMIT $3", userID, string(financeType), limit)
	}
	return s.queryFinances(ctx, query, userID, string(financeType))
}

func (s *PostgresStore) queryFinances(ctx context.Context, query string, args ...any) ([]Finance, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query finances: %w", err)
	}
	defer rows.Close()

	var finances []Finance
	for rows.Next() {
		var f Finance
		var amount, financeType string
		if err := rows.Scan(&f.ID, &f.Description, &amount, &financeType, &f.BankID, &f.UserID, &f.Date); err != nil {
			return nil, fmt.Errorf("failed to scan finance row: %w", err)
		}
		if f.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid amount for finance %d: %w", f.ID, err)
		}
		f.Type = FinanceType(financeType)
		finances = append(finances, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate finances: %w", err)
	}
	return finances, nil
}

func (s *PostgresStore) CreateFinance(ctx context.Context, finance *Finance) error {
	if !finance.Type.Valid() {
		return fmt.Errorf("invalid finance type %q", finance.Type)
	}
	if finance.Date.IsZero() {
		finance.Date = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO finances (description, amount, type, bank_id, user_id, date) VALUES ($1, $2::numeric, $3, $4, $5, $6) RETURNING id",
		finance.Description, finance.Amount.String(), string(finance.Type), finance.BankID, finance.UserID, finance.Date,
	).Scan(&finance.ID)
	if err != nil {
		return fmt.Errorf("failed to insert finance: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteFinance(ctx context.Context, id, userID int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM finances WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete finance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
