package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"
)

// dateLayout is fixed width so that ORDER BY on the text column is chronological.
const dateLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	if dataSourceName == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if dataSourceName != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dataSourceName), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL,
        email TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        role TEXT NOT NULL DEFAULT 'user',
        created_at TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS banks (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        name TEXT NOT NULL,
        account_type TEXT NOT NULL DEFAULT '',
        balance TEXT NOT NULL DEFAULT '0', -- decimal string
        logo TEXT,
        FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS finances (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        description TEXT NOT NULL,
        amount TEXT NOT NULL, -- decimal string
        type TEXT NOT NULL CHECK (type IN ('entrada', 'saida')),
        bank_id INTEGER,
        user_id INTEGER NOT NULL,
        date TEXT NOT NULL,
        FOREIGN KEY (bank_id) REFERENCES banks (id) ON DELETE SET NULL,
        FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_banks_user ON banks (user_id);
    CREATE INDEX IF NOT EXISTS idx_finances_user_type_date ON finances (user_id, type, date);
    `
	_, err := s.db.Exec(schema)
	return err
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// User methods
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	if user.Role == "" {
		user.Role = "user"
	}
	user.CreatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)",
		user.Name, user.Email, user.PasswordHash, user.Role, formatDate(user.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	user.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, "SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = ?", email)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.getUser(ctx, "SELECT id, name, email, password_hash, role, created_at FROM users WHERE id = ?", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	var createdAt string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if user.CreatedAt, err = parseDate(createdAt); err != nil {
		return nil, err
	}
	return &user, nil
}

// Bank methods
func (s *SQLiteStore) ListBanks(ctx context.Context, userID int64) ([]Bank, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, account_type, balance, logo FROM banks WHERE user_id = ? ORDER BY id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query banks: %w", err)
	}
	defer rows.Close()

	var banks []Bank
	for rows.Next() {
		bank, err := scanSQLiteBank(rows)
		if err != nil {
			return nil, err
		}
		banks = append(banks, *bank)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate banks: %w", err)
	}
	return banks, nil
}

func (s *SQLiteStore) GetBank(ctx context.Context, id, userID int64) (*Bank, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, account_type, balance, logo FROM banks WHERE id = ? AND user_id = ?", id, userID)
	bank, err := scanSQLiteBank(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return bank, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteBank(row rowScanner) (*Bank, error) {
	var bank Bank
	var balance string
	var logo sql.NullString
	if err := row.Scan(&bank.ID, &bank.UserID, &bank.Name, &bank.AccountType, &balance, &logo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan bank row: %w", err)
	}
	var err error
	if bank.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("invalid balance for bank %d: %w", bank.ID, err)
	}
	if logo.Valid {
		bank.Logo = &logo.String
	}
	return &bank, nil
}

func (s *SQLiteStore) CreateBank(ctx context.Context, bank *Bank) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO banks (user_id, name, account_type, balance, logo) VALUES (?, ?, ?, ?, ?)",
		bank.UserID, bank.Name, bank.AccountType, bank.Balance.String(), bank.Logo)
	if err != nil {
		return fmt.Errorf("failed to insert bank: %w", err)
	}
	bank.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) UpdateBank(ctx context.Context, bank *Bank) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE banks SET name = ?, account_type = ?, balance = ?, logo = ? WHERE id = ? AND user_id = ?",
		bank.Name, bank.AccountType, bank.Balance.String(), bank.Logo, bank.ID, bank.UserID)
	if err != nil {
		return fmt.Errorf("failed to update bank: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteBank(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM banks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete bank: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Finance methods
func (s *SQLiteStore) ListFinances(ctx context.Context, userID int64) ([]Finance, error) {
	return s.queryFinances(ctx,
		"SELECT id, description, amount, type, bank_id, user_id, date FROM finances WHERE user_id = ? ORDER BY id DESC",
		userID)
}

func (s *SQLiteStore) ListFinancesByType(ctx context.Context, userID int64, financeType FinanceType, limit int) ([]Finance, error) {
	query := "SELECT id, description, amount, type, bank_id, user_id, date FROM finances WHERE user_id = ? AND type = ? ORDER BY date DESC, id DESC"
	if limit > 0 {
		return s.queryFinances(ctx, query+" LIMIT ?", userID, string(financeType), limit)
	}
	return s.queryFinances(ctx, query, userID, string(financeType))
}

func (s *SQLiteStore) queryFinances(ctx context.Context, query string, args ...any) ([]Finance, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query finances: %w", err)
	}
	defer rows.Close()

	var finances []Finance
	for rows.Next() {
		var f Finance
		var amount, financeType, date string
		var bankID sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Description, &amount, &financeType, &bankID, &f.UserID, &date); err != nil {
			return nil, fmt.Errorf("failed to scan finance row: %w", err)
		}
		if f.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid amount for finance %d: %w", f.ID, err)
		}
		if f.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		f.Type = FinanceType(financeType)
		if bankID.Valid {
			id := bankID.Int64
			f.BankID = &id
		}
		finances = append(finances, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate finances: %w", err)
	}
	return finances, nil
}

func (s *SQLiteStore) CreateFinance(ctx context.Context, finance *Finance) error {
	if !finance.Type.Valid() {
		return fmt.Errorf("invalid finance type %q", finance.Type)
	}
	if finance.Date.IsZero() {
		finance.Date = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO finances (description, amount, type, bank_id, user_id, date) VALUES (?, ?, ?, ?, ?, ?)",
		finance.Description, finance.Amount.String(), string(finance.Type), finance.BankID, finance.UserID, formatDate(finance.Date))
	if err != nil {
		return fmt.Errorf("failed to insert finance: %w", err)
	}
	finance.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) DeleteFinance(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM finances WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete finance: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
