// Package storage implements the SQLite persistence gateway for the bot.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"spendbot/core/logger"
)

// Store is the SQLite-backed persistence gateway.
type Store struct {
	db *sqlx.DB
}

// New wraps an open database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// EnsureUser registers a Telegram user, updating the display name on
// repeat calls. A user with no linked accounts is linked to the first
// account, so registration always yields a usable default. Idempotent.
func (s *Store) EnsureUser(ctx context.Context, telegramID int64, name string) (User, error) {
	if name == "" {
		name = fmt.Sprintf("user-%d", telegramID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (name, telegram_id) VALUES (?, ?)
		ON CONFLICT (telegram_id) DO UPDATE SET name = excluded.name`,
		name, telegramID,
	)
	if err != nil {
		return User{}, fmt.Errorf("ensure user: %w", err)
	}
	var u User
	if err := s.db.GetContext(ctx, &u,
		`SELECT id, name, telegram_id FROM users WHERE telegram_id = ?`, telegramID); err != nil {
		return User{}, fmt.Errorf("ensure user: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO account_users (account_id, user_id)
		SELECT a.id, ? FROM accounts a
		WHERE NOT EXISTS (SELECT 1 FROM account_users au WHERE au.user_id = ?)
		ORDER BY a.name, a.id LIMIT 1`,
		u.ID, u.ID,
	); err != nil {
		return User{}, fmt.Errorf("ensure user: %w", err)
	}
	return u, nil
}

// UserByTelegramID looks up a registered user.
func (s *Store) UserByTelegramID(ctx context.Context, telegramID int64) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, name, telegram_id FROM users WHERE telegram_id = ?`, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("user by telegram id: %w", err)
	}
	return u, nil
}

// Users returns all registered users ordered by name.
func (s *Store) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.db.SelectContext(ctx, &users,
		`SELECT id, name, telegram_id FROM users ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UserCount returns the number of registered users.
func (s *Store) UserCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// CreateCurrency inserts a currency by code.
func (s *Store) CreateCurrency(ctx context.Context, code string) (Currency, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO currencies (code) VALUES (?)`, code)
	if err != nil {
		return Currency{}, fmt.Errorf("create currency: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Currency{}, fmt.Errorf("create currency: %w", err)
	}
	return Currency{ID: id, Code: code}, nil
}

// CreateAccount inserts an account bound to a currency.
func (s *Store) CreateAccount(ctx context.Context, currencyID int64, name string, iban *string) (Account, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (currency_id, name, iban) VALUES (?, ?, ?)`,
		currencyID, name, iban,
	)
	if err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}
	return Account{ID: id, CurrencyID: currencyID, Name: name, IBAN: iban}, nil
}

// LinkAccount grants a user access to an account. Idempotent.
func (s *Store) LinkAccount(ctx context.Context, accountID, userID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account_users (account_id, user_id) VALUES (?, ?)
		ON CONFLICT (account_id, user_id) DO NOTHING`,
		accountID, userID,
	)
	if err != nil {
		return fmt.Errorf("link account: %w", err)
	}
	return nil
}

// CreateCategory inserts a category with an explicit sort order.
func (s *Store) CreateCategory(ctx context.Context, name string, sortOrder int64) (Category, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, sort_order) VALUES (?, ?)`, name, sortOrder)
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return Category{ID: id, Name: name, SortOrder: sortOrder}, nil
}

// Categories lists all categories in display order.
func (s *Store) Categories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := s.db.SelectContext(ctx, &cats,
		`SELECT id, name, sort_order FROM categories ORDER BY sort_order, name`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// CategoryByID returns a category by primary key.
func (s *Store) CategoryByID(ctx context.Context, id int64) (Category, error) {
	var cat Category
	err := s.db.GetContext(ctx, &cat,
		`SELECT id, name, sort_order FROM categories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("category by id: %w", err)
	}
	return cat, nil
}

// DefaultCategory returns the first category in display order.
// The boolean is false when no categories exist.
func (s *Store) DefaultCategory(ctx context.Context) (Category, bool, error) {
	var cat Category
	err := s.db.GetContext(ctx, &cat,
		`SELECT id, name, sort_order FROM categories ORDER BY sort_order, name LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, false, nil
	}
	if err != nil {
		return Category{}, false, fmt.Errorf("default category: %w", err)
	}
	return cat, true, nil
}

// AccountsForUser lists the accounts linked to a user, with currency codes.
func (s *Store) AccountsForUser(ctx context.Context, userID int64) ([]Account, error) {
	var accounts []Account
	err := s.db.SelectContext(ctx, &accounts, `
		SELECT a.id, a.currency_id, a.name, a.iban, c.code AS currency_code
		FROM accounts a
		JOIN account_users au ON au.account_id = a.id
		JOIN currencies c ON c.id = a.currency_id
		WHERE au.user_id = ?
		ORDER BY a.name, a.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("accounts for user: %w", err)
	}
	return accounts, nil
}

// AccountByID returns an account by primary key, with its currency code.
func (s *Store) AccountByID(ctx context.Context, id int64) (Account, error) {
	var acc Account
	err := s.db.GetContext(ctx, &acc, `
		SELECT a.id, a.currency_id, a.name, a.iban, c.code AS currency_code
		FROM accounts a
		JOIN currencies c ON c.id = a.currency_id
		WHERE a.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("account by id: %w", err)
	}
	return acc, nil
}

// DefaultAccount returns the first account linked to the user, by name.
// The boolean is false when the user has no linked accounts.
func (s *Store) DefaultAccount(ctx context.Context, userID int64) (Account, bool, error) {
	var acc Account
	err := s.db.GetContext(ctx, &acc, `
		SELECT a.id, a.currency_id, a.name, a.iban, c.code AS currency_code
		FROM accounts a
		JOIN account_users au ON au.account_id = a.id
		JOIN currencies c ON c.id = a.currency_id
		WHERE au.user_id = ?
		ORDER BY a.name, a.id
		LIMIT 1`,
		userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, false, nil
	}
	if err != nil {
		return Account{}, false, fmt.Errorf("default account: %w", err)
	}
	return acc, true, nil
}

// ExpenseByID returns a persisted expense by primary key.
func (s *Store) ExpenseByID(ctx context.Context, id int64) (Expense, error) {
	var exp Expense
	err := s.db.GetContext(ctx, &exp, `
		SELECT id, account_id, category_id, user_id, amount, note, occurred_at
		FROM expenses WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Expense{}, ErrNotFound
	}
	if err != nil {
		return Expense{}, fmt.Errorf("expense by id: %w", err)
	}
	return exp, nil
}

// InsertExpense persists a new expense in a single transaction. The
// referenced user, account and category are verified inside the same
// transaction so no partial rows ever become visible.
func (s *Store) InsertExpense(ctx context.Context, ne NewExpense) (Expense, error) {
	if ne.Amount <= 0 {
		return Expense{}, ErrInvalidAmount
	}
	occurredAt := ne.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Expense{}, fmt.Errorf("insert expense: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, ref := range []struct {
		table string
		id    int64
	}{
		{"users", ne.UserID},
		{"accounts", ne.AccountID},
		{"categories", ne.CategoryID},
	} {
		var exists bool
		query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = ?)`, ref.table)
		if err := tx.GetContext(ctx, &exists, query, ref.id); err != nil {
			return Expense{}, fmt.Errorf("insert expense: check %s: %w", ref.table, err)
		}
		if !exists {
			return Expense{}, fmt.Errorf("%w: %s id %d", ErrMissingReference, ref.table, ref.id)
		}
	}

	var note *string
	if ne.Note != "" {
		note = &ne.Note
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO expenses (account_id, category_id, user_id, amount, note, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ne.AccountID, ne.CategoryID, ne.UserID, ne.Amount, note, occurredAt,
	)
	if err != nil {
		return Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	var exp Expense
	if err := tx.GetContext(ctx, &exp, `
		SELECT id, account_id, category_id, user_id, amount, note, occurred_at
		FROM expenses WHERE id = ?`, id); err != nil {
		return Expense{}, fmt.Errorf("insert expense: read back: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Expense{}, fmt.Errorf("insert expense: commit: %w", err)
	}

	logger.Debug(ctx, "db", "expense.inserted",
		slog.Int64("expense_id", exp.ID),
		slog.Int64("account_id", exp.AccountID),
		slog.Int64("category_id", exp.CategoryID),
		slog.Float64("amount", exp.Amount),
	)
	return exp, nil
}
