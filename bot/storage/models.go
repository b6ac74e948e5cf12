package storage

import "time"

// User is a registered bot user.
type User struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	TelegramID int64  `db:"telegram_id"`
}

// Currency is a reference currency row.
type Currency struct {
	ID   int64  `db:"id"`
	Code string `db:"code"`
}

// Account is a spending account owned by one or more users.
type Account struct {
	ID         int64   `db:"id"`
	CurrencyID int64   `db:"currency_id"`
	Name       string  `db:"name"`
	IBAN       *string `db:"iban"`
	// CurrencyCode is joined in for rendering; empty when not selected.
	CurrencyCode string `db:"currency_code"`
}

// Category is a spending category with a global display order.
type Category struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	SortOrder int64  `db:"sort_order"`
}

// Expense is a persisted spending record.
type Expense struct {
	ID         int64     `db:"id"`
	AccountID  int64     `db:"account_id"`
	CategoryID int64     `db:"category_id"`
	UserID     int64     `db:"user_id"`
	Amount     float64   `db:"amount"`
	Note       *string   `db:"note"`
	OccurredAt time.Time `db:"occurred_at"`
}

// NewExpense carries the fields required to insert an expense.
type NewExpense struct {
	AccountID  int64
	CategoryID int64
	UserID     int64
	Amount     float64
	Note       string
	OccurredAt time.Time
}
