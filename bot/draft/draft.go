// Package draft holds in-progress expense entries between the first
// message and the final confirmation.
package draft

import (
	"context"
	"errors"
	"time"

	"spendbot/bot/storage"
)

var (
	// ErrInvalidAmount rejects non-positive or non-finite draft amounts.
	ErrInvalidAmount = errors.New("draft: amount must be a positive finite number")
	// ErrNoDraft indicates the owner has no draft in progress.
	ErrNoDraft = errors.New("draft: no draft in progress")
	// ErrIncompleteDraft indicates a commit attempt before category and
	// account were both chosen.
	ErrIncompleteDraft = errors.New("draft: category and account are required")
)

// Draft is an expense entry being assembled. A zero CategoryID or
// AccountID means the field is still unset.
type Draft struct {
	// Owner is the Telegram user ID the draft belongs to.
	Owner int64
	// UserID is the persisted user row backing the owner.
	UserID     int64
	Amount     float64
	CategoryID int64
	AccountID  int64
	Note       string
	// MessageID tracks the keyboard message being edited in place.
	MessageID int
	CreatedAt time.Time
}

// Complete reports whether the draft has everything required to commit.
func (d Draft) Complete() bool {
	return d.CategoryID != 0 && d.AccountID != 0
}

// Defaults pre-fills a new draft from gateway lookups.
type Defaults struct {
	UserID     int64
	CategoryID int64
	AccountID  int64
	Note       string
}

// Gateway is the persistence contract the commit path depends on.
type Gateway interface {
	InsertExpense(ctx context.Context, ne storage.NewExpense) (storage.Expense, error)
}
