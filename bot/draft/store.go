package draft

import (
	"context"
	"math"
	"sync"
	"time"

	"spendbot/bot/storage"
)

// Store keeps at most one draft per owner in memory. Drafts are held
// indefinitely until committed or cancelled; there is no TTL sweep.
// All methods are safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	drafts map[int64]*Draft
	now    func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty draft store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		drafts: make(map[int64]*Draft),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates a draft for the owner, replacing any existing one.
// Starting over is the supported way to correct a mistyped amount.
func (s *Store) Start(owner int64, amount float64, defaults Defaults) (Draft, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Draft{}, ErrInvalidAmount
	}

	d := &Draft{
		Owner:      owner,
		UserID:     defaults.UserID,
		Amount:     amount,
		CategoryID: defaults.CategoryID,
		AccountID:  defaults.AccountID,
		Note:       defaults.Note,
		CreatedAt:  s.now(),
	}

	s.mu.Lock()
	s.drafts[owner] = d
	s.mu.Unlock()
	return *d, nil
}

// Get returns a copy of the owner's draft. Absence is not an error.
func (s *Store) Get(owner int64) (Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[owner]
	if !ok {
		return Draft{}, false
	}
	return *d, true
}

// SetCategory assigns the category on the owner's draft.
func (s *Store) SetCategory(owner, categoryID int64) (Draft, error) {
	return s.mutate(owner, func(d *Draft) {
		d.CategoryID = categoryID
	})
}

// SetAccount assigns the account on the owner's draft.
func (s *Store) SetAccount(owner, accountID int64) (Draft, error) {
	return s.mutate(owner, func(d *Draft) {
		d.AccountID = accountID
	})
}

// SetNote replaces the note on the owner's draft.
func (s *Store) SetNote(owner int64, note string) (Draft, error) {
	return s.mutate(owner, func(d *Draft) {
		d.Note = note
	})
}

// SetMessage records the keyboard message ID for in-place edits.
func (s *Store) SetMessage(owner int64, messageID int) (Draft, error) {
	return s.mutate(owner, func(d *Draft) {
		d.MessageID = messageID
	})
}

// mutate replaces the stored draft with an updated copy. Replacement
// keeps a concurrent Commit from deleting a draft changed under it.
func (s *Store) mutate(owner int64, fn func(*Draft)) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.drafts[owner]
	if !ok {
		return Draft{}, ErrNoDraft
	}
	next := *old
	fn(&next)
	s.drafts[owner] = &next
	return next, nil
}

// Cancel drops the owner's draft. It reports whether one existed.
func (s *Store) Cancel(owner int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[owner]; !ok {
		return false
	}
	delete(s.drafts, owner)
	return true
}

// Count returns the number of drafts in progress.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

// Commit persists the owner's draft through the gateway. The draft must
// be complete. Gateway failure leaves the draft untouched so the user
// can retry. After a successful insert the slot is cleared only if it
// still holds the committed draft, so a draft started meanwhile wins.
func (s *Store) Commit(ctx context.Context, owner int64, gw Gateway) (storage.Expense, error) {
	s.mu.RLock()
	committed, ok := s.drafts[owner]
	s.mu.RUnlock()
	if !ok {
		return storage.Expense{}, ErrNoDraft
	}

	snapshot := *committed
	if !snapshot.Complete() {
		return storage.Expense{}, ErrIncompleteDraft
	}

	exp, err := gw.InsertExpense(ctx, storage.NewExpense{
		AccountID:  snapshot.AccountID,
		CategoryID: snapshot.CategoryID,
		UserID:     snapshot.UserID,
		Amount:     snapshot.Amount,
		Note:       snapshot.Note,
		OccurredAt: snapshot.CreatedAt,
	})
	if err != nil {
		return storage.Expense{}, err
	}

	s.mu.Lock()
	if current, ok := s.drafts[owner]; ok && current == committed {
		delete(s.drafts, owner)
	}
	s.mu.Unlock()
	return exp, nil
}
