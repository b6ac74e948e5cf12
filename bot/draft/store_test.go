package draft

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendbot/bot/storage"
)

type fakeGateway struct {
	mu     sync.Mutex
	err    error
	nextID int64
	calls  []storage.NewExpense
}

func (g *fakeGateway) InsertExpense(_ context.Context, ne storage.NewExpense) (storage.Expense, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return storage.Expense{}, g.err
	}
	g.nextID++
	g.calls = append(g.calls, ne)
	var note *string
	if ne.Note != "" {
		n := ne.Note
		note = &n
	}
	return storage.Expense{
		ID:         g.nextID,
		AccountID:  ne.AccountID,
		CategoryID: ne.CategoryID,
		UserID:     ne.UserID,
		Amount:     ne.Amount,
		Note:       note,
		OccurredAt: ne.OccurredAt,
	}, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStartAndCommitFullFlow(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(fixedClock(now)))
	gw := &fakeGateway{}

	d, err := s.Start(1001, 12.50, Defaults{UserID: 7, CategoryID: 2, AccountID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1001), d.Owner)
	assert.Equal(t, 12.50, d.Amount)
	assert.True(t, d.Complete())
	assert.Equal(t, now, d.CreatedAt)

	d, err = s.SetNote(1001, "lunch")
	require.NoError(t, err)
	assert.Equal(t, "lunch", d.Note)

	exp, err := s.Commit(context.Background(), 1001, gw)
	require.NoError(t, err)
	assert.Equal(t, int64(3), exp.AccountID)
	assert.Equal(t, int64(2), exp.CategoryID)
	assert.Equal(t, int64(7), exp.UserID)
	assert.Equal(t, 12.50, exp.Amount)
	require.NotNil(t, exp.Note)
	assert.Equal(t, "lunch", *exp.Note)
	assert.Equal(t, now, exp.OccurredAt)

	_, ok := s.Get(1001)
	assert.False(t, ok, "draft must be gone after commit")
}

func TestStartRejectsInvalidAmounts(t *testing.T) {
	s := NewStore()
	for _, amount := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := s.Start(1, amount, Defaults{})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	_, ok := s.Get(1)
	assert.False(t, ok, "rejected amounts must not create drafts")
}

func TestStartReplacesExistingDraft(t *testing.T) {
	s := NewStore()

	_, err := s.Start(1, 10, Defaults{CategoryID: 2, AccountID: 3})
	require.NoError(t, err)
	_, err = s.SetNote(1, "first")
	require.NoError(t, err)

	d, err := s.Start(1, 20, Defaults{})
	require.NoError(t, err)
	assert.Equal(t, float64(20), d.Amount)
	assert.Empty(t, d.Note, "replacement starts clean, no merge")
	assert.Zero(t, d.CategoryID)
	assert.Zero(t, d.AccountID)
}

func TestSettersRequireDraft(t *testing.T) {
	s := NewStore()

	_, err := s.SetCategory(1, 5)
	assert.ErrorIs(t, err, ErrNoDraft)
	_, err = s.SetAccount(1, 5)
	assert.ErrorIs(t, err, ErrNoDraft)
	_, err = s.SetNote(1, "x")
	assert.ErrorIs(t, err, ErrNoDraft)
	_, err = s.SetMessage(1, 42)
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestCommitRequiresCompleteDraft(t *testing.T) {
	s := NewStore()
	gw := &fakeGateway{}

	_, err := s.Commit(context.Background(), 1, gw)
	assert.ErrorIs(t, err, ErrNoDraft)

	_, err = s.Start(1, 10, Defaults{CategoryID: 2})
	require.NoError(t, err)
	_, err = s.Commit(context.Background(), 1, gw)
	assert.ErrorIs(t, err, ErrIncompleteDraft)
	assert.Empty(t, gw.calls, "incomplete drafts never reach the gateway")

	d, ok := s.Get(1)
	require.True(t, ok, "failed commit keeps the draft")
	assert.Equal(t, float64(10), d.Amount)
}

func TestCommitGatewayFailureKeepsDraft(t *testing.T) {
	s := NewStore()
	gwErr := errors.New("disk full")
	gw := &fakeGateway{err: gwErr}

	_, err := s.Start(1, 10, Defaults{UserID: 7, CategoryID: 2, AccountID: 3})
	require.NoError(t, err)
	before, _ := s.Get(1)

	_, err = s.Commit(context.Background(), 1, gw)
	require.ErrorIs(t, err, gwErr)

	after, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, before, after, "draft must be unchanged after gateway failure")

	gw.err = nil
	_, err = s.Commit(context.Background(), 1, gw)
	require.NoError(t, err)
	_, ok = s.Get(1)
	assert.False(t, ok)
}

func TestCommitDoesNotDropReplacementDraft(t *testing.T) {
	s := NewStore()
	started := make(chan struct{})
	resume := make(chan struct{})
	gw := &blockingGateway{started: started, resume: resume}

	_, err := s.Start(1, 10, Defaults{UserID: 7, CategoryID: 2, AccountID: 3})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, commitErr := s.Commit(context.Background(), 1, gw)
		done <- commitErr
	}()

	<-started
	// A replacement arrives while the first commit's insert is in flight.
	_, err = s.Start(1, 99, Defaults{UserID: 7, CategoryID: 5, AccountID: 6})
	require.NoError(t, err)
	close(resume)

	require.NoError(t, <-done)

	d, ok := s.Get(1)
	require.True(t, ok, "replacement draft must survive the earlier commit")
	assert.Equal(t, float64(99), d.Amount)
}

type blockingGateway struct {
	started chan struct{}
	resume  chan struct{}
	once    sync.Once
}

func (g *blockingGateway) InsertExpense(_ context.Context, ne storage.NewExpense) (storage.Expense, error) {
	g.once.Do(func() { close(g.started) })
	<-g.resume
	return storage.Expense{ID: 1, Amount: ne.Amount}, nil
}

func TestCancel(t *testing.T) {
	s := NewStore()

	assert.False(t, s.Cancel(1), "cancel without draft is a no-op")

	_, err := s.Start(1, 10, Defaults{})
	require.NoError(t, err)
	assert.True(t, s.Cancel(1))
	assert.False(t, s.Cancel(1), "second cancel reports nothing removed")
}

func TestDraftsAreIsolatedPerOwner(t *testing.T) {
	s := NewStore()

	_, err := s.Start(1, 10, Defaults{})
	require.NoError(t, err)
	_, err = s.Start(2, 20, Defaults{})
	require.NoError(t, err)

	_, err = s.SetNote(1, "mine")
	require.NoError(t, err)

	d2, ok := s.Get(2)
	require.True(t, ok)
	assert.Empty(t, d2.Note)
	assert.Equal(t, float64(20), d2.Amount)
	assert.Equal(t, 2, s.Count())
}

func TestConcurrentOwnersDoNotInterfere(t *testing.T) {
	s := NewStore()
	const owners = 32

	var wg sync.WaitGroup
	for i := 0; i < owners; i++ {
		owner := int64(i + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Start(owner, float64(owner), Defaults{})
			assert.NoError(t, err)
			_, err = s.SetCategory(owner, owner*10)
			assert.NoError(t, err)
			_, err = s.SetAccount(owner, owner*100)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	for i := 0; i < owners; i++ {
		owner := int64(i + 1)
		d, ok := s.Get(owner)
		require.True(t, ok)
		assert.Equal(t, float64(owner), d.Amount)
		assert.Equal(t, owner*10, d.CategoryID)
		assert.Equal(t, owner*100, d.AccountID)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore()
	_, err := s.Start(1, 10, Defaults{})
	require.NoError(t, err)

	d, ok := s.Get(1)
	require.True(t, ok)
	d.Amount = 999
	d.Note = "tampered"

	fresh, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, float64(10), fresh.Amount)
	assert.Empty(t, fresh.Note)
}
