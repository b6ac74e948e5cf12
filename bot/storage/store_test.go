package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"spendbot/core/database"
)

type StoreSuite struct {
	suite.Suite

	ctx   context.Context
	db    *sqlx.DB
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()

	db, err := database.Connect(s.ctx, database.Config{
		Path: filepath.Join(s.T().TempDir(), "spendbot_test.db"),
	})
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(s.ctx, db, Migrations, "migrations"))

	s.db = db
	s.store = New(db)
}

func (s *StoreSuite) TearDownTest() {
	if s.db != nil {
		s.Require().NoError(s.db.Close())
	}
}

type fixture struct {
	user     User
	currency Currency
	account  Account
	category Category
}

func (s *StoreSuite) seedFixture() fixture {
	user, err := s.store.EnsureUser(s.ctx, 1001, "alice")
	s.Require().NoError(err)

	cur, err := s.store.CreateCurrency(s.ctx, "EUR")
	s.Require().NoError(err)

	acc, err := s.store.CreateAccount(s.ctx, cur.ID, "Checking", nil)
	s.Require().NoError(err)
	s.Require().NoError(s.store.LinkAccount(s.ctx, acc.ID, user.ID))

	cat, err := s.store.CreateCategory(s.ctx, "Groceries", 10)
	s.Require().NoError(err)

	return fixture{user: user, currency: cur, account: acc, category: cat}
}

func (s *StoreSuite) TestEnsureUserIsIdempotent() {
	first, err := s.store.EnsureUser(s.ctx, 1001, "alice")
	s.Require().NoError(err)

	second, err := s.store.EnsureUser(s.ctx, 1001, "alice renamed")
	s.Require().NoError(err)

	assert.Equal(s.T(), first.ID, second.ID, "repeat calls keep the same row")
	assert.Equal(s.T(), "alice renamed", second.Name)

	count, err := s.store.UserCount(s.ctx)
	s.Require().NoError(err)
	assert.Equal(s.T(), int64(1), count)
}

func (s *StoreSuite) TestDefaultCategoryOrdering() {
	_, ok, err := s.store.DefaultCategory(s.ctx)
	s.Require().NoError(err)
	assert.False(s.T(), ok, "no default on an empty table")

	_, err = s.store.CreateCategory(s.ctx, "Zebra", 10)
	s.Require().NoError(err)
	_, err = s.store.CreateCategory(s.ctx, "Apple", 10)
	s.Require().NoError(err)
	_, err = s.store.CreateCategory(s.ctx, "First", 5)
	s.Require().NoError(err)

	def, ok, err := s.store.DefaultCategory(s.ctx)
	s.Require().NoError(err)
	s.Require().True(ok)
	assert.Equal(s.T(), "First", def.Name, "lowest sort_order wins")

	cats, err := s.store.Categories(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(cats, 3)
	assert.Equal(s.T(), "First", cats[0].Name)
	assert.Equal(s.T(), "Apple", cats[1].Name, "ties break on name")
	assert.Equal(s.T(), "Zebra", cats[2].Name)
}

func (s *StoreSuite) TestDefaultAccountPerUser() {
	fix := s.seedFixture()

	_, ok, err := s.store.DefaultAccount(s.ctx, 9999)
	s.Require().NoError(err)
	assert.False(s.T(), ok, "unknown user has no default account")

	other, err := s.store.EnsureUser(s.ctx, 2002, "bob")
	s.Require().NoError(err)

	bobDef, ok, err := s.store.DefaultAccount(s.ctx, other.ID)
	s.Require().NoError(err)
	s.Require().True(ok, "registration links the first account")
	assert.Equal(s.T(), "Checking", bobDef.Name)

	second, err := s.store.CreateAccount(s.ctx, fix.currency.ID, "Aaa Savings", nil)
	s.Require().NoError(err)
	s.Require().NoError(s.store.LinkAccount(s.ctx, second.ID, fix.user.ID))

	def, ok, err := s.store.DefaultAccount(s.ctx, fix.user.ID)
	s.Require().NoError(err)
	s.Require().True(ok)
	assert.Equal(s.T(), "Aaa Savings", def.Name, "first linked account by name")
	assert.Equal(s.T(), "EUR", def.CurrencyCode)

	accounts, err := s.store.AccountsForUser(s.ctx, fix.user.ID)
	s.Require().NoError(err)
	assert.Len(s.T(), accounts, 2)
}

func (s *StoreSuite) TestInsertExpense() {
	fix := s.seedFixture()
	when := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	exp, err := s.store.InsertExpense(s.ctx, NewExpense{
		AccountID:  fix.account.ID,
		CategoryID: fix.category.ID,
		UserID:     fix.user.ID,
		Amount:     12.50,
		Note:       "lunch",
		OccurredAt: when,
	})
	s.Require().NoError(err)
	assert.NotZero(s.T(), exp.ID)
	assert.Equal(s.T(), 12.50, exp.Amount)
	s.Require().NotNil(exp.Note)
	assert.Equal(s.T(), "lunch", *exp.Note)
	assert.WithinDuration(s.T(), when, exp.OccurredAt, time.Second)

	got, err := s.store.ExpenseByID(s.ctx, exp.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), exp.ID, got.ID)
	assert.Equal(s.T(), fix.user.ID, got.UserID)
}

func (s *StoreSuite) TestInsertExpenseEmptyNoteStoredAsNull() {
	fix := s.seedFixture()

	exp, err := s.store.InsertExpense(s.ctx, NewExpense{
		AccountID:  fix.account.ID,
		CategoryID: fix.category.ID,
		UserID:     fix.user.ID,
		Amount:     5,
	})
	s.Require().NoError(err)
	assert.Nil(s.T(), exp.Note)
	assert.False(s.T(), exp.OccurredAt.IsZero(), "zero timestamp falls back to now")
}

func (s *StoreSuite) TestInsertExpenseRejectsInvalidAmount() {
	fix := s.seedFixture()

	for _, amount := range []float64{0, -1} {
		_, err := s.store.InsertExpense(s.ctx, NewExpense{
			AccountID:  fix.account.ID,
			CategoryID: fix.category.ID,
			UserID:     fix.user.ID,
			Amount:     amount,
		})
		assert.ErrorIs(s.T(), err, ErrInvalidAmount)
	}
}

func (s *StoreSuite) TestInsertExpenseRejectsDanglingReferences() {
	fix := s.seedFixture()

	_, err := s.store.InsertExpense(s.ctx, NewExpense{
		AccountID:  fix.account.ID,
		CategoryID: 9999,
		UserID:     fix.user.ID,
		Amount:     5,
	})
	require.ErrorIs(s.T(), err, ErrMissingReference)

	_, err = s.store.InsertExpense(s.ctx, NewExpense{
		AccountID:  9999,
		CategoryID: fix.category.ID,
		UserID:     fix.user.ID,
		Amount:     5,
	})
	require.ErrorIs(s.T(), err, ErrMissingReference)

	var count int64
	s.Require().NoError(s.db.GetContext(s.ctx, &count, `SELECT COUNT(*) FROM expenses`))
	assert.Zero(s.T(), count, "failed inserts leave no partial rows")
}

func (s *StoreSuite) TestDeletingAccountCascadesToExpenses() {
	fix := s.seedFixture()

	exp, err := s.store.InsertExpense(s.ctx, NewExpense{
		AccountID:  fix.account.ID,
		CategoryID: fix.category.ID,
		UserID:     fix.user.ID,
		Amount:     5,
	})
	s.Require().NoError(err)

	_, err = s.db.ExecContext(s.ctx, `DELETE FROM accounts WHERE id = ?`, fix.account.ID)
	s.Require().NoError(err)

	_, err = s.store.ExpenseByID(s.ctx, exp.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *StoreSuite) TestUsersOrderedByName() {
	_, err := s.store.EnsureUser(s.ctx, 1, "zoe")
	s.Require().NoError(err)
	_, err = s.store.EnsureUser(s.ctx, 2, "adam")
	s.Require().NoError(err)

	users, err := s.store.Users(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	assert.Equal(s.T(), "adam", users[0].Name)
	assert.Equal(s.T(), "zoe", users[1].Name)
}

func (s *StoreSuite) TestSeederIsIdempotent() {
	seeder := Seeder{}
	s.Require().NoError(seeder.Seed(s.ctx, s.db))
	s.Require().NoError(seeder.Seed(s.ctx, s.db))

	cats, err := s.store.Categories(s.ctx)
	s.Require().NoError(err)
	assert.Len(s.T(), cats, len(seedCategories))

	var currencies int64
	s.Require().NoError(s.db.GetContext(s.ctx, &currencies, `SELECT COUNT(*) FROM currencies`))
	assert.Equal(s.T(), int64(len(seedCurrencies)), currencies)

	var accounts int64
	s.Require().NoError(s.db.GetContext(s.ctx, &accounts, `SELECT COUNT(*) FROM accounts`))
	assert.Equal(s.T(), int64(len(seedAccounts)), accounts)
}

func (s *StoreSuite) TestSeededDatabaseAcceptsFirstExpense() {
	s.Require().NoError(Seeder{}.Seed(s.ctx, s.db))

	user, err := s.store.EnsureUser(s.ctx, 1001, "alice")
	s.Require().NoError(err)

	acc, ok, err := s.store.DefaultAccount(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().True(ok, "fresh install leaves the user with a committable account")
	assert.Equal(s.T(), "Cash", acc.Name)
	assert.Equal(s.T(), "EUR", acc.CurrencyCode)

	_, err = s.store.EnsureUser(s.ctx, 1001, "alice")
	s.Require().NoError(err)
	accounts, err := s.store.AccountsForUser(s.ctx, user.ID)
	s.Require().NoError(err)
	assert.Len(s.T(), accounts, 1, "repeat registration adds no links")

	cat, ok, err := s.store.DefaultCategory(s.ctx)
	s.Require().NoError(err)
	s.Require().True(ok)

	exp, err := s.store.InsertExpense(s.ctx, NewExpense{
		AccountID:  acc.ID,
		CategoryID: cat.ID,
		UserID:     user.ID,
		Amount:     12.50,
		Note:       "lunch",
	})
	s.Require().NoError(err)
	assert.NotZero(s.T(), exp.ID)
}
