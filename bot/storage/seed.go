package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var seedCurrencies = []string{"EUR"}

var seedCategories = []struct {
	Name      string
	SortOrder int64
}{
	{"Groceries", 10},
	{"Dining", 20},
	{"Transport", 30},
	{"Household", 40},
	{"Health", 50},
	{"Leisure", 60},
	{"Other", 90},
}

var seedAccounts = []struct {
	Name     string
	Currency string
}{
	{"Cash", "EUR"},
}

// Seeder populates reference currencies, categories and a starter
// account when the tables are empty. Running it against a populated
// database is a no-op.
type Seeder struct{}

// Name identifies the seeder in bootstrap logs.
func (Seeder) Name() string { return "reference_data" }

// Seed inserts the default currencies, categories and accounts.
func (Seeder) Seed(ctx context.Context, db *sqlx.DB) error {
	s := New(db)

	var currencyCount int64
	if err := db.GetContext(ctx, &currencyCount, `SELECT COUNT(*) FROM currencies`); err != nil {
		return fmt.Errorf("seed currencies: %w", err)
	}
	if currencyCount == 0 {
		for _, code := range seedCurrencies {
			if _, err := s.CreateCurrency(ctx, code); err != nil {
				return err
			}
		}
	}

	var categoryCount int64
	if err := db.GetContext(ctx, &categoryCount, `SELECT COUNT(*) FROM categories`); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if categoryCount == 0 {
		for _, cat := range seedCategories {
			if _, err := s.CreateCategory(ctx, cat.Name, cat.SortOrder); err != nil {
				return err
			}
		}
	}

	var accountCount int64
	if err := db.GetContext(ctx, &accountCount, `SELECT COUNT(*) FROM accounts`); err != nil {
		return fmt.Errorf("seed accounts: %w", err)
	}
	if accountCount == 0 {
		for _, acc := range seedAccounts {
			var currencyID int64
			if err := db.GetContext(ctx, &currencyID,
				`SELECT id FROM currencies WHERE code = ?`, acc.Currency); err != nil {
				return fmt.Errorf("seed accounts: %w", err)
			}
			if _, err := s.CreateAccount(ctx, currencyID, acc.Name, nil); err != nil {
				return err
			}
		}
	}

	return nil
}
