package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"spendbot/bot/draft"
	"spendbot/bot/storage"
)

func TestRenderDraftStates(t *testing.T) {
	d := draft.Draft{Owner: 1, Amount: 12.5}

	body := renderDraft(d, nil, nil)
	assert.Contains(t, body, "12.50")
	assert.Contains(t, body, "Category: _not set_")
	assert.Contains(t, body, "Account: _not set_")
	assert.Contains(t, body, "Pick a category and an account.")

	cat := storage.Category{ID: 2, Name: "Groceries"}
	acc := storage.Account{ID: 3, Name: "Checking", CurrencyCode: "EUR"}
	d.CategoryID = cat.ID
	d.AccountID = acc.ID
	d.Note = "weekly shop"

	body = renderDraft(d, &cat, &acc)
	assert.Contains(t, body, "Groceries")
	assert.Contains(t, body, "Checking")
	assert.Contains(t, body, "EUR")
	assert.Contains(t, body, "weekly shop")
	assert.Contains(t, body, "Confirm to save.")
}

func TestBuildDraftKeyboardConfirmOnlyWhenComplete(t *testing.T) {
	cats := []storage.Category{{ID: 1, Name: "Groceries"}, {ID: 2, Name: "Dining"}}
	accs := []storage.Account{{ID: 10, Name: "Checking"}}

	incomplete := draft.Draft{Amount: 5, CategoryID: 1}
	markup := buildDraftKeyboard(incomplete, cats, accs)
	assert.False(t, keyboardHasUnique(markup.InlineKeyboard, cbConfirm))
	assert.True(t, keyboardHasUnique(markup.InlineKeyboard, cbCancel))

	complete := draft.Draft{Amount: 5, CategoryID: 1, AccountID: 10}
	markup = buildDraftKeyboard(complete, cats, accs)
	assert.True(t, keyboardHasUnique(markup.InlineKeyboard, cbConfirm))

	// One row per two categories plus the account row and the action row.
	require.Len(t, markup.InlineKeyboard, 3)
}

func keyboardHasUnique(rows [][]tele.InlineButton, unique string) bool {
	for _, row := range rows {
		for _, btn := range row {
			if btn.Unique == unique {
				return true
			}
		}
	}
	return false
}
