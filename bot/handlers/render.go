package handlers

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"spendbot/bot/draft"
	"spendbot/bot/storage"
	"spendbot/core/telegram/format"
	"spendbot/core/telegram/keyboard"
)

const (
	cbCategory = "exp_cat"
	cbAccount  = "exp_acc"
	cbConfirm  = "exp_confirm"
	cbCancel   = "exp_cancel"
)

// renderDraft builds the Markdown body shown above the draft keyboard.
func renderDraft(d draft.Draft, cat *storage.Category, acc *storage.Account) string {
	var b strings.Builder
	b.WriteString("*New expense*\n")
	fmt.Fprintf(&b, "Amount: *%s*", formatAmount(d.Amount))
	if acc != nil && acc.CurrencyCode != "" {
		fmt.Fprintf(&b, " %s", acc.CurrencyCode)
	}
	b.WriteString("\n")

	if cat != nil {
		fmt.Fprintf(&b, "Category: %s\n", escapeMD(cat.Name))
	} else {
		b.WriteString("Category: _not set_\n")
	}
	if acc != nil {
		fmt.Fprintf(&b, "Account: %s\n", escapeMD(acc.Name))
	} else {
		b.WriteString("Account: _not set_\n")
	}
	if d.Note != "" {
		fmt.Fprintf(&b, "Note: %s\n", escapeMD(d.Note))
	}

	if d.Complete() {
		b.WriteString("\nConfirm to save.")
	} else {
		b.WriteString("\nPick a category and an account.")
	}
	return b.String()
}

// renderCommitted builds the final message replacing the keyboard.
func renderCommitted(exp storage.Expense, cat *storage.Category, acc *storage.Account) string {
	var b strings.Builder
	b.WriteString("✅ *Saved*\n")
	fmt.Fprintf(&b, "Amount: *%s*", formatAmount(exp.Amount))
	if acc != nil && acc.CurrencyCode != "" {
		fmt.Fprintf(&b, " %s", acc.CurrencyCode)
	}
	b.WriteString("\n")
	if cat != nil {
		fmt.Fprintf(&b, "Category: %s\n", escapeMD(cat.Name))
	}
	if acc != nil {
		fmt.Fprintf(&b, "Account: %s\n", escapeMD(acc.Name))
	}
	if note := format.DerefString(exp.Note, ""); note != "" {
		fmt.Fprintf(&b, "Note: %s\n", escapeMD(note))
	}
	return b.String()
}

// buildDraftKeyboard assembles the category picker, account picker and
// confirm/cancel row for a draft in progress.
func buildDraftKeyboard(d draft.Draft, cats []storage.Category, accs []storage.Account) *tele.ReplyMarkup {
	catButtons := make([]keyboard.InlineBtn, 0, len(cats))
	for _, cat := range cats {
		label := cat.Name
		if cat.ID == d.CategoryID {
			label = "• " + label
		}
		catButtons = append(catButtons, keyboard.InlineBtn{
			Text:   label,
			Unique: cbCategory,
			Data:   strconv.FormatInt(cat.ID, 10),
		})
	}
	markup := keyboard.InlineButtonsNPerRow(catButtons, 2)

	accButtons := make([]keyboard.InlineBtn, 0, len(accs))
	for _, acc := range accs {
		label := acc.Name
		if acc.ID == d.AccountID {
			label = "• " + label
		}
		accButtons = append(accButtons, keyboard.InlineBtn{
			Text:   label,
			Unique: cbAccount,
			Data:   strconv.FormatInt(acc.ID, 10),
		})
	}
	accMarkup := keyboard.InlineButtonsNPerRow(accButtons, 2)
	markup.InlineKeyboard = append(markup.InlineKeyboard, accMarkup.InlineKeyboard...)

	var actions []tele.Btn
	if d.Complete() {
		actions = append(actions, markup.Data("✅ Confirm", cbConfirm, "1"))
	}
	actions = append(actions, keyboard.CancelButton(markup, cbCancel))
	keyboard.AppendRow(markup, actions...)

	return markup
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func escapeMD(s string) string {
	escaped, err := format.EscapeMarkdown(s, format.MarkdownV1)
	if err != nil {
		return s
	}
	return escaped
}
