package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"spendbot/bot/amount"
	"spendbot/bot/draft"
	"spendbot/bot/storage"
	"spendbot/core/logger"
	tghelpers "spendbot/core/telegram/helpers"
)

// Text captures a free-text amount and opens a draft with the keyboard.
func (h *Handlers) Text(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	value, note, err := amount.Parse(c.Text())
	switch {
	case errors.Is(err, amount.ErrNoAmount):
		return tghelpers.SendMD(c, "Send an amount to record an expense, e.g. `12.50 lunch`.")
	case errors.Is(err, amount.ErrInvalidAmount):
		return tghelpers.SendText(c, "The amount must be a positive number.")
	case err != nil:
		return fmt.Errorf("text: %w", err)
	}

	user, err := h.store.EnsureUser(ctx, sender.ID, tghelpers.DisplayName(sender))
	if err != nil {
		return fmt.Errorf("text: %w", err)
	}

	defaults := draft.Defaults{UserID: user.ID, Note: note}
	if cat, ok, derr := h.store.DefaultCategory(ctx); derr != nil {
		return fmt.Errorf("text: %w", derr)
	} else if ok {
		defaults.CategoryID = cat.ID
	}
	if acc, ok, derr := h.store.DefaultAccount(ctx, user.ID); derr != nil {
		return fmt.Errorf("text: %w", derr)
	} else if ok {
		defaults.AccountID = acc.ID
	}

	d, err := h.drafts.Start(sender.ID, value, defaults)
	if err != nil {
		// Parse already guards positivity; treat as user input anyway.
		return tghelpers.SendText(c, "The amount must be a positive number.")
	}

	body, markup, err := h.draftView(ctx, d)
	if err != nil {
		return fmt.Errorf("text: %w", err)
	}

	msg, err := c.Bot().Send(c.Recipient(), body, &tele.SendOptions{
		ParseMode:   tele.ModeMarkdown,
		ReplyMarkup: markup,
	})
	if err != nil {
		return fmt.Errorf("text: send keyboard: %w", err)
	}
	_, _ = h.drafts.SetMessage(sender.ID, msg.ID)

	logger.Info(ctx, "bot", "draft.started",
		slog.Float64("amount", d.Amount),
		slog.Int64("category_id", d.CategoryID),
		slog.Int64("account_id", d.AccountID),
	)
	return nil
}

// draftView loads reference data and renders the draft body and keyboard.
func (h *Handlers) draftView(ctx context.Context, d draft.Draft) (string, *tele.ReplyMarkup, error) {
	cats, err := h.store.Categories(ctx)
	if err != nil {
		return "", nil, err
	}
	accs, err := h.store.AccountsForUser(ctx, d.UserID)
	if err != nil {
		return "", nil, err
	}

	var (
		cat *storage.Category
		acc *storage.Account
	)
	for i := range cats {
		if cats[i].ID == d.CategoryID {
			cat = &cats[i]
			break
		}
	}
	for i := range accs {
		if accs[i].ID == d.AccountID {
			acc = &accs[i]
			break
		}
	}

	return renderDraft(d, cat, acc), buildDraftKeyboard(d, cats, accs), nil
}
