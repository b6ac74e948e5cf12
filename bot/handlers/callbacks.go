package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"spendbot/bot/draft"
	"spendbot/bot/storage"
	"spendbot/core/logger"
	"spendbot/core/telegram/callbacks"
	tghelpers "spendbot/core/telegram/helpers"
)

const sessionExpiredText = "Session expired. Send an amount to start over."

// CategoryCallback assigns the chosen category to the sender's draft.
func (h *Handlers) CategoryCallback(c tele.Context) error {
	return h.assignCallback(c, func(owner, id int64) (draft.Draft, error) {
		return h.drafts.SetCategory(owner, id)
	})
}

// AccountCallback assigns the chosen account to the sender's draft.
func (h *Handlers) AccountCallback(c tele.Context) error {
	return h.assignCallback(c, func(owner, id int64) (draft.Draft, error) {
		return h.drafts.SetAccount(owner, id)
	})
}

func (h *Handlers) assignCallback(c tele.Context, set func(owner, id int64) (draft.Draft, error)) error {
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}

	d, err := set(sender.ID, id)
	if errors.Is(err, draft.ErrNoDraft) {
		return h.expireKeyboard(c)
	}
	if err != nil {
		return fmt.Errorf("callback: %w", err)
	}

	body, markup, err := h.draftView(ctx, d)
	if err != nil {
		return fmt.Errorf("callback: %w", err)
	}
	return tghelpers.EditMD(c, body, markup)
}

// ConfirmCallback commits the draft through the persistence gateway.
func (h *Handlers) ConfirmCallback(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	exp, err := h.drafts.Commit(ctx, sender.ID, h.store)
	switch {
	case errors.Is(err, draft.ErrNoDraft):
		return h.expireKeyboard(c)
	case errors.Is(err, draft.ErrIncompleteDraft):
		return c.Respond(&tele.CallbackResponse{Text: "Pick a category and an account first."})
	case errors.Is(err, storage.ErrMissingReference):
		// A picked category or account was deleted underneath the draft.
		h.drafts.Cancel(sender.ID)
		logger.Warn(ctx, "bot", "draft.commit.stale_reference",
			slog.String("err", err.Error()),
		)
		return tghelpers.EditMD(c, "That category or account no longer exists. Send an amount to start over.")
	case errors.Is(err, storage.ErrInvalidAmount):
		return c.Respond(&tele.CallbackResponse{Text: "The amount must be a positive number."})
	case err != nil:
		// Draft is kept; the user can retry the confirm button.
		_ = c.Respond(&tele.CallbackResponse{Text: "Saving failed, try again."})
		return fmt.Errorf("confirm: %w", err)
	}

	var (
		cat *storage.Category
		acc *storage.Account
	)
	if got, lerr := h.store.CategoryByID(ctx, exp.CategoryID); lerr == nil {
		cat = &got
	}
	if got, lerr := h.store.AccountByID(ctx, exp.AccountID); lerr == nil {
		acc = &got
	}

	logger.Info(ctx, "bot", "draft.committed",
		slog.Int64("expense_id", exp.ID),
		slog.Float64("amount", exp.Amount),
		slog.Int64("category_id", exp.CategoryID),
		slog.Int64("account_id", exp.AccountID),
	)
	return tghelpers.EditMD(c, renderCommitted(exp, cat, acc))
}

// CancelCallback discards the draft and clears the keyboard.
func (h *Handlers) CancelCallback(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	if !h.drafts.Cancel(sender.ID) {
		return h.expireKeyboard(c)
	}
	return tghelpers.EditMD(c, "🚫 Expense discarded.")
}

// expireKeyboard answers a stray callback whose draft is gone.
func (h *Handlers) expireKeyboard(c tele.Context) error {
	_ = c.Respond(&tele.CallbackResponse{Text: sessionExpiredText})
	return tghelpers.EditMD(c, sessionExpiredText)
}
