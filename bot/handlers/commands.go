package handlers

import (
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"spendbot/core/buildinfo"
	"spendbot/core/logger"
	tghelpers "spendbot/core/telegram/helpers"
)

const helpText = "Send an amount to record an expense, e.g. `12.50 lunch`.\n" +
	"Pick a category and an account on the keyboard, then confirm.\n\n" +
	"/cancel discards the expense in progress.\n" +
	"/status shows bot status.\n" +
	"/about shows information about this bot."

// Start registers the sender and shows usage.
func (h *Handlers) Start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	user, err := h.store.EnsureUser(ctx, sender.ID, tghelpers.DisplayName(sender))
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	logger.Info(ctx, "bot", "user.registered",
		slog.Int64("user_id", sender.ID),
		slog.String("username", logger.SanitizeLimit(user.Name, 64)),
	)

	return tghelpers.SendMD(c, "Hi "+escapeMD(user.Name)+"!\n\n"+helpText)
}

// Help shows usage.
func (h *Handlers) Help(c tele.Context) error {
	return tghelpers.SendMD(c, helpText)
}

// Status reports the user count and build version.
func (h *Handlers) Status(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	count, err := h.store.UserCount(ctx)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	text := fmt.Sprintf(
		"Users: %d\nDrafts in progress: %d\nVersion: %s (%s)",
		count, h.drafts.Count(), buildinfo.Version, buildinfo.Commit,
	)
	return tghelpers.SendText(c, text)
}

// About shows what the bot does and which build is running.
func (h *Handlers) About(c tele.Context) error {
	text := fmt.Sprintf(
		"📱 *Spendbot*\n\n"+
			"Turns chat messages like `12.50 lunch` into saved expense records.\n\n"+
			"Version: %s (%s)\n"+
			"Built: %s\n\n"+
			"Send an amount to get started, or /help for usage.",
		buildinfo.Version, buildinfo.Commit, buildinfo.Date,
	)
	return tghelpers.SendMD(c, text)
}

// CancelCommand discards the sender's draft, if any.
func (h *Handlers) CancelCommand(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	if h.drafts.Cancel(sender.ID) {
		return tghelpers.SendText(c, "Expense discarded.")
	}
	return tghelpers.SendText(c, "Nothing to cancel.")
}

// UsersCommand lists registered users. Admin only, enforced by routing.
func (h *Handlers) UsersCommand(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	users, err := h.store.Users(ctx)
	if err != nil {
		return fmt.Errorf("users: %w", err)
	}
	if len(users) == 0 {
		return tghelpers.SendText(c, "No registered users.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Registered users (%d):\n", len(users))
	for _, u := range users {
		fmt.Fprintf(&b, "• %s (%d)\n", u.Name, u.TelegramID)
	}
	return tghelpers.SendText(c, b.String())
}
