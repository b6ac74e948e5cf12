// Package handlers wires the Telegram surface of the bot: commands,
// free-text expense capture and the draft keyboard callbacks.
package handlers

import (
	tele "gopkg.in/telebot.v4"

	"spendbot/bot/draft"
	"spendbot/bot/storage"
	tg "spendbot/core/telegram"
	"spendbot/core/telegram/commands"
)

// Handlers bundles the bot's update handlers with their dependencies.
type Handlers struct {
	store  *storage.Store
	drafts *draft.Store
}

// New creates the handler set.
func New(store *storage.Store, drafts *draft.Store) *Handlers {
	return &Handlers{
		store:  store,
		drafts: drafts,
	}
}

// Register adds every command and callback to the registry.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Register and show usage",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.Help,
		Description: "How to record an expense",
	})
	reg.RegisterCommand("/status", commands.Command{
		Handler:     h.Status,
		Description: "Bot status and version",
	})
	reg.RegisterCommand("/about", commands.Command{
		Handler:     h.About,
		Description: "About this bot",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     h.CancelCommand,
		Description: "Discard the expense in progress",
	})
	reg.RegisterCommand("/users", commands.Command{
		Handler:     h.UsersCommand,
		Description: "List registered users",
		AdminOnly:   true,
	})

	_ = reg.RegisterCallback(cbCategory, h.CategoryCallback)
	_ = reg.RegisterCallback(cbAccount, h.AccountCallback)
	_ = reg.RegisterCallback(cbConfirm, h.ConfirmCallback)
	_ = reg.RegisterCallback(cbCancel, h.CancelCallback)

	reg.SetCallbackNotFound(func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	})
}
