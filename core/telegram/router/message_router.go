package router

import (
	"time"

	tg "spendbot/core/telegram"
	"spendbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls routing of plain text updates.
type TextOptions struct {
	// OnText handles any non-command text message. For this bot that is
	// the expense capture flow.
	OnText tele.HandlerFunc
	// Name labels OnText in handler summaries.
	Name string
}

// TextRoute builds the handler for plain text updates. Text that matches a
// registered command (or alias) is dispatched to that command first.
func TextRoute(reg *tg.Registry, opts TextOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if opts.OnText != nil {
			name := opts.Name
			if name == "" {
				name = "text"
			}
			return handleWithSummary(c, name, start, "", "", func() error {
				return opts.OnText(c)
			})
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return tg.Route{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
