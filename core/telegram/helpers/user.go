package helpers

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// DisplayName builds a human-readable label for a Telegram user.
// Prefers @username, then first/last name, then the numeric ID.
func DisplayName(u *tele.User) string {
	if u == nil {
		return "unknown"
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	return strings.TrimSpace(tele.ChatID(u.ID).Recipient())
}
