package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestParseCallback(t *testing.T) {
	key, payload := parseCallback(nil)
	assert.Empty(t, key)
	assert.Empty(t, payload)

	// Unique set by telebot's typed dispatch carries the raw payload in Data.
	key, payload = parseCallback(&tele.Callback{Unique: "exp_acc", Data: "7"})
	assert.Equal(t, "exp_acc", key)
	assert.Equal(t, "7", payload)

	// Generic OnCallback leaves Unique empty and encodes both in Data.
	key, payload = parseCallback(&tele.Callback{Data: "\\fexp_cat|3"})
	assert.Equal(t, "exp_cat", key)
	assert.Equal(t, "3", payload)
}

func TestNormalizeHandlerName(t *testing.T) {
	assert.Equal(t, "start", normalizeHandlerName("/start"))
	assert.Equal(t, "expense_text", normalizeHandlerName("Expense Text"))
	assert.Equal(t, "unknown", normalizeHandlerName("  "))
}
