package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tg "spendbot/core/telegram"
)

func TestRegisterWiresCommandsAndCallbacks(t *testing.T) {
	reg := tg.NewRegistry()
	New(nil, nil).Register(reg)

	for _, name := range []string{"/start", "/help", "/status", "/about", "/cancel", "/users"} {
		_, _, ok := reg.LookupCommand(name)
		require.True(t, ok, name)
	}

	_, users, ok := reg.LookupCommand("/users")
	require.True(t, ok)
	assert.True(t, users.AdminOnly, "/users is admin only")

	for _, key := range []string{cbCategory, cbAccount, cbConfirm, cbCancel} {
		_, ok := reg.GetCallback(key)
		assert.True(t, ok, key)
	}
}
