package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		name    string
		cb      *tele.Callback
		key     string
		payload string
	}{
		{"nil callback", nil, "", ""},
		{"key and payload", &tele.Callback{Data: "\\fexp_cat|3"}, "exp_cat", "3"},
		{"key only", &tele.Callback{Data: "\\fexp_confirm"}, "exp_confirm", ""},
		{"no prefix", &tele.Callback{Data: "exp_acc|7"}, "exp_acc", "7"},
		{"empty payload kept", &tele.Callback{Data: "\\fexp_cancel|"}, "exp_cancel", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, payload := ParseCallbackData(tt.cb)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.payload, payload)
		})
	}
}
