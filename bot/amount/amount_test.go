package amount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     float64
		wantNote string
		wantErr  error
	}{
		{name: "plain integer", text: "12", want: 12},
		{name: "dot decimals", text: "12.50", want: 12.5},
		{name: "comma decimals", text: "12,50", want: 12.5},
		{name: "amount with note", text: "12.50 lunch with team", want: 12.5, wantNote: "lunch with team"},
		{name: "currency prefix", text: "€9.99 coffee", want: 9.99, wantNote: "coffee"},
		{name: "surrounding whitespace", text: "  7,25  taxi  ", want: 7.25, wantNote: "taxi"},
		{name: "empty", text: "", wantErr: ErrNoAmount},
		{name: "only whitespace", text: "   ", wantErr: ErrNoAmount},
		{name: "no number", text: "lunch 12.50", wantErr: ErrNoAmount},
		{name: "zero", text: "0", wantErr: ErrInvalidAmount},
		{name: "negative", text: "-5 refund", wantErr: ErrInvalidAmount},
		{name: "infinity", text: "inf", wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, note, err := Parse(tt.text)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.Equal(t, tt.wantNote, note)
		})
	}
}
