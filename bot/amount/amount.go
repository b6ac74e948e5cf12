// Package amount extracts spending amounts from free-form message text.
package amount

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNoAmount indicates that no numeric token was found in the text.
	ErrNoAmount = errors.New("amount: no amount found")
	// ErrInvalidAmount indicates a numeric token that is not a positive finite value.
	ErrInvalidAmount = errors.New("amount: invalid amount")
)

// Parse extracts a positive decimal amount from the first token of text.
// Comma decimals are accepted ("12,50" equals "12.50"). The remaining
// words become the note. The parsed value is returned as-is; rounding
// is left to the caller.
func Parse(text string) (float64, string, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, "", ErrNoAmount
	}

	token := normalizeToken(fields[0])
	if token == "" {
		return 0, "", ErrNoAmount
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, "", ErrNoAmount
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, "", ErrInvalidAmount
	}
	if value <= 0 {
		return 0, "", ErrInvalidAmount
	}

	note := strings.TrimSpace(strings.Join(fields[1:], " "))
	return value, note, nil
}

func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	// Accept a leading currency marker typed by habit.
	token = strings.TrimLeft(token, "€$£+")
	token = strings.ReplaceAll(token, ",", ".")
	return token
}
