package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsername(t *testing.T) {
	invalid := []string{"", "x", "xx", "xxx+", "xx x", "xxx/"}
	valid := []string{"xxx_", "xxx3", "xxx-", "xxxX", "121", "user@host", "first.last"}

	for _, value := range invalid {
		assert.ErrorIs(t, Username(value), ErrUsernameInvalid, "username %q", value)
	}

	for _, value := range valid {
		assert.NoError(t, Username(value), "username %q", value)
	}
}

func TestEmail(t *testing.T) {
	invalid := []string{"", "x", "x+mail.ru", "x@", "@mail.ru"}
	valid := []string{"x@mail.ru", "first.last@example.com"}

	for _, value := range invalid {
		assert.ErrorIs(t, Email(value), ErrEmailInvalid, "email %q", value)
	}

	for _, value := range valid {
		assert.NoError(t, Email(value), "email %q", value)
	}
}

func TestPassword(t *testing.T) {
	invalid := []string{
		"",
		"short",
		strings.Repeat("x", 8),        // no upper, digit, symbol
		strings.Repeat("x", 8) + "X",  // no digit, symbol
		strings.Repeat("x", 8) + "X1", // no symbol
		"XXXXXXX1>",                   // no lower
		"xxxxxxx1>",                   // no upper
		"Xx1>",                        // too short
	}
	valid := []string{
		strings.Repeat("x", 8) + "X1>",
		"<PaSSW0RD>",
		"Aa1!aaaa",
	}

	for _, value := range invalid {
		assert.ErrorIs(t, Password(value), ErrPasswordTooWeak, "password %q", value)
	}

	for _, value := range valid {
		assert.NoError(t, Password(value), "password %q", value)
	}
}
