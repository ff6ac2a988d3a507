// Package validate holds the input-format rules for account fields.
// Every check returns an explicit error instead of raising; handlers map the
// returned errors to field-keyed client error payloads.
package validate

import (
	"errors"
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUsernameInvalid is returned for usernames shorter than three
	// characters or containing characters outside letters, digits and ._@-.
	ErrUsernameInvalid = errors.New("username must be at least 3 characters of letters, digits or ._@-")
	// ErrEmailInvalid is returned for syntactically invalid email addresses.
	ErrEmailInvalid = errors.New("email address is invalid")
	// ErrPasswordTooWeak is returned for passwords missing length or
	// character-class requirements.
	ErrPasswordTooWeak = errors.New("password must be at least 8 characters with upper, lower, digit and symbol")
)

const (
	minUsernameLen = 3
	minPasswordLen = 8
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@-]+$`)
	emailValidator  = validator.New()
)

// Username checks the account name format.
func Username(value string) error {
	if len(value) < minUsernameLen || !usernamePattern.MatchString(value) {
		return ErrUsernameInvalid
	}

	return nil
}

// Email checks the address syntactically.
func Email(value string) error {
	if err := emailValidator.Var(value, "required,email"); err != nil {
		return ErrEmailInvalid
	}

	return nil
}

// Password enforces the strength policy: at least 8 characters containing an
// upper-case letter, a lower-case letter, a digit and a non-alphanumeric
// symbol. RE2 has no lookaheads, so the classes are checked one by one.
func Password(value string) error {
	if len(value) < minPasswordLen {
		return ErrPasswordTooWeak
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool

	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return ErrPasswordTooWeak
	}

	return nil
}
