// Package phone canonicalizes Uzbek phone numbers to E.164 (+998XXXXXXXXX).
package phone

import (
	"errors"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "UZ"

var (
	// ErrEmpty is returned for inputs that carry no subscriber digits,
	// including a bare country code.
	ErrEmpty = errors.New("phone: empty number")
	// ErrInvalid is returned when the digits do not form a valid number.
	ErrInvalid = errors.New("phone: invalid number")
)

// Normalize canonicalizes a raw phone input to +998XXXXXXXXX. Inputs may
// carry spaces, dashes or a country prefix; when more than nine digits are
// present the last nine are taken as the subscriber number.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmpty
	}

	var digits strings.Builder
	for _, r := range trimmed {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch {
	case d == "" || d == "998":
		return "", ErrEmpty
	case len(d) > 9:
		d = d[len(d)-9:]
	case len(d) < 9:
		return "", ErrInvalid
	}

	candidate := "+998" + d
	num, err := phonenumbers.Parse(candidate, defaultRegion)
	if err != nil {
		return "", ErrInvalid
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// NormalizeOptional normalizes a raw input, mapping empty or
// country-code-only values to an empty string instead of an error.
func NormalizeOptional(raw string) (string, error) {
	normalized, err := Normalize(raw)
	if errors.Is(err, ErrEmpty) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return normalized, nil
}
