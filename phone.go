package console

import (
	"errors"
	"regexp"
)

// ErrInvalidPhone is a local validation failure, caught before any
// network call.
var ErrInvalidPhone = errors.New("console: phone must be E.164: + followed by 7-15 digits, leading digit 1-9")

// e164 matches +16045551234 but not 6045551234 or +0123456789.
var e164 = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// ValidE164 reports whether phone is a valid E.164 number.
func ValidE164(phone string) bool {
	return e164.MatchString(phone)
}
