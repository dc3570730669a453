package validationx

import (
	"errors"
	"strings"

	validation "github.com/ARUMANDESU/validation"
)

var ErrNotAString = errors.New("value is not a string")

var (
	ErrMissingAtSign = validation.NewError(
		"validation_minimal_email",
		"must contain an @ sign",
	)
	ErrNotDigits = validation.NewError(
		"validation_is_digits",
		"must contain only digits",
	)
)

// MinimalEmail accepts anything non-empty containing an "@". Deliverability
// and full RFC syntax are not checked; the verification code round-trip is
// the real proof of address control.
var MinimalEmail = MinimalEmailRule{}

type MinimalEmailRule struct{}

func (r MinimalEmailRule) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return ErrNotAString
	}
	if s == "" {
		return nil // Let Required handle emptiness
	}
	if !strings.Contains(s, "@") {
		return ErrMissingAtSign
	}
	return nil
}

// Digits rejects any non-numeric character. Length is enforced separately so
// error messages stay specific.
var Digits = DigitsRule{}

type DigitsRule struct{}

func (r DigitsRule) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return ErrNotAString
	}
	if s == "" {
		return nil
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return ErrNotDigits
		}
	}
	return nil
}
