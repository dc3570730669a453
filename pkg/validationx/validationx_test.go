package validationx

import (
	"testing"

	validation "github.com/ARUMANDESU/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimalEmailRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"with at sign", "a@b.com", nil},
		{"bare at sign accepted", "a@b", nil},
		{"empty deferred to Required", "", nil},
		{"no at sign", "not-an-email", ErrMissingAtSign},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := MinimalEmail.Validate(tt.in)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	assert.ErrorIs(t, MinimalEmail.Validate(42), ErrNotAString)
}

func TestDigitsRule(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Digits.Validate("123456"))
	assert.NoError(t, Digits.Validate(""))
	assert.ErrorIs(t, Digits.Validate("12a456"), ErrNotDigits)
	assert.ErrorIs(t, Digits.Validate("12 456"), ErrNotDigits)
}

func TestCodeRules(t *testing.T) {
	t.Parallel()

	require.NoError(t, validation.Validate("483920", CodeRules...))
	assert.Error(t, validation.Validate("", CodeRules...))
	assert.Error(t, validation.Validate("12345", CodeRules...))
	assert.Error(t, validation.Validate("1234567", CodeRules...))
	assert.Error(t, validation.Validate("12345x", CodeRules...))
}

func TestSSNLastFourRules(t *testing.T) {
	t.Parallel()

	require.NoError(t, validation.Validate("1234", SSNLastFourRules...))
	assert.Error(t, validation.Validate("123", SSNLastFourRules...))
	assert.Error(t, validation.Validate("12345", SSNLastFourRules...))
	assert.Error(t, validation.Validate("12ab", SSNLastFourRules...))
}
