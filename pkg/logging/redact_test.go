package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "operator@solux.cash", "op****@solux.cash"},
		{"short local kept", "ab@solux.cash", "ab@solux.cash"},
		{"no at", "not-an-email", "not-an-email"},
		{"at at end", "abc@", "abc@"},
		{"at at start", "@solux.cash", "@solux.cash"},
		{"unicode local", "ñandú@solux.cash", "ña****@solux.cash"},
		{"whitespace trimmed", "  user@solux.cash  ", "us****@solux.cash"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RedactEmail(tt.in))
		})
	}
}

func TestRedactPAN(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "************4242", RedactPAN("4242424242424242"))
	assert.Equal(t, "4242", RedactPAN("4242"))
}
