package enrollment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
)

func validProfile() enrollment.Profile {
	return enrollment.Profile{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		DOB:         "1991-12-10",
		SSNLastFour: "1234",
		Address:     validAddress(),
	}
}

func TestProfile_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validProfile().Validate())

	tests := []struct {
		name   string
		mutate func(p *enrollment.Profile)
	}{
		{name: "missing first name", mutate: func(p *enrollment.Profile) { p.FirstName = "" }},
		{name: "missing email", mutate: func(p *enrollment.Profile) { p.Email = "" }},
		{name: "email without at sign", mutate: func(p *enrollment.Profile) { p.Email = "ada.example.com" }},
		{name: "dob wrong layout", mutate: func(p *enrollment.Profile) { p.DOB = "10.12.1991" }},
		{name: "ssn too short", mutate: func(p *enrollment.Profile) { p.SSNLastFour = "123" }},
		{name: "missing address line", mutate: func(p *enrollment.Profile) { p.Address.Line1 = "" }},
		{name: "missing city", mutate: func(p *enrollment.Profile) { p.Address.City = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validProfile()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestProfile_ValidateIdentity(t *testing.T) {
	t.Parallel()

	p := enrollment.Profile{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address:   validAddress(),
	}
	assert.NoError(t, p.ValidateIdentity(), "identity check ignores DOB and SSN")

	p.LastName = ""
	assert.Error(t, p.ValidateIdentity())
}
