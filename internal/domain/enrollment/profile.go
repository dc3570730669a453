package enrollment

import (
	"github.com/ARUMANDESU/validation"

	"github.com/solux-cash/solux-backend/pkg/validationx"
)

const DOBLayout = "2006-01-02"

type Address struct {
	Line1      string
	City       string
	State      string
	PostalCode string
	Country    string
}

func (a Address) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Line1, validation.Required, validation.Length(1, 200)),
		validation.Field(&a.City, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.State, validation.Required, validation.Length(2, 100)),
		validation.Field(&a.PostalCode, validation.Required, validation.Length(3, 20)),
		validation.Field(&a.Country, validation.Length(2, 3)),
	)
}

// Profile accumulates across wizard steps: email from verification, names
// and address from the profile form, DOB and SSN last four from the
// compliance form.
type Profile struct {
	FirstName   string
	LastName    string
	Email       string
	DOB         string
	SSNLastFour string
	Address     Address
}

// ValidateIdentity checks only the fields the profile form collects.
func (p Profile) ValidateIdentity() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FirstName, validationx.NameRules...),
		validation.Field(&p.LastName, validationx.NameRules...),
		validation.Field(&p.Address),
	)
}

// Validate checks the full profile as required for enrollment.
func (p Profile) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FirstName, validationx.NameRules...),
		validation.Field(&p.LastName, validationx.NameRules...),
		validation.Field(&p.Email, validationx.EmailRules...),
		validation.Field(&p.DOB, validation.Required, validation.Date(DOBLayout)),
		validation.Field(&p.SSNLastFour, validationx.SSNLastFourRules...),
		validation.Field(&p.Address),
	)
}
