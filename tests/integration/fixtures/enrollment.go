package fixtures

import "github.com/solux-cash/solux-backend/internal/domain/enrollment"

const (
	ValidEmail  = "holder@example.com"
	SecondEmail = "second@example.com"
)

func ValidAddress() enrollment.Address {
	return enrollment.Address{
		Line1:      "500 Market St",
		City:       "San Francisco",
		State:      "CA",
		PostalCode: "94105",
		Country:    "US",
	}
}

func ValidProfile() enrollment.Profile {
	return enrollment.Profile{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       ValidEmail,
		DOB:         "1991-12-10",
		SSNLastFour: "1234",
		Address:     ValidAddress(),
	}
}
