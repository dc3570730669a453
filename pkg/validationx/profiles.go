package validationx

import (
	validation "github.com/ARUMANDESU/validation"
)

const (
	MaxEmailLength         = 254
	VerificationCodeLength = 6
	SSNLastFourLength      = 4
)

// EmailRules is the minimal syntactic gate used on every email input: present
// and containing an "@".
var EmailRules = []validation.Rule{
	validation.Required,
	validation.Length(1, MaxEmailLength),
	MinimalEmail,
}

// CodeRules gates verification code inputs: exactly six digits.
var CodeRules = []validation.Rule{
	validation.Required,
	validation.Length(VerificationCodeLength, VerificationCodeLength),
	Digits,
}

var NameRules = []validation.Rule{
	validation.Required,
	validation.Length(1, 100),
}

// SSNLastFourRules gates the compliance form's last-four field.
var SSNLastFourRules = []validation.Rule{
	validation.Required,
	validation.Length(SSNLastFourLength, SSNLastFourLength),
	Digits,
}
