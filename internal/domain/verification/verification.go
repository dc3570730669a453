package verification

import (
	"strings"
	"time"

	"github.com/solux-cash/solux-backend/internal/domain/event"
	"github.com/solux-cash/solux-backend/pkg/errorx"
	"github.com/solux-cash/solux-backend/pkg/randcode"
)

const (
	CodeLength = 6

	// ExpiresAfter bounds the guessing window. The code is a usability gate,
	// not a security boundary.
	ExpiresAfter = 10 * time.Minute
)

// Verification is the live code entry for one email address. The email is
// the store key, compared case-sensitively with no normalization. At most
// one live entry exists per email; issuing again replaces the entry.
type Verification struct {
	event.Recorder
	email     string
	code      string
	issuedAt  time.Time
	expiresAt time.Time
}

// NewVerification issues a fresh code for email. The email check is
// deliberately minimal (non-empty, contains "@"); the code round-trip is the
// real proof of address control.
func NewVerification(email string) (*Verification, error) {
	const op = "verification.NewVerification"

	if err := ValidateEmail(email); err != nil {
		return nil, errorx.Wrap(err, op)
	}

	code, err := randcode.GenerateNumericCode()
	if err != nil {
		return nil, errorx.Wrap(err, op)
	}
	now := time.Now().UTC()

	v := &Verification{
		email:     email,
		code:      code,
		issuedAt:  now,
		expiresAt: now.Add(ExpiresAfter),
	}

	v.AddEvent(&CodeIssued{
		Header:    event.NewEventHeader(),
		Email:     email,
		Code:      code,
		ExpiresAt: v.expiresAt,
	})

	return v, nil
}

// ValidateEmail applies the minimal syntactic gate used everywhere an email
// enters the system.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !strings.Contains(email, "@") {
		return ErrEmailInvalid
	}
	return nil
}

type RehydrateArgs struct {
	Email     string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func Rehydrate(args RehydrateArgs) *Verification {
	return &Verification{
		email:     args.Email,
		code:      args.Code,
		issuedAt:  args.IssuedAt,
		expiresAt: args.ExpiresAt,
	}
}

func (v *Verification) Email() string {
	if v == nil {
		return ""
	}
	return v.email
}

func (v *Verification) Code() string {
	if v == nil {
		return ""
	}
	return v.code
}

func (v *Verification) IssuedAt() time.Time {
	if v == nil {
		return time.Time{}
	}
	return v.issuedAt
}

func (v *Verification) ExpiresAt() time.Time {
	if v == nil {
		return time.Time{}
	}
	return v.expiresAt
}

func (v *Verification) IsExpiredAt(now time.Time) bool {
	if v == nil || v.expiresAt.IsZero() {
		return true
	}
	return now.After(v.expiresAt)
}

// Matches compares the submitted code to the stored one. Plain string
// comparison is sufficient here; this is an anti-automation gate, not a
// cryptographic secret.
func (v *Verification) Matches(code string) bool {
	if v == nil {
		return false
	}
	return v.code == code
}

// MarkVerified records the EmailVerified event. The caller deletes the entry
// from the store; the code is single-use.
func (v *Verification) MarkVerified() {
	if v == nil {
		return
	}
	v.AddEvent(&EmailVerified{
		Header: event.NewEventHeader(),
		Email:  v.email,
	})
}
