package builders

import (
	"time"

	"github.com/solux-cash/solux-backend/internal/domain/verification"
	"github.com/solux-cash/solux-backend/pkg/randcode"
)

type VerificationBuilder struct {
	email     string
	code      string
	issuedAt  time.Time
	expiresAt time.Time
}

func NewVerificationBuilder() *VerificationBuilder {
	code, _ := randcode.GenerateNumericCode()
	now := time.Now().UTC()

	return &VerificationBuilder{
		email:     "test@example.com",
		code:      code,
		issuedAt:  now,
		expiresAt: now.Add(verification.ExpiresAfter),
	}
}

func (b *VerificationBuilder) WithEmail(email string) *VerificationBuilder {
	b.email = email
	return b
}

func (b *VerificationBuilder) WithCode(code string) *VerificationBuilder {
	b.code = code
	return b
}

func (b *VerificationBuilder) WithExpiresAt(t time.Time) *VerificationBuilder {
	b.expiresAt = t
	return b
}

// Expired backdates the entry past its TTL.
func (b *VerificationBuilder) Expired() *VerificationBuilder {
	b.issuedAt = time.Now().UTC().Add(-verification.ExpiresAfter - time.Minute)
	b.expiresAt = b.issuedAt.Add(verification.ExpiresAfter)
	return b
}

func (b *VerificationBuilder) Build() *verification.Verification {
	return verification.Rehydrate(verification.RehydrateArgs{
		Email:     b.email,
		Code:      b.code,
		IssuedAt:  b.issuedAt,
		ExpiresAt: b.expiresAt,
	})
}
