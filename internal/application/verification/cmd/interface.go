package cmd

import (
	"context"
	"time"

	"github.com/solux-cash/solux-backend/internal/domain/verification"
)

type Repo interface {
	GetVerification(ctx context.Context, email string) (*verification.Verification, error)
	SaveVerification(ctx context.Context, v *verification.Verification) error
	DeleteVerification(ctx context.Context, v *verification.Verification) error
}

type MailSender interface {
	SendVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error
}
