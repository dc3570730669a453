// Package devmail logs outbound mail instead of sending it. It keeps local
// runs working without a Resend API key; the verification code still reaches
// the developer through the log line and the sandbox code endpoint.
package devmail

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/solux-cash/solux-backend/internal/domain/valueobject/mails"
)

var logger = otelslog.NewLogger("solux/adapters/services/devmail")

type Sender struct {
	logger *slog.Logger
}

func NewSender(l *slog.Logger) *Sender {
	if l == nil {
		l = logger
	}
	return &Sender{logger: l}
}

func (s *Sender) SendMail(ctx context.Context, payload mails.Payload) error {
	s.logger.InfoContext(ctx, "devmail: mail suppressed",
		slog.String("mail.to", payload.To),
		slog.String("mail.subject", payload.Subject),
	)
	return nil
}

func (s *Sender) SendVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	s.logger.InfoContext(ctx, "devmail: verification code",
		slog.String("mail.to", email),
		slog.String("code", code),
		slog.Time("expires_at", expiresAt),
	)
	return nil
}
