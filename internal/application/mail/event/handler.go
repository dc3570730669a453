package mailevent

import (
	"context"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"

	"github.com/solux-cash/solux-backend/internal/domain/valueobject/mails"
)

var (
	tracer = otel.Tracer("solux/application/mail/event")
	logger = otelslog.NewLogger("solux/application/mail/event")
)

type MailSender interface {
	SendMail(ctx context.Context, payload mails.Payload) error
}
