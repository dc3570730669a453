package mailevent

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
	"github.com/solux-cash/solux-backend/internal/domain/valueobject/mails"
	"github.com/solux-cash/solux-backend/pkg/logging"
)

type EnrollmentCompletedHandler struct {
	tracer     trace.Tracer
	logger     *slog.Logger
	mailsender MailSender
}

type EnrollmentCompletedHandlerArgs struct {
	Tracer     trace.Tracer
	Logger     *slog.Logger
	Mailsender MailSender
}

func NewEnrollmentCompletedHandler(args EnrollmentCompletedHandlerArgs) *EnrollmentCompletedHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &EnrollmentCompletedHandler{
		tracer:     args.Tracer,
		logger:     args.Logger,
		mailsender: args.Mailsender,
	}
}

// Handle sends the welcome mail once a holder's card is issued. The mail is
// best-effort; enrollment already succeeded and is never rolled back over a
// mail failure.
func (h *EnrollmentCompletedHandler) Handle(ctx context.Context, e *enrollment.EnrollmentCompleted) error {
	if e == nil {
		return nil
	}

	l := h.logger.With(
		slog.String("event", "EnrollmentCompleted"),
		slog.String("wizard.id", e.WizardID.String()),
		slog.String("holder.email", logging.RedactEmail(e.Email)),
	)
	ctx, span := h.tracer.Start(ctx, "EnrollmentCompletedHandler.Handle",
		trace.WithNewRoot(),
		trace.WithAttributes(
			attribute.String("wizard.id", e.WizardID.String()),
			attribute.String("holder.email", logging.RedactEmail(e.Email)),
		),
	)
	defer span.End()

	name := e.FirstName
	if name == "" {
		name = "there"
	}

	payload := mails.Payload{
		To:      e.Email,
		Subject: "Welcome to Solux",
		Text: fmt.Sprintf(
			"Hi %s,\n\nYour Solux virtual card ending in %s is ready to use.\n\nThe Solux Team",
			name,
			e.CardLastFour,
		),
	}

	if err := h.mailsender.SendMail(ctx, payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send welcome email")
		l.ErrorContext(ctx, "failed to send welcome email", slog.Any("error", err))
		return err
	}
	span.AddEvent("welcome email sent")

	return nil
}
