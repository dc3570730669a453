package cmd

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/solux-cash/solux-backend/internal/domain/verification"
	"github.com/solux-cash/solux-backend/pkg/errorx"
	"github.com/solux-cash/solux-backend/pkg/logging"
	"github.com/solux-cash/solux-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("solux/application/verification/cmd")
	logger = otelslog.NewLogger("solux/application/verification/cmd")
)

type IssueCode struct {
	Email string
}

type IssueCodeHandler struct {
	tracer trace.Tracer
	logger *slog.Logger
	repo   Repo
	mailer MailSender
}

type IssueCodeHandlerArgs struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	Repo   Repo
	Mailer MailSender
}

func NewIssueCodeHandler(args IssueCodeHandlerArgs) *IssueCodeHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &IssueCodeHandler{
		tracer: args.Tracer,
		logger: args.Logger,
		repo:   args.Repo,
		mailer: args.Mailer,
	}
}

// Handle stores a fresh code for cmd.Email, replacing any live one, then
// dispatches it by mail. A dispatch failure is reported to the caller but the
// stored entry is kept; the holder can still verify with the code if the mail
// arrives late, or simply request a new one.
func (h *IssueCodeHandler) Handle(ctx context.Context, cmd IssueCode) error {
	const op = "cmd.IssueCodeHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "IssueCodeHandler.Handle",
		trace.WithAttributes(attribute.String("email", logging.RedactEmail(cmd.Email))),
	)
	defer span.End()

	v, err := verification.NewVerification(cmd.Email)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to issue verification code")
		return errorx.Wrap(err, op)
	}

	if err := h.repo.SaveVerification(ctx, v); err != nil {
		otelx.RecordSpanError(span, err, "failed to save verification")
		return errorx.Wrap(err, op)
	}
	span.AddEvent("verification code stored")

	if err := h.mailer.SendVerificationCode(ctx, v.Email(), v.Code(), v.ExpiresAt()); err != nil {
		otelx.RecordSpanError(span, err, "failed to dispatch verification mail")
		h.logger.ErrorContext(ctx, "verification mail dispatch failed",
			slog.String("email", logging.RedactEmail(cmd.Email)),
			slog.Any("error", err),
		)
		return errorx.Wrap(verification.ErrMailDispatchFailed.WithCause(err), op)
	}
	span.AddEvent("verification mail dispatched")

	return nil
}
