package cmd

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/solux-cash/solux-backend/internal/domain/verification"
	"github.com/solux-cash/solux-backend/pkg/errorx"
	"github.com/solux-cash/solux-backend/pkg/logging"
	"github.com/solux-cash/solux-backend/pkg/otelx"
	"github.com/solux-cash/solux-backend/pkg/sanitizex"
)

type VerifyCode struct {
	Email string
	Code  string
}

type VerifyCodeHandler struct {
	tracer trace.Tracer
	logger *slog.Logger
	repo   Repo
}

type VerifyCodeHandlerArgs struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	Repo   Repo
}

func NewVerifyCodeHandler(args VerifyCodeHandlerArgs) *VerifyCodeHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &VerifyCodeHandler{
		tracer: args.Tracer,
		logger: args.Logger,
		repo:   args.Repo,
	}
}

// Handle checks cmd.Code against the live entry for cmd.Email. Expired
// entries are deleted on discovery; a mismatched code keeps the entry so the
// holder can retype. A successful match consumes the entry.
func (h *VerifyCodeHandler) Handle(ctx context.Context, cmd VerifyCode) error {
	const op = "cmd.VerifyCodeHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "VerifyCodeHandler.Handle",
		trace.WithAttributes(attribute.String("email", logging.RedactEmail(cmd.Email))),
	)
	defer span.End()

	code := sanitizex.CleanDigits(cmd.Code)
	if len(code) != verification.CodeLength {
		otelx.RecordSpanError(span, verification.ErrCodeFormat, "code has wrong format")
		return errorx.Wrap(verification.ErrCodeFormat, op)
	}

	v, err := h.repo.GetVerification(ctx, cmd.Email)
	if err != nil {
		if errorx.IsNotFound(err) {
			span.AddEvent("no live code for email")
			return errorx.Wrap(verification.ErrNoCodeIssued, op)
		}
		otelx.RecordSpanError(span, err, "failed to load verification")
		return errorx.Wrap(err, op)
	}

	if v.IsExpiredAt(time.Now().UTC()) {
		span.AddEvent("verification code expired, deleting entry")
		if err := h.repo.DeleteVerification(ctx, v); err != nil {
			otelx.RecordSpanError(span, err, "failed to delete expired verification")
			return errorx.Wrap(err, op)
		}
		return errorx.Wrap(verification.ErrCodeExpired, op)
	}

	if !v.Matches(code) {
		span.AddEvent("verification code mismatch, entry kept")
		return errorx.Wrap(verification.ErrCodeMismatch, op)
	}

	v.MarkVerified()
	if err := h.repo.DeleteVerification(ctx, v); err != nil {
		otelx.RecordSpanError(span, err, "failed to consume verification")
		return errorx.Wrap(err, op)
	}
	span.AddEvent("email verified, code consumed")

	return nil
}
