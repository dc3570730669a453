package cmd

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
	"github.com/solux-cash/solux-backend/pkg/errorx"
	"github.com/solux-cash/solux-backend/pkg/logging"
	"github.com/solux-cash/solux-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("solux/application/enrollment/cmd")
	logger = otelslog.NewLogger("solux/application/enrollment/cmd")
)

type Enroll struct {
	Profile enrollment.Profile
}

type EnrollHandler struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	issuing IssuingService
}

type EnrollHandlerArgs struct {
	Tracer  trace.Tracer
	Logger  *slog.Logger
	Issuing IssuingService
}

func NewEnrollHandler(args EnrollHandlerArgs) *EnrollHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &EnrollHandler{
		tracer:  args.Tracer,
		logger:  args.Logger,
		issuing: args.Issuing,
	}
}

// Handle creates the account holder and then the virtual card under it, in
// that order. If the account holder call fails the card call is never made.
// A card failure leaves the already created account holder in place; the
// sandbox has no teardown and a retry starts from scratch.
func (h *EnrollHandler) Handle(ctx context.Context, cmd Enroll) (enrollment.Result, error) {
	const op = "cmd.EnrollHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "EnrollHandler.Handle",
		trace.WithAttributes(attribute.String("email", logging.RedactEmail(cmd.Profile.Email))),
	)
	defer span.End()

	if err := cmd.Profile.Validate(); err != nil {
		otelx.RecordSpanError(span, err, "profile failed validation")
		return enrollment.Result{}, errorx.Wrap(err, op)
	}

	accountToken, err := h.issuing.CreateAccountHolder(ctx, cmd.Profile)
	if err != nil {
		otelx.RecordSpanError(span, err, "account holder creation failed")
		return enrollment.Result{}, errorx.Wrap(
			enrollment.ErrAccountCreationFailed.WithCause(err).
				WithArgs(map[string]any{"Detail": enrollment.Detail(err)}),
			op,
		)
	}
	otelx.SetSpanAttrs(span, map[string]any{"issuing.account_token": accountToken})
	span.AddEvent("account holder created")

	card, err := h.issuing.CreateCard(ctx, accountToken)
	if err != nil {
		otelx.RecordSpanError(span, err, "card creation failed")
		h.logger.ErrorContext(ctx, "card creation failed, account holder kept",
			slog.String("account_token", accountToken),
			slog.Any("error", err),
		)
		return enrollment.Result{}, errorx.Wrap(
			enrollment.ErrCardCreationFailed.WithCause(err).
				WithArgs(map[string]any{"Detail": enrollment.Detail(err)}),
			op,
		)
	}
	otelx.SetSpanAttrs(span, map[string]any{
		"issuing.card_token":     card.Token,
		"issuing.card_last_four": card.LastFour,
	})
	span.AddEvent("virtual card created")

	return enrollment.Result{
		AccountToken: accountToken,
		Card:         card,
	}, nil
}
