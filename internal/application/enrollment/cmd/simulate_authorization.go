package cmd

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
	"github.com/solux-cash/solux-backend/pkg/errorx"
	"github.com/solux-cash/solux-backend/pkg/otelx"
)

type SimulateAuthorization struct {
	CardToken   string
	AmountCents int64
	Descriptor  string
}

// SimulateAuthorizationHandler replays a test authorization against the
// sandbox so a freshly issued card can be seen transacting.
type SimulateAuthorizationHandler struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	issuing IssuingService
}

type SimulateAuthorizationHandlerArgs struct {
	Tracer  trace.Tracer
	Logger  *slog.Logger
	Issuing IssuingService
}

func NewSimulateAuthorizationHandler(args SimulateAuthorizationHandlerArgs) *SimulateAuthorizationHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &SimulateAuthorizationHandler{
		tracer:  args.Tracer,
		logger:  args.Logger,
		issuing: args.Issuing,
	}
}

func (h *SimulateAuthorizationHandler) Handle(ctx context.Context, cmd SimulateAuthorization) (enrollment.AuthorizationSimulation, error) {
	const op = "cmd.SimulateAuthorizationHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "SimulateAuthorizationHandler.Handle",
		trace.WithAttributes(
			attribute.String("card_token", cmd.CardToken),
			attribute.Int64("amount_cents", cmd.AmountCents),
		),
	)
	defer span.End()

	sim, err := h.issuing.SimulateAuthorization(ctx, cmd.CardToken, cmd.AmountCents, cmd.Descriptor)
	if err != nil {
		otelx.RecordSpanError(span, err, "authorization simulation failed")
		return enrollment.AuthorizationSimulation{}, errorx.Wrap(err, op)
	}
	span.AddEvent("authorization simulated")

	return sim, nil
}
