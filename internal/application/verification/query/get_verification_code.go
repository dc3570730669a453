package query

import (
	"context"
	"log/slog"
	"time"

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
	tracer = otel.Tracer("solux/application/verification/query")
	logger = otelslog.NewLogger("solux/application/verification/query")
)

type Repo interface {
	GetVerification(ctx context.Context, email string) (*verification.Verification, error)
}

type GetVerificationCode struct {
	Email string
}

type VerificationCode struct {
	Code      string
	ExpiresAt time.Time
}

// GetVerificationCodeHandler exposes the live code for an email. It exists
// for the sandbox developer endpoint; the route is only mounted outside
// production.
type GetVerificationCodeHandler struct {
	tracer trace.Tracer
	logger *slog.Logger
	repo   Repo
}

type GetVerificationCodeHandlerArgs struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	Repo   Repo
}

func NewGetVerificationCodeHandler(args GetVerificationCodeHandlerArgs) *GetVerificationCodeHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &GetVerificationCodeHandler{
		tracer: args.Tracer,
		logger: args.Logger,
		repo:   args.Repo,
	}
}

func (h *GetVerificationCodeHandler) Handle(ctx context.Context, q GetVerificationCode) (VerificationCode, error) {
	const op = "query.GetVerificationCodeHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "GetVerificationCodeHandler.Handle",
		trace.WithAttributes(attribute.String("email", logging.RedactEmail(q.Email))),
	)
	defer span.End()

	v, err := h.repo.GetVerification(ctx, q.Email)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to load verification")
		return VerificationCode{}, errorx.Wrap(err, op)
	}

	return VerificationCode{
		Code:      v.Code(),
		ExpiresAt: v.ExpiresAt(),
	}, nil
}
