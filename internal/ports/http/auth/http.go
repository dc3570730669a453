package authhttp

import (
	"log/slog"
	"net/http"

	"github.com/ARUMANDESU/validation"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	verificationapp "github.com/solux-cash/solux-backend/internal/application/verification"
	"github.com/solux-cash/solux-backend/internal/application/verification/cmd"
	"github.com/solux-cash/solux-backend/internal/application/verification/query"
	"github.com/solux-cash/solux-backend/pkg/env"
	"github.com/solux-cash/solux-backend/pkg/httpx"
	"github.com/solux-cash/solux-backend/pkg/logging"
	"github.com/solux-cash/solux-backend/pkg/otelx"
	"github.com/solux-cash/solux-backend/pkg/sanitizex"
	"github.com/solux-cash/solux-backend/pkg/validationx"
)

var (
	tracer = otel.Tracer("solux/ports/http/auth")
	logger = otelslog.NewLogger("solux/ports/http/auth")
)

type HTTP struct {
	tracer     trace.Tracer
	logger     *slog.Logger
	cmd        *verificationapp.Command
	query      *verificationapp.Query
	errhandler *httpx.ErrorHandler
}

type Args struct {
	Tracer     trace.Tracer
	Logger     *slog.Logger
	App        *verificationapp.App
	Errhandler *httpx.ErrorHandler
}

func NewHTTP(args Args) *HTTP {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &HTTP{
		tracer:     args.Tracer,
		logger:     args.Logger,
		cmd:        &args.App.CMD,
		query:      &args.App.Query,
		errhandler: args.Errhandler,
	}
}

func (h *HTTP) Route(r chi.Router) {
	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/send-code", h.SendCode)
		r.Post("/verify-code", h.VerifyCode)
	})

	if env.Current().IsSandbox() {
		r.Get("/dev/auth/verification-code/{email}", h.GetVerificationCode)
	}
}

type SendCodeRequest struct {
	Email string `json:"email"`
}

func (r *SendCodeRequest) Sanitized() {
	r.Email = sanitizex.CleanSingleLine(r.Email)
}

func (r *SendCodeRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{"email": logging.RedactEmail(r.Email)})
}

func (r *SendCodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validationx.EmailRules...),
	)
}

func (h *HTTP) SendCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SendCode")
	defer span.End()

	var req SendCodeRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()
	req.SetSpanAttrs(span)
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	if err := h.cmd.IssueCode.Handle(ctx, cmd.IssueCode{Email: req.Email}); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to issue verification code")
		return
	}

	httpx.Success(w, r, http.StatusAccepted, nil)
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r *VerifyCodeRequest) Sanitized() {
	r.Email = sanitizex.CleanSingleLine(r.Email)
	r.Code = sanitizex.CleanDigits(r.Code)
}

func (r *VerifyCodeRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{"email": logging.RedactEmail(r.Email)})
}

func (r *VerifyCodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validationx.EmailRules...),
		validation.Field(&r.Code, validationx.CodeRules...),
	)
}

func (h *HTTP) VerifyCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "VerifyCode")
	defer span.End()

	var req VerifyCodeRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()
	req.SetSpanAttrs(span)
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	if err := h.cmd.VerifyCode.Handle(ctx, cmd.VerifyCode{Email: req.Email, Code: req.Code}); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to verify code")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{"verified": true})
}

// GetVerificationCode exposes the pending code for an email. Sandbox only;
// the demo client uses it to show the code without a mailbox.
func (h *HTTP) GetVerificationCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetVerificationCode")
	defer span.End()

	email := chi.URLParam(r, "email")
	otelx.SetSpanAttrs(span, map[string]any{"email": logging.RedactEmail(email)})

	code, err := h.query.GetCode.Handle(ctx, query.GetVerificationCode{Email: email})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to get verification code")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{
		"verification_code": code.Code,
		"expires_at":        code.ExpiresAt,
	})
}
