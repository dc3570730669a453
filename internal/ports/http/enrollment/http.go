package enrollmenthttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ARUMANDESU/validation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	enrollmentapp "github.com/solux-cash/solux-backend/internal/application/enrollment"
	"github.com/solux-cash/solux-backend/internal/application/enrollment/cmd"
	"github.com/solux-cash/solux-backend/internal/application/enrollment/wizard"
	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
	"github.com/solux-cash/solux-backend/pkg/httpx"
	"github.com/solux-cash/solux-backend/pkg/logging"
	"github.com/solux-cash/solux-backend/pkg/otelx"
	"github.com/solux-cash/solux-backend/pkg/sanitizex"
	"github.com/solux-cash/solux-backend/pkg/validationx"
)

var (
	tracer = otel.Tracer("solux/ports/http/enrollment")
	logger = otelslog.NewLogger("solux/ports/http/enrollment")
)

type HTTP struct {
	tracer     trace.Tracer
	logger     *slog.Logger
	cmd        *enrollmentapp.Command
	wizard     *wizard.Service
	errhandler *httpx.ErrorHandler
}

type Args struct {
	Tracer     trace.Tracer
	Logger     *slog.Logger
	App        *enrollmentapp.App
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
		wizard:     args.App.Wizard,
		errhandler: args.Errhandler,
	}
}

func (h *HTTP) Route(r chi.Router) {
	r.Route("/v1/wizard", func(r chi.Router) {
		r.Post("/", h.StartWizard)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetWizard)
			r.Delete("/", h.AbandonWizard)
			r.Post("/begin", h.Begin)
			r.Post("/email", h.SubmitEmail)
			r.Post("/code", h.SubmitCode)
			r.Post("/back", h.Back)
			r.Post("/camera", h.CameraResult)
			r.Post("/document", h.SelectDocument)
			r.Post("/profile", h.SubmitIdentity)
			r.Post("/compliance", h.SubmitCompliance)
			r.Post("/enroll", h.Enroll)
			r.Post("/retry", h.Retry)
		})
	})

	r.Post("/v1/issuing/simulate/authorize", h.SimulateAuthorization)
}

// wizardState flattens the aggregate into the shape the client polls.
func wizardState(w *enrollment.Wizard) httpx.Envelope {
	profile := w.Profile()
	state := httpx.Envelope{
		"id":             w.ID(),
		"step":           w.Step(),
		"document":       w.Document(),
		"camera_granted": w.CameraGranted(),
		"scan_progress":  w.ScanProgress(),
		"enrolling":      w.Enrolling(),
		"enroll_error":   w.EnrollError(),
		"profile": httpx.Envelope{
			"first_name": profile.FirstName,
			"last_name":  profile.LastName,
			"email":      profile.Email,
		},
		"created_at": w.CreatedAt(),
		"updated_at": w.UpdatedAt(),
	}

	if res := w.Result(); res != nil {
		state["card"] = httpx.Envelope{
			"token":     res.Card.Token,
			"last_four": res.Card.LastFour,
			"exp_month": res.Card.ExpMonth,
			"exp_year":  res.Card.ExpYear,
			"state":     res.Card.State,
			"type":      res.Card.Type,
		}
	}
	return state
}

func (h *HTTP) wizardID(w http.ResponseWriter, r *http.Request, span trace.Span) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.BadRequest(w, r, "invalid wizard id")
		return uuid.Nil, false
	}
	otelx.SetSpanAttrs(span, map[string]any{"wizard.id": id})
	return id, true
}

// respondState reloads the session and returns its current state. Scans and
// enrollment progress in the background, so the state here is a snapshot.
func (h *HTTP) respondState(ctx context.Context, w http.ResponseWriter, r *http.Request, span trace.Span, id uuid.UUID) {
	wiz, err := h.wizard.Get(ctx, id)
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to load wizard")
		return
	}
	httpx.Success(w, r, http.StatusOK, httpx.Envelope{"wizard": wizardState(wiz)})
}

func (h *HTTP) StartWizard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "StartWizard")
	defer span.End()

	wiz, err := h.wizard.Start(ctx)
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to start wizard")
		return
	}

	httpx.Success(w, r, http.StatusCreated, httpx.Envelope{"wizard": wizardState(wiz)})
}

func (h *HTTP) GetWizard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetWizard")
	defer span.End()

	id, ok := h.wizardID(w, r, span)
	if !ok {
		return
	}

	h.respondState(ctx, w, r, span, id)
}

func (h *HTTP) AbandonWizard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AbandonWizard")
	defer span.End()

	id, ok := h.wizardID(w, r, span)
	if !ok {
		return
	}

	if err := h.wizard.Abandon(ctx, id); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to abandon wizard")
		return
	}

	httpx.Success(w, r, http.StatusOK, nil)
}

func (h *HTTP) Begin(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Begin")
	defer span.End()

	id, ok := h.wizardID(w, r, span)
	if !ok {
		return
	}

	if err := h.wizard.Begin(ctx, id); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to begin wizard")
		return
	}

	h.respondState(ctx, w, r, span, id)
}

type SubmitEmailRequest struct {
	Email string `json:"email"`
}

func (r *SubmitEmailRequest) Sanitized() {
	r.Email = sanitizex.CleanSingleLine(r.Email)
}

func (r *SubmitEmailRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{"email": logging.RedactEmail(r.Email)})
}

func (r *SubmitEmailRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validationx.EmailRules...),
	)
}

func (h *HTTP) SubmitEmail(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitEmail")
	defer span.End()

	id, ok := h.wizardID(w, r, span)
	if !ok {
		return
	}

	var req SubmitEmailRequest
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

	if err := h.wizard.SubmitEmail(ctx, id, req.Email); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to submit email")
		return
	}

	h.respondState(ctx, w, r, span, id)
}

type SubmitCodeRequest struct {
	Code string `json:"code"`
}

func (r *SubmitCodeRequest) Sanitized() {
	r.Code = sanitizex.CleanDigits(r.Code)
}

func (r *SubmitCodeRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{"code.length": len(r.Code)})
}

func (r *SubmitCodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code, validationx.CodeRules...),
	)
}

func (h *HTTP) SubmitCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitCode")
	defer span.End()

	id, ok := h.wizardID(w, r, span)
	if !ok {
		return
	}

	var req SubmitCodeRequest
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

	if err := h.wizard.SubmitCode(ctx, id, req.Code); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to verify code")
		return
	}

	h.respondState(ctx, w, r, span, id)
}

func (h *HTTP) Back(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Back")
	defer span.End()

	id, ok := h.wizardID(w, r, span)
	if !ok {
		return
	}

	if err := h.wizard.Back(ctx, id); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to go back to email entry")
		return
	}

	h.respondState(ctx, w, r, span, id)
}

type CameraResultRequest struct {
	Granted bool `json:"granted"`
}

func (r *CameraResultRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{"camera.granted": r.Granted})
}

func (h *HTTP) CameraResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CameraResult")
	defer span.End()

	id, ok := h.wizardID(w, r, span)
	if !ok {
		return
	}

	var req CameraResultRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}
	req.SetSpanAttrs(span)

	if err := h.wizard.CameraResult(ctx, id, req.Granted); err != nil {
		h.errhandler.HandleError(w, r, span, err, "camera permission handling failed")
		return
	}

	h.respondState(ctx, w, r, span, id)
}

type SelectDocumentRequest struct {
	Document string `json:"document"`
}

func (r *SelectDocumentRequest) Sanitized() {
	r.Document = sanitizex.CleanSingleLine(r.Document)
}

func (r *SelectDocumentRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{"document": r.Document})
}

func (r *SelectDocumentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Document, validation.Required, validation.Length(1, 50)),
	)
}

func (h *HTTP) SelectDocument(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SelectDocument")
	defer span.End()

	id, ok := h.wizardID(w, r, span)
	if !ok {
		return
	}

	var req SelectDocumentRequest
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

	if err := h.wizard.SelectDocument(ctx, id, req.Document); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to select document")
		return
	}

	h.respondState(ctx, w, r, span, id)
}

type SubmitIdentityRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   struct {
		Line1      string `json:"line1"`
		City       string `json:"city"`
		State      string `json:"state"`
		PostalCode string `json:"postal_code"`
		Country    string `json:"country"`
	} `json:"address"`
}

func (r *SubmitIdentityRequest) Sanitized() {
	r.FirstName = sanitizex.CleanSingleLine(r.FirstName)
	r.LastName = sanitizex.CleanSingleLine(r.LastName)
	r.Address.Line1 = sanitizex.CleanSingleLine(r.Address.Line1)
	r.Address.City = sanitizex.CleanSingleLine(r.Address.City)
	r.Address.State = sanitizex.CleanSingleLine(r.Address.State)
	r.Address.PostalCode = sanitizex.CleanSingleLine(r.Address.PostalCode)
	r.Address.Country = sanitizex.CleanSingleLine(r.Address.Country)
}

func (r *SubmitIdentityRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{
		"address.city":  r.Address.City,
		"address.state": r.Address.State,
	})
}

func (r *SubmitIdentityRequest) ToAddress() enrollment.Address {
	return enrollment.Address{
		Line1:      r.Address.Line1,
		City:       r.Address.City,
		State:      r.Address.State,
		PostalCode: r.Address.PostalCode,
		Country:    r.Address.Country,
	}
}

func (h *HTTP) SubmitIdentity(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitIdentity")
	defer span.End()

	id, ok := h.wizardID(w, r, span)
	if !ok {
		return
	}

	var req SubmitIdentityRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()
	req.SetSpanAttrs(span)

	if err := h.wizard.SubmitIdentity(ctx, id, req.FirstName, req.LastName, req.ToAddress()); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to submit identity")
		return
	}

	h.respondState(ctx, w, r, span, id)
}

type SubmitComplianceRequest struct {
	DOB         string `json:"dob"`
	SSNLastFour string `json:"ssn_last_four"`
}

func (r *SubmitComplianceRequest) Sanitized() {
	r.DOB = sanitizex.CleanSingleLine(r.DOB)
	r.SSNLastFour = sanitizex.CleanDigits(r.SSNLastFour)
}

func (r *SubmitComplianceRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{"dob.present": r.DOB != ""})
}

func (r *SubmitComplianceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DOB, validation.Required, validation.Date(enrollment.DOBLayout)),
		validation.Field(&r.SSNLastFour, validationx.SSNLastFourRules...),
	)
}

func (h *HTTP) SubmitCompliance(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitCompliance")
	defer span.End()

	id, ok := h.wizardID(w, r, span)
	if !ok {
		return
	}

	var req SubmitComplianceRequest
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

	if err := h.wizard.SubmitCompliance(ctx, id, req.DOB, req.SSNLastFour); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to submit compliance details")
		return
	}

	h.respondState(ctx, w, r, span, id)
}

func (h *HTTP) Enroll(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Enroll")
	defer span.End()

	id, ok := h.wizardID(w, r, span)
	if !ok {
		return
	}

	if err := h.wizard.Enroll(ctx, id); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to start enrollment")
		return
	}

	httpx.Success(w, r, http.StatusAccepted, nil)
}

func (h *HTTP) Retry(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Retry")
	defer span.End()

	id, ok := h.wizardID(w, r, span)
	if !ok {
		return
	}

	if err := h.wizard.Retry(ctx, id); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to retry enrollment")
		return
	}

	h.respondState(ctx, w, r, span, id)
}

type SimulateAuthorizationRequest struct {
	CardToken  string `json:"card_token"`
	Amount     int64  `json:"amount"`
	Descriptor string `json:"descriptor"`
}

func (r *SimulateAuthorizationRequest) Sanitized() {
	r.CardToken = sanitizex.CleanSingleLine(r.CardToken)
	r.Descriptor = sanitizex.CleanSingleLine(r.Descriptor)
}

func (r *SimulateAuthorizationRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{
		"card.token": r.CardToken,
		"amount":     r.Amount,
	})
}

func (r *SimulateAuthorizationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CardToken, validation.Required),
		validation.Field(&r.Amount, validation.Required, validation.Min(1)),
		validation.Field(&r.Descriptor, validation.Required, validation.Length(1, 100)),
	)
}

func (h *HTTP) SimulateAuthorization(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SimulateAuthorization")
	defer span.End()

	var req SimulateAuthorizationRequest
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

	sim, err := h.cmd.SimulateAuth.Handle(ctx, cmd.SimulateAuthorization{
		CardToken:   req.CardToken,
		AmountCents: req.Amount,
		Descriptor:  req.Descriptor,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to simulate authorization")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{
		"token":                sim.Token,
		"debugging_request_id": sim.DebuggingRequestID,
	})
}
