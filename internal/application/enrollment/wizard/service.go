package wizard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	enrollmentcmd "github.com/solux-cash/solux-backend/internal/application/enrollment/cmd"
	verificationcmd "github.com/solux-cash/solux-backend/internal/application/verification/cmd"
	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
	"github.com/solux-cash/solux-backend/pkg/errorx"
	"github.com/solux-cash/solux-backend/pkg/logging"
	"github.com/solux-cash/solux-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("solux/application/enrollment/wizard")
	logger = otelslog.NewLogger("solux/application/enrollment/wizard")
)

type Repo interface {
	GetWizard(ctx context.Context, id uuid.UUID) (*enrollment.Wizard, error)
	SaveWizard(ctx context.Context, w *enrollment.Wizard) error
	UpdateWizard(ctx context.Context, id uuid.UUID, fn func(context.Context, *enrollment.Wizard) error) error
	DeleteWizard(ctx context.Context, id uuid.UUID) error
}

type CodeIssuer interface {
	Handle(ctx context.Context, cmd verificationcmd.IssueCode) error
}

type CodeVerifier interface {
	Handle(ctx context.Context, cmd verificationcmd.VerifyCode) error
}

type Enroller interface {
	Handle(ctx context.Context, cmd enrollmentcmd.Enroll) (enrollment.Result, error)
}

// Service drives enrollment wizard sessions. Scans and the enrollment call
// run in per-session goroutines whose contexts are cancelled when the
// session is abandoned or the service shuts down.
type Service struct {
	tracer   trace.Tracer
	logger   *slog.Logger
	repo     Repo
	issuer   CodeIssuer
	verifier CodeVerifier
	enroller Enroller
	faceScan enrollment.Scan
	docScan  enrollment.Scan

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	mu       sync.Mutex
	sessions map[uuid.UUID]context.CancelFunc
	sessCtxs map[uuid.UUID]context.Context
}

type ServiceArgs struct {
	Tracer       trace.Tracer
	Logger       *slog.Logger
	Repo         Repo
	CodeIssuer   CodeIssuer
	CodeVerifier CodeVerifier
	Enroller     Enroller

	// FaceScan and DocumentScan override the simulation cadence, mainly for
	// tests. Zero values fall back to the defaults.
	FaceScan     enrollment.Scan
	DocumentScan enrollment.Scan
}

func NewService(args ServiceArgs) *Service {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.FaceScan == (enrollment.Scan{}) {
		args.FaceScan = enrollment.FaceScan()
	}
	if args.DocumentScan == (enrollment.Scan{}) {
		args.DocumentScan = enrollment.DocumentScan()
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())

	return &Service{
		tracer:     args.Tracer,
		logger:     args.Logger,
		repo:       args.Repo,
		issuer:     args.CodeIssuer,
		verifier:   args.CodeVerifier,
		enroller:   args.Enroller,
		faceScan:   args.FaceScan,
		docScan:    args.DocumentScan,
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
		sessions:   make(map[uuid.UUID]context.CancelFunc),
		sessCtxs:   make(map[uuid.UUID]context.Context),
	}
}

// Close cancels every session and waits for background work to drain.
func (s *Service) Close() {
	s.baseCancel()
	s.wg.Wait()
}

func (s *Service) Start(ctx context.Context) (*enrollment.Wizard, error) {
	const op = "wizard.Service.Start"
	ctx, span := s.tracer.Start(ctx, "wizard.Service.Start")
	defer span.End()

	w := enrollment.NewWizard()
	if err := s.repo.SaveWizard(ctx, w); err != nil {
		otelx.RecordSpanError(span, err, "failed to save wizard")
		return nil, errorx.Wrap(err, op)
	}

	sctx, cancel := context.WithCancel(s.baseCtx)
	s.mu.Lock()
	s.sessions[w.ID()] = cancel
	s.sessCtxs[w.ID()] = sctx
	s.mu.Unlock()

	otelx.SetSpanAttrs(span, map[string]any{"wizard.id": w.ID()})
	return w, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*enrollment.Wizard, error) {
	const op = "wizard.Service.Get"

	w, err := s.repo.GetWizard(ctx, id)
	if err != nil {
		return nil, errorx.Wrap(err, op)
	}
	return w, nil
}

func (s *Service) Begin(ctx context.Context, id uuid.UUID) error {
	const op = "wizard.Service.Begin"
	ctx, span := s.tracer.Start(ctx, "wizard.Service.Begin",
		trace.WithAttributes(attribute.String("wizard.id", id.String())),
	)
	defer span.End()

	err := s.repo.UpdateWizard(ctx, id, func(_ context.Context, w *enrollment.Wizard) error {
		return w.Begin()
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to begin wizard")
		return errorx.Wrap(err, op)
	}
	return nil
}

// SubmitEmail issues a verification code for email and, when dispatch
// succeeds, advances the session to code entry.
func (s *Service) SubmitEmail(ctx context.Context, id uuid.UUID, email string) error {
	const op = "wizard.Service.SubmitEmail"
	ctx, span := s.tracer.Start(ctx, "wizard.Service.SubmitEmail",
		trace.WithAttributes(
			attribute.String("wizard.id", id.String()),
			attribute.String("email", logging.RedactEmail(email)),
		),
	)
	defer span.End()

	w, err := s.repo.GetWizard(ctx, id)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to load wizard")
		return errorx.Wrap(err, op)
	}
	if w.Step() != enrollment.StepEmailEntry {
		return errorx.Wrap(enrollment.ErrStepMismatch, op)
	}

	if err := s.issuer.Handle(ctx, verificationcmd.IssueCode{Email: email}); err != nil {
		otelx.RecordSpanError(span, err, "failed to issue code")
		return errorx.Wrap(err, op)
	}

	err = s.repo.UpdateWizard(ctx, id, func(_ context.Context, w *enrollment.Wizard) error {
		return w.EmailAccepted(email)
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to advance past email entry")
		return errorx.Wrap(err, op)
	}
	return nil
}

// SubmitCode verifies the typed code against the session's email.
func (s *Service) SubmitCode(ctx context.Context, id uuid.UUID, code string) error {
	const op = "wizard.Service.SubmitCode"
	ctx, span := s.tracer.Start(ctx, "wizard.Service.SubmitCode",
		trace.WithAttributes(attribute.String("wizard.id", id.String())),
	)
	defer span.End()

	w, err := s.repo.GetWizard(ctx, id)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to load wizard")
		return errorx.Wrap(err, op)
	}
	if w.Step() != enrollment.StepCodeEntry {
		return errorx.Wrap(enrollment.ErrStepMismatch, op)
	}

	if err := s.verifier.Handle(ctx, verificationcmd.VerifyCode{Email: w.Profile().Email, Code: code}); err != nil {
		otelx.RecordSpanError(span, err, "code verification failed")
		return errorx.Wrap(err, op)
	}

	err = s.repo.UpdateWizard(ctx, id, func(_ context.Context, w *enrollment.Wizard) error {
		return w.EmailVerified()
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to advance past code entry")
		return errorx.Wrap(err, op)
	}
	return nil
}

func (s *Service) Back(ctx context.Context, id uuid.UUID) error {
	const op = "wizard.Service.Back"

	err := s.repo.UpdateWizard(ctx, id, func(_ context.Context, w *enrollment.Wizard) error {
		return w.BackToEmail()
	})
	if err != nil {
		return errorx.Wrap(err, op)
	}
	return nil
}

// CameraResult records the browser's camera permission outcome. A grant
// starts the simulated face scan in the background; a denial aborts the
// session back to the welcome step and is reported as an error so the
// client can explain why.
func (s *Service) CameraResult(ctx context.Context, id uuid.UUID, granted bool) error {
	const op = "wizard.Service.CameraResult"
	ctx, span := s.tracer.Start(ctx, "wizard.Service.CameraResult",
		trace.WithAttributes(
			attribute.String("wizard.id", id.String()),
			attribute.Bool("camera.granted", granted),
		),
	)
	defer span.End()

	if !granted {
		err := s.repo.UpdateWizard(ctx, id, func(_ context.Context, w *enrollment.Wizard) error {
			return w.DenyCamera()
		})
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to abort on camera denial")
			return errorx.Wrap(err, op)
		}
		span.AddEvent("camera denied, session reset to welcome")
		return errorx.Wrap(enrollment.ErrCameraPermissionDenied, op)
	}

	err := s.repo.UpdateWizard(ctx, id, func(_ context.Context, w *enrollment.Wizard) error {
		return w.GrantCamera()
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to record camera grant")
		return errorx.Wrap(err, op)
	}

	s.runScan(id, s.faceScan, func(w *enrollment.Wizard) error {
		return w.FaceScanCompleted()
	})
	return nil
}

// SelectDocument stores the chosen document type and starts the simulated
// document scan.
func (s *Service) SelectDocument(ctx context.Context, id uuid.UUID, document string) error {
	const op = "wizard.Service.SelectDocument"
	ctx, span := s.tracer.Start(ctx, "wizard.Service.SelectDocument",
		trace.WithAttributes(
			attribute.String("wizard.id", id.String()),
			attribute.String("document", document),
		),
	)
	defer span.End()

	err := s.repo.UpdateWizard(ctx, id, func(_ context.Context, w *enrollment.Wizard) error {
		return w.SelectDocument(document)
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to select document")
		return errorx.Wrap(err, op)
	}

	s.runScan(id, s.docScan, func(w *enrollment.Wizard) error {
		return w.DocumentScanCompleted()
	})
	return nil
}

func (s *Service) SubmitIdentity(ctx context.Context, id uuid.UUID, firstName, lastName string, address enrollment.Address) error {
	const op = "wizard.Service.SubmitIdentity"

	err := s.repo.UpdateWizard(ctx, id, func(_ context.Context, w *enrollment.Wizard) error {
		return w.SubmitIdentity(firstName, lastName, address)
	})
	if err != nil {
		return errorx.Wrap(err, op)
	}
	return nil
}

func (s *Service) SubmitCompliance(ctx context.Context, id uuid.UUID, dob, ssnLastFour string) error {
	const op = "wizard.Service.SubmitCompliance"

	err := s.repo.UpdateWizard(ctx, id, func(_ context.Context, w *enrollment.Wizard) error {
		return w.SubmitCompliance(dob, ssnLastFour)
	})
	if err != nil {
		return errorx.Wrap(err, op)
	}
	return nil
}

// Enroll claims the in-flight slot and runs account and card creation in the
// background. The result lands on the wizard; failures keep the session on
// the enrolling step so Enroll can be called again.
func (s *Service) Enroll(ctx context.Context, id uuid.UUID) error {
	const op = "wizard.Service.Enroll"
	ctx, span := s.tracer.Start(ctx, "wizard.Service.Enroll",
		trace.WithAttributes(attribute.String("wizard.id", id.String())),
	)
	defer span.End()

	var profile enrollment.Profile
	err := s.repo.UpdateWizard(ctx, id, func(_ context.Context, w *enrollment.Wizard) error {
		if err := w.BeginEnrollment(); err != nil {
			return err
		}
		profile = w.Profile()
		return nil
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to begin enrollment")
		return errorx.Wrap(err, op)
	}

	sctx := s.sessionCtx(id)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		res, err := s.enroller.Handle(sctx, enrollmentcmd.Enroll{Profile: profile})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			reason := failureReason(err)
			s.logger.WarnContext(sctx, "enrollment failed",
				slog.String("wizard_id", id.String()),
				slog.String("reason", reason),
			)
			if uerr := s.repo.UpdateWizard(sctx, id, func(_ context.Context, w *enrollment.Wizard) error {
				return w.EnrollmentFailed(reason)
			}); uerr != nil {
				s.logger.ErrorContext(sctx, "failed to record enrollment failure",
					slog.String("wizard_id", id.String()),
					slog.Any("error", uerr),
				)
			}
			return
		}

		if uerr := s.repo.UpdateWizard(sctx, id, func(_ context.Context, w *enrollment.Wizard) error {
			return w.EnrollmentSucceeded(res)
		}); uerr != nil {
			s.logger.ErrorContext(sctx, "failed to record enrollment success",
				slog.String("wizard_id", id.String()),
				slog.Any("error", uerr),
			)
			return
		}

		// success is terminal; nothing left for this session to cancel
		s.releaseSession(id)
	}()

	return nil
}

// Retry steps a failed enrollment back to the compliance form.
func (s *Service) Retry(ctx context.Context, id uuid.UUID) error {
	const op = "wizard.Service.Retry"

	err := s.repo.UpdateWizard(ctx, id, func(_ context.Context, w *enrollment.Wizard) error {
		return w.RetryEnrollment()
	})
	if err != nil {
		return errorx.Wrap(err, op)
	}
	return nil
}

// Abandon cancels any in-flight background work and destroys the session.
func (s *Service) Abandon(ctx context.Context, id uuid.UUID) error {
	const op = "wizard.Service.Abandon"
	ctx, span := s.tracer.Start(ctx, "wizard.Service.Abandon",
		trace.WithAttributes(attribute.String("wizard.id", id.String())),
	)
	defer span.End()

	s.releaseSession(id)

	if err := s.repo.DeleteWizard(ctx, id); err != nil {
		otelx.RecordSpanError(span, err, "failed to delete wizard")
		return errorx.Wrap(err, op)
	}
	span.AddEvent("wizard session destroyed")
	return nil
}

// releaseSession cancels and drops the session's context entry. Safe to
// call for sessions already released.
func (s *Service) releaseSession(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, ok := s.sessions[id]; ok {
		cancel()
		delete(s.sessions, id)
		delete(s.sessCtxs, id)
	}
}

func (s *Service) sessionCtx(id uuid.UUID) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sctx, ok := s.sessCtxs[id]; ok {
		return sctx
	}
	return s.baseCtx
}

// runScan drives one simulated capture for the session. Progress lands on
// the wizard; if the session moves off the capture step mid-scan the scan
// stops instead of fighting the state machine.
func (s *Service) runScan(id uuid.UUID, scan enrollment.Scan, complete func(*enrollment.Wizard) error) {
	sctx, cancel := context.WithCancel(s.sessionCtx(id))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		err := scan.Run(sctx, func(pct int) {
			uerr := s.repo.UpdateWizard(sctx, id, func(_ context.Context, w *enrollment.Wizard) error {
				return w.SetScanProgress(pct)
			})
			if uerr != nil {
				cancel()
			}
		})
		if err != nil {
			return
		}

		if uerr := s.repo.UpdateWizard(sctx, id, func(_ context.Context, w *enrollment.Wizard) error {
			return complete(w)
		}); uerr != nil {
			s.logger.WarnContext(sctx, "failed to complete scan",
				slog.String("wizard_id", id.String()),
				slog.Any("error", uerr),
			)
		}
	}()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, enrollment.ErrAccountCreationFailed):
		return "Account creation failed: " + enrollment.Detail(err)
	case errors.Is(err, enrollment.ErrCardCreationFailed):
		return "Card creation failed: " + enrollment.Detail(err)
	default:
		return err.Error()
	}
}
