package enrollment

import (
	"time"

	"github.com/google/uuid"

	"github.com/solux-cash/solux-backend/internal/domain/event"
)

type Step string

const (
	StepWelcome         Step = "welcome"
	StepEmailEntry      Step = "email_entry"
	StepCodeEntry       Step = "code_entry"
	StepFaceCapture     Step = "face_capture"
	StepDocumentCapture Step = "document_capture"
	StepProfileForm     Step = "profile_form"
	StepComplianceForm  Step = "compliance_form"
	StepEnrolling       Step = "enrolling"
	StepSuccess         Step = "success"
)

// Wizard is one enrollment session walking the steps in order. Every
// mutation is guarded by the current step; an action for the wrong step
// returns ErrStepMismatch without touching state.
type Wizard struct {
	event.Recorder
	id            uuid.UUID
	step          Step
	profile       Profile
	document      string
	cameraGranted bool
	scanProgress  int
	enrolling     bool
	enrollError   string
	result        *Result
	createdAt     time.Time
	updatedAt     time.Time
}

func NewWizard() *Wizard {
	now := time.Now().UTC()
	return &Wizard{
		id:        uuid.New(),
		step:      StepWelcome,
		createdAt: now,
		updatedAt: now,
	}
}

func (w *Wizard) guard(expected Step) error {
	if w.step == StepSuccess {
		return ErrWizardCompleted
	}
	if w.step != expected {
		return ErrStepMismatch
	}
	return nil
}

func (w *Wizard) touch() {
	w.updatedAt = time.Now().UTC()
}

func (w *Wizard) Begin() error {
	if err := w.guard(StepWelcome); err != nil {
		return err
	}
	w.step = StepEmailEntry
	w.touch()
	return nil
}

// EmailAccepted advances past email entry. The caller has already issued a
// verification code for this address.
func (w *Wizard) EmailAccepted(email string) error {
	if err := w.guard(StepEmailEntry); err != nil {
		return err
	}
	w.profile.Email = email
	w.step = StepCodeEntry
	w.touch()
	return nil
}

// BackToEmail returns from code entry so the holder can correct the
// address. The accepted email stays prefilled.
func (w *Wizard) BackToEmail() error {
	if err := w.guard(StepCodeEntry); err != nil {
		return err
	}
	w.step = StepEmailEntry
	w.touch()
	return nil
}

func (w *Wizard) EmailVerified() error {
	if err := w.guard(StepCodeEntry); err != nil {
		return err
	}
	w.step = StepFaceCapture
	w.touch()
	return nil
}

func (w *Wizard) GrantCamera() error {
	if err := w.guard(StepFaceCapture); err != nil {
		return err
	}
	w.cameraGranted = true
	w.touch()
	return nil
}

// DenyCamera aborts identity capture and returns the session to the start.
// Collected profile fields are kept so a second pass can prefill them.
func (w *Wizard) DenyCamera() error {
	if err := w.guard(StepFaceCapture); err != nil {
		return err
	}
	w.cameraGranted = false
	w.scanProgress = 0
	w.step = StepWelcome
	w.touch()
	return nil
}

// SetScanProgress records simulated capture progress, clamped to [0,100].
func (w *Wizard) SetScanProgress(pct int) error {
	if w.step != StepFaceCapture && w.step != StepDocumentCapture {
		return ErrStepMismatch
	}
	if w.step == StepFaceCapture && !w.cameraGranted {
		return ErrCameraPermissionDenied
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	w.scanProgress = pct
	w.touch()
	return nil
}

func (w *Wizard) FaceScanCompleted() error {
	if err := w.guard(StepFaceCapture); err != nil {
		return err
	}
	if !w.cameraGranted {
		return ErrCameraPermissionDenied
	}
	w.step = StepDocumentCapture
	w.scanProgress = 0
	w.touch()
	return nil
}

func (w *Wizard) SelectDocument(document string) error {
	if err := w.guard(StepDocumentCapture); err != nil {
		return err
	}
	if document == "" {
		return ErrStepMismatch
	}
	w.document = document
	w.touch()
	return nil
}

func (w *Wizard) DocumentScanCompleted() error {
	if err := w.guard(StepDocumentCapture); err != nil {
		return err
	}
	if w.document == "" {
		return ErrStepMismatch
	}
	w.step = StepProfileForm
	w.scanProgress = 0
	w.touch()
	return nil
}

func (w *Wizard) SubmitIdentity(firstName, lastName string, address Address) error {
	if err := w.guard(StepProfileForm); err != nil {
		return err
	}
	next := w.profile
	next.FirstName = firstName
	next.LastName = lastName
	next.Address = address
	if err := next.ValidateIdentity(); err != nil {
		return err
	}
	w.profile = next
	w.step = StepComplianceForm
	w.touch()
	return nil
}

func (w *Wizard) SubmitCompliance(dob, ssnLastFour string) error {
	if err := w.guard(StepComplianceForm); err != nil {
		return err
	}
	next := w.profile
	next.DOB = dob
	next.SSNLastFour = ssnLastFour
	if err := next.Validate(); err != nil {
		return err
	}
	w.profile = next
	w.step = StepEnrolling
	w.touch()
	return nil
}

// BeginEnrollment claims the single in-flight enrollment slot. A retry after
// failure goes through here again.
func (w *Wizard) BeginEnrollment() error {
	if err := w.guard(StepEnrolling); err != nil {
		return err
	}
	if w.enrolling {
		return ErrEnrollmentInFlight
	}
	if err := w.profile.Validate(); err != nil {
		return ErrProfileIncomplete
	}
	w.enrolling = true
	w.enrollError = ""
	w.touch()
	return nil
}

func (w *Wizard) EnrollmentSucceeded(res Result) error {
	if err := w.guard(StepEnrolling); err != nil {
		return err
	}
	w.enrolling = false
	w.result = &res
	w.step = StepSuccess
	w.touch()
	w.AddEvent(&EnrollmentCompleted{
		Header:       event.NewEventHeader(),
		WizardID:     w.id,
		Email:        w.profile.Email,
		FirstName:    w.profile.FirstName,
		AccountToken: res.AccountToken,
		CardToken:    res.Card.Token,
		CardLastFour: res.Card.LastFour,
	})
	return nil
}

// RetryEnrollment returns a failed session to the compliance form so the
// holder can review details and resubmit. Not allowed while a previous
// attempt is still running.
func (w *Wizard) RetryEnrollment() error {
	if err := w.guard(StepEnrolling); err != nil {
		return err
	}
	if w.enrolling {
		return ErrEnrollmentInFlight
	}
	w.enrollError = ""
	w.step = StepComplianceForm
	w.touch()
	return nil
}

// EnrollmentFailed keeps the session on the enrolling step so the holder
// can retry.
func (w *Wizard) EnrollmentFailed(reason string) error {
	if err := w.guard(StepEnrolling); err != nil {
		return err
	}
	w.enrolling = false
	w.enrollError = reason
	w.touch()
	w.AddEvent(&EnrollmentFailed{
		Header:   event.NewEventHeader(),
		WizardID: w.id,
		Email:    w.profile.Email,
		Reason:   reason,
	})
	return nil
}

// Snapshot returns a detached copy for readers. Scan and enrollment
// goroutines mutate the stored aggregate; handing the live pointer to a
// poller would let its getter reads race those writes.
func (w *Wizard) Snapshot() *Wizard {
	if w == nil {
		return nil
	}
	c := *w
	c.Recorder = event.Recorder{}
	if w.result != nil {
		res := *w.result
		c.result = &res
	}
	return &c
}

func (w *Wizard) ID() uuid.UUID {
	if w == nil {
		return uuid.Nil
	}
	return w.id
}

func (w *Wizard) Step() Step {
	if w == nil {
		return ""
	}
	return w.step
}

func (w *Wizard) Profile() Profile {
	if w == nil {
		return Profile{}
	}
	return w.profile
}

func (w *Wizard) Document() string {
	if w == nil {
		return ""
	}
	return w.document
}

func (w *Wizard) CameraGranted() bool {
	return w != nil && w.cameraGranted
}

func (w *Wizard) ScanProgress() int {
	if w == nil {
		return 0
	}
	return w.scanProgress
}

func (w *Wizard) Enrolling() bool {
	return w != nil && w.enrolling
}

func (w *Wizard) EnrollError() string {
	if w == nil {
		return ""
	}
	return w.enrollError
}

func (w *Wizard) Result() *Result {
	if w == nil {
		return nil
	}
	return w.result
}

func (w *Wizard) CreatedAt() time.Time {
	if w == nil {
		return time.Time{}
	}
	return w.createdAt
}

func (w *Wizard) UpdatedAt() time.Time {
	if w == nil {
		return time.Time{}
	}
	return w.updatedAt
}
