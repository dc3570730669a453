package enrollment_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/solux-cash/solux-backend/internal/adapters/repos/memory"
	enrollmentapp "github.com/solux-cash/solux-backend/internal/application/enrollment"
	verificationapp "github.com/solux-cash/solux-backend/internal/application/verification"
	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
	httpport "github.com/solux-cash/solux-backend/internal/ports/http"
	"github.com/solux-cash/solux-backend/pkg/env"
	"github.com/solux-cash/solux-backend/pkg/httpx"
	"github.com/solux-cash/solux-backend/tests/integration/fixtures"
	"github.com/solux-cash/solux-backend/tests/mocks"
)

// fastScan keeps the simulated captures quick enough for tests while still
// exercising the incremental progress path.
var fastScan = enrollment.Scan{Increment: 50, Interval: time.Millisecond, Settle: time.Millisecond}

type EnrollmentFlowSuite struct {
	suite.Suite

	srv     *httptest.Server
	mailer  *mocks.MailSender
	issuing *mocks.IssuingService
	enrApp  *enrollmentapp.App
}

func TestEnrollmentFlowSuite(t *testing.T) {
	suite.Run(t, new(EnrollmentFlowSuite))
}

func (s *EnrollmentFlowSuite) SetupTest() {
	env.SetMode(env.Test)

	s.mailer = mocks.NewMailSender()
	s.issuing = mocks.NewIssuingService()

	verRepo := memory.NewVerificationRepo(nil)
	wizRepo := memory.NewWizardRepo(nil)

	verApp := verificationapp.NewApp(verificationapp.Args{
		Repo:   verRepo,
		Mailer: s.mailer,
	})
	s.enrApp = enrollmentapp.NewApp(enrollmentapp.Args{
		Issuing:      s.issuing,
		WizardRepo:   wizRepo,
		CodeIssuer:   verApp.CMD.IssueCode,
		CodeVerifier: verApp.CMD.VerifyCode,
		FaceScan:     fastScan,
		DocumentScan: fastScan,
	})

	port := httpport.NewPort(httpport.Args{
		VerificationApp: verApp,
		EnrollmentApp:   s.enrApp,
		Errhandler:      httpx.NewErrorHandler(),
	})

	s.srv = httptest.NewServer(port.Route(nil))
}

func (s *EnrollmentFlowSuite) TearDownTest() {
	s.srv.Close()
	s.enrApp.Wizard.Close()
}

func (s *EnrollmentFlowSuite) do(method, path string, body any) (int, map[string]any) {
	s.T().Helper()

	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.srv.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var decoded map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func (s *EnrollmentFlowSuite) wizardOf(body map[string]any) map[string]any {
	s.T().Helper()
	wiz, ok := body["wizard"].(map[string]any)
	s.Require().True(ok, "response must carry wizard state: %v", body)
	return wiz
}

func (s *EnrollmentFlowSuite) waitForStep(id, step string) map[string]any {
	s.T().Helper()

	var wiz map[string]any
	s.Require().Eventually(func() bool {
		status, body := s.do(http.MethodGet, "/v1/wizard/"+id, nil)
		if status != http.StatusOK {
			return false
		}
		wiz = s.wizardOf(body)
		return wiz["step"] == step
	}, 5*time.Second, 10*time.Millisecond, "wizard should reach step %q", step)
	return wiz
}

func (s *EnrollmentFlowSuite) TestFullEnrollmentFlow() {
	status, body := s.do(http.MethodPost, "/v1/wizard", nil)
	s.Require().Equal(http.StatusCreated, status)
	wiz := s.wizardOf(body)
	s.Equal("welcome", wiz["step"])
	id := wiz["id"].(string)

	status, body = s.do(http.MethodPost, "/v1/wizard/"+id+"/begin", nil)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("email_entry", s.wizardOf(body)["step"])

	status, body = s.do(http.MethodPost, "/v1/wizard/"+id+"/email", map[string]any{"email": fixtures.ValidEmail})
	s.Require().Equal(http.StatusOK, status)
	s.Equal("code_entry", s.wizardOf(body)["step"])

	// The sandbox endpoint exposes the code the mailer just carried.
	status, body = s.do(http.MethodGet, "/dev/auth/verification-code/"+fixtures.ValidEmail, nil)
	s.Require().Equal(http.StatusOK, status)
	code, _ := body["verification_code"].(string)
	s.Require().Len(code, 6)

	sent := s.mailer.SentCodes()
	s.Require().Len(sent, 1)
	s.Equal(code, sent[0].Code)

	status, body = s.do(http.MethodPost, "/v1/wizard/"+id+"/code", map[string]any{"code": code})
	s.Require().Equal(http.StatusOK, status)
	s.Equal("face_capture", s.wizardOf(body)["step"])

	status, _ = s.do(http.MethodPost, "/v1/wizard/"+id+"/camera", map[string]any{"granted": true})
	s.Require().Equal(http.StatusOK, status)
	s.waitForStep(id, "document_capture")

	status, _ = s.do(http.MethodPost, "/v1/wizard/"+id+"/document", map[string]any{"document": "passport"})
	s.Require().Equal(http.StatusOK, status)
	s.waitForStep(id, "profile_form")

	profile := fixtures.ValidProfile()
	status, body = s.do(http.MethodPost, "/v1/wizard/"+id+"/profile", map[string]any{
		"first_name": profile.FirstName,
		"last_name":  profile.LastName,
		"address": map[string]any{
			"line1":       profile.Address.Line1,
			"city":        profile.Address.City,
			"state":       profile.Address.State,
			"postal_code": profile.Address.PostalCode,
			"country":     profile.Address.Country,
		},
	})
	s.Require().Equal(http.StatusOK, status)
	s.Equal("compliance_form", s.wizardOf(body)["step"])

	status, body = s.do(http.MethodPost, "/v1/wizard/"+id+"/compliance", map[string]any{
		"dob":           profile.DOB,
		"ssn_last_four": profile.SSNLastFour,
	})
	s.Require().Equal(http.StatusOK, status)
	s.Equal("enrolling", s.wizardOf(body)["step"])

	status, _ = s.do(http.MethodPost, "/v1/wizard/"+id+"/enroll", nil)
	s.Require().Equal(http.StatusAccepted, status)

	wiz = s.waitForStep(id, "success")
	card, ok := wiz["card"].(map[string]any)
	s.Require().True(ok, "success state must carry the card")
	s.Equal("card_mock_1", card["token"])
	s.Equal("4242", card["last_four"])

	s.Require().Len(s.issuing.AccountCalls(), 1)
	s.Equal(fixtures.ValidEmail, s.issuing.AccountCalls()[0].Email)
}

func (s *EnrollmentFlowSuite) TestCameraDenialAbortsToWelcome() {
	_, body := s.do(http.MethodPost, "/v1/wizard", nil)
	id := s.wizardOf(body)["id"].(string)

	s.do(http.MethodPost, "/v1/wizard/"+id+"/begin", nil)
	s.do(http.MethodPost, "/v1/wizard/"+id+"/email", map[string]any{"email": fixtures.ValidEmail})
	code := s.mailer.SentCodes()[0].Code
	s.do(http.MethodPost, "/v1/wizard/"+id+"/code", map[string]any{"code": code})

	status, body := s.do(http.MethodPost, "/v1/wizard/"+id+"/camera", map[string]any{"granted": false})
	s.Equal(http.StatusForbidden, status)
	s.Equal(false, body["success"])

	_, body = s.do(http.MethodGet, "/v1/wizard/"+id, nil)
	s.Equal("welcome", s.wizardOf(body)["step"])
}

func (s *EnrollmentFlowSuite) TestWrongCodeKeepsSession() {
	_, body := s.do(http.MethodPost, "/v1/wizard", nil)
	id := s.wizardOf(body)["id"].(string)

	s.do(http.MethodPost, "/v1/wizard/"+id+"/begin", nil)
	s.do(http.MethodPost, "/v1/wizard/"+id+"/email", map[string]any{"email": fixtures.ValidEmail})

	status, _ := s.do(http.MethodPost, "/v1/wizard/"+id+"/code", map[string]any{"code": "000000"})
	s.Equal(http.StatusBadRequest, status)

	// The real code still verifies after a mismatch.
	code := s.mailer.SentCodes()[0].Code
	status, body = s.do(http.MethodPost, "/v1/wizard/"+id+"/code", map[string]any{"code": code})
	s.Require().Equal(http.StatusOK, status)
	s.Equal("face_capture", s.wizardOf(body)["step"])
}

func (s *EnrollmentFlowSuite) TestEnrollmentFailureSurfacesProviderDetail() {
	s.issuing.FailAccountWith(&enrollment.ProviderError{
		Status:  http.StatusBadRequest,
		Code:    "dbg_1",
		Message: "tos_timestamp must be set",
	})

	_, body := s.do(http.MethodPost, "/v1/wizard", nil)
	id := s.wizardOf(body)["id"].(string)

	s.do(http.MethodPost, "/v1/wizard/"+id+"/begin", nil)
	s.do(http.MethodPost, "/v1/wizard/"+id+"/email", map[string]any{"email": fixtures.ValidEmail})
	code := s.mailer.SentCodes()[0].Code
	s.do(http.MethodPost, "/v1/wizard/"+id+"/code", map[string]any{"code": code})
	s.do(http.MethodPost, "/v1/wizard/"+id+"/camera", map[string]any{"granted": true})
	s.waitForStep(id, "document_capture")
	s.do(http.MethodPost, "/v1/wizard/"+id+"/document", map[string]any{"document": "passport"})
	s.waitForStep(id, "profile_form")

	profile := fixtures.ValidProfile()
	s.do(http.MethodPost, "/v1/wizard/"+id+"/profile", map[string]any{
		"first_name": profile.FirstName,
		"last_name":  profile.LastName,
		"address": map[string]any{
			"line1":       profile.Address.Line1,
			"city":        profile.Address.City,
			"state":       profile.Address.State,
			"postal_code": profile.Address.PostalCode,
			"country":     profile.Address.Country,
		},
	})
	s.do(http.MethodPost, "/v1/wizard/"+id+"/compliance", map[string]any{
		"dob":           profile.DOB,
		"ssn_last_four": profile.SSNLastFour,
	})

	status, _ := s.do(http.MethodPost, "/v1/wizard/"+id+"/enroll", nil)
	s.Require().Equal(http.StatusAccepted, status)

	var wiz map[string]any
	s.Require().Eventually(func() bool {
		_, body := s.do(http.MethodGet, "/v1/wizard/"+id, nil)
		wiz = s.wizardOf(body)
		errMsg, _ := wiz["enroll_error"].(string)
		return errMsg != ""
	}, 5*time.Second, 10*time.Millisecond, "enrollment failure should land on the wizard")

	s.Equal("enrolling", wiz["step"])
	s.Equal("Account creation failed: tos_timestamp must be set", wiz["enroll_error"])
	s.issuing.AssertNoCardCalls(s.T())

	// Retry steps back to the compliance form; resubmitting after the
	// upstream recovers completes the flow.
	s.issuing.FailAccountWith(nil)
	status, body = s.do(http.MethodPost, "/v1/wizard/"+id+"/retry", nil)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("compliance_form", s.wizardOf(body)["step"])

	s.do(http.MethodPost, "/v1/wizard/"+id+"/compliance", map[string]any{
		"dob":           profile.DOB,
		"ssn_last_four": profile.SSNLastFour,
	})
	status, _ = s.do(http.MethodPost, "/v1/wizard/"+id+"/enroll", nil)
	s.Require().Equal(http.StatusAccepted, status)
	s.waitForStep(id, "success")
}

func (s *EnrollmentFlowSuite) TestComplianceRejectsMalformedFields() {
	_, body := s.do(http.MethodPost, "/v1/wizard", nil)
	id := s.wizardOf(body)["id"].(string)

	s.do(http.MethodPost, "/v1/wizard/"+id+"/begin", nil)
	s.do(http.MethodPost, "/v1/wizard/"+id+"/email", map[string]any{"email": fixtures.ValidEmail})
	code := s.mailer.SentCodes()[0].Code
	s.do(http.MethodPost, "/v1/wizard/"+id+"/code", map[string]any{"code": code})
	s.do(http.MethodPost, "/v1/wizard/"+id+"/camera", map[string]any{"granted": true})
	s.waitForStep(id, "document_capture")
	s.do(http.MethodPost, "/v1/wizard/"+id+"/document", map[string]any{"document": "passport"})
	s.waitForStep(id, "profile_form")

	profile := fixtures.ValidProfile()
	s.do(http.MethodPost, "/v1/wizard/"+id+"/profile", map[string]any{
		"first_name": profile.FirstName,
		"last_name":  profile.LastName,
		"address": map[string]any{
			"line1":       profile.Address.Line1,
			"city":        profile.Address.City,
			"state":       profile.Address.State,
			"postal_code": profile.Address.PostalCode,
			"country":     profile.Address.Country,
		},
	})

	status, _ := s.do(http.MethodPost, "/v1/wizard/"+id+"/compliance", map[string]any{
		"dob":           "12/10/1991",
		"ssn_last_four": profile.SSNLastFour,
	})
	s.Equal(http.StatusBadRequest, status)

	status, _ = s.do(http.MethodPost, "/v1/wizard/"+id+"/compliance", map[string]any{
		"dob":           profile.DOB,
		"ssn_last_four": "12",
	})
	s.Equal(http.StatusBadRequest, status)

	// rejected submissions leave the session on the compliance form
	_, body = s.do(http.MethodGet, "/v1/wizard/"+id, nil)
	s.Equal("compliance_form", s.wizardOf(body)["step"])

	status, body = s.do(http.MethodPost, "/v1/wizard/"+id+"/compliance", map[string]any{
		"dob":           profile.DOB,
		"ssn_last_four": profile.SSNLastFour,
	})
	s.Require().Equal(http.StatusOK, status)
	s.Equal("enrolling", s.wizardOf(body)["step"])
}

func (s *EnrollmentFlowSuite) TestAbandonDestroysSession() {
	_, body := s.do(http.MethodPost, "/v1/wizard", nil)
	id := s.wizardOf(body)["id"].(string)

	status, _ := s.do(http.MethodDelete, "/v1/wizard/"+id, nil)
	s.Require().Equal(http.StatusOK, status)

	status, _ = s.do(http.MethodGet, "/v1/wizard/"+id, nil)
	s.Equal(http.StatusNotFound, status)
}

func (s *EnrollmentFlowSuite) TestHealth() {
	status, body := s.do(http.MethodGet, "/api/health", nil)
	s.Equal(http.StatusOK, status)
	s.Equal("ok", body["status"])
	s.Equal(false, body["issuing_configured"])
}

func (s *EnrollmentFlowSuite) TestInvalidWizardID() {
	status, body := s.do(http.MethodGet, "/v1/wizard/not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, status)
	s.Equal(false, body["success"])
	s.Contains(fmt.Sprint(body["error"]), "invalid wizard id")
}
