package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solux-cash/solux-backend/internal/domain/verification"
	"github.com/solux-cash/solux-backend/tests/integration/builders"
	"github.com/solux-cash/solux-backend/tests/mocks"
)

type IssueCodeSuite struct {
	Handler    *IssueCodeHandler
	MockRepo   *mocks.VerificationRepo
	MockMailer *mocks.MailSender
}

func NewIssueCodeSuite() *IssueCodeSuite {
	mockRepo := mocks.NewVerificationRepo()
	mockMailer := mocks.NewMailSender()
	handler := NewIssueCodeHandler(IssueCodeHandlerArgs{
		Repo:   mockRepo,
		Mailer: mockMailer,
	})

	return &IssueCodeSuite{
		Handler:    handler,
		MockRepo:   mockRepo,
		MockMailer: mockMailer,
	}
}

func TestIssueCodeHandler_HappyPath(t *testing.T) {
	t.Parallel()

	s := NewIssueCodeSuite()

	err := s.Handler.Handle(context.Background(), IssueCode{Email: "user@example.com"})
	require.NoError(t, err)

	v := s.MockRepo.AssertVerificationExists(t, "user@example.com")
	assert.Len(t, v.Code(), verification.CodeLength)
	assert.WithinDuration(t, time.Now().UTC().Add(verification.ExpiresAfter), v.ExpiresAt(), 5*time.Second)

	s.MockMailer.AssertCodeSent(t, "user@example.com", v.Code())

	s.MockRepo.AssertEventCount(t, 1)
	e := mocks.RequireEventExists(t, s.MockRepo.EventRepo, &verification.CodeIssued{})
	assert.Equal(t, "user@example.com", e.Email)
	assert.Equal(t, v.Code(), e.Code)
}

func TestIssueCodeHandler_OverwritesLiveCode(t *testing.T) {
	t.Parallel()

	s := NewIssueCodeSuite()
	prev := builders.NewVerificationBuilder().
		WithEmail("user@example.com").
		WithCode("111111").
		Build()
	s.MockRepo.SeedVerification(t, prev)

	err := s.Handler.Handle(context.Background(), IssueCode{Email: "user@example.com"})
	require.NoError(t, err)

	v := s.MockRepo.AssertVerificationExists(t, "user@example.com")
	assert.NotEqual(t, "111111", v.Code(), "old code must be replaced")
}

func TestIssueCodeHandler_InvalidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{name: "empty", email: "", wantErr: verification.ErrEmailRequired},
		{name: "no at sign", email: "not-an-email", wantErr: verification.ErrEmailInvalid},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewIssueCodeSuite()

			err := s.Handler.Handle(context.Background(), IssueCode{Email: tt.email})
			require.ErrorIs(t, err, tt.wantErr)

			s.MockRepo.AssertVerificationNotExists(t, tt.email)
			s.MockMailer.AssertNothingSent(t)
		})
	}
}

func TestIssueCodeHandler_MailDispatchFails_EntryKept(t *testing.T) {
	t.Parallel()

	s := NewIssueCodeSuite()
	s.MockMailer.FailWith(errors.New("smtp: connection refused"))

	err := s.Handler.Handle(context.Background(), IssueCode{Email: "user@example.com"})
	require.ErrorIs(t, err, verification.ErrMailDispatchFailed)

	// the stored code survives a dispatch failure
	s.MockRepo.AssertVerificationExists(t, "user@example.com")
}
