package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solux-cash/solux-backend/internal/domain/verification"
	"github.com/solux-cash/solux-backend/tests/integration/builders"
	"github.com/solux-cash/solux-backend/tests/mocks"
)

type VerifyCodeSuite struct {
	Handler  *VerifyCodeHandler
	MockRepo *mocks.VerificationRepo
}

func NewVerifyCodeSuite() *VerifyCodeSuite {
	mockRepo := mocks.NewVerificationRepo()
	handler := NewVerifyCodeHandler(VerifyCodeHandlerArgs{
		Repo: mockRepo,
	})

	return &VerifyCodeSuite{
		Handler:  handler,
		MockRepo: mockRepo,
	}
}

func TestVerifyCodeHandler_HappyPath(t *testing.T) {
	t.Parallel()

	s := NewVerifyCodeSuite()
	v := builders.NewVerificationBuilder().
		WithEmail("user@example.com").
		WithCode("482913").
		Build()
	s.MockRepo.SeedVerification(t, v)

	err := s.Handler.Handle(context.Background(), VerifyCode{Email: "user@example.com", Code: "482913"})
	require.NoError(t, err)

	s.MockRepo.AssertVerificationNotExists(t, "user@example.com")

	e := mocks.RequireEventExists(t, s.MockRepo.EventRepo, &verification.EmailVerified{})
	assert.Equal(t, "user@example.com", e.Email)
}

func TestVerifyCodeHandler_NoCodeIssued(t *testing.T) {
	t.Parallel()

	s := NewVerifyCodeSuite()

	err := s.Handler.Handle(context.Background(), VerifyCode{Email: "user@example.com", Code: "482913"})
	require.ErrorIs(t, err, verification.ErrNoCodeIssued)
}

func TestVerifyCodeHandler_Expired_DeletesEntry(t *testing.T) {
	t.Parallel()

	s := NewVerifyCodeSuite()
	v := builders.NewVerificationBuilder().
		WithEmail("user@example.com").
		WithCode("482913").
		Expired().
		Build()
	s.MockRepo.SeedVerification(t, v)

	err := s.Handler.Handle(context.Background(), VerifyCode{Email: "user@example.com", Code: "482913"})
	require.ErrorIs(t, err, verification.ErrCodeExpired)

	s.MockRepo.AssertVerificationNotExists(t, "user@example.com")

	// a second attempt now reports no code at all
	err = s.Handler.Handle(context.Background(), VerifyCode{Email: "user@example.com", Code: "482913"})
	require.ErrorIs(t, err, verification.ErrNoCodeIssued)
}

func TestVerifyCodeHandler_Mismatch_KeepsEntry(t *testing.T) {
	t.Parallel()

	s := NewVerifyCodeSuite()
	v := builders.NewVerificationBuilder().
		WithEmail("user@example.com").
		WithCode("482913").
		Build()
	s.MockRepo.SeedVerification(t, v)

	err := s.Handler.Handle(context.Background(), VerifyCode{Email: "user@example.com", Code: "999999"})
	require.ErrorIs(t, err, verification.ErrCodeMismatch)

	s.MockRepo.AssertVerificationExists(t, "user@example.com")

	// the correct code still works afterwards
	err = s.Handler.Handle(context.Background(), VerifyCode{Email: "user@example.com", Code: "482913"})
	require.NoError(t, err)
	s.MockRepo.AssertVerificationNotExists(t, "user@example.com")
}

func TestVerifyCodeHandler_CodeFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
	}{
		{name: "empty", code: ""},
		{name: "too short", code: "123"},
		{name: "too long", code: "1234567"},
		{name: "letters", code: "abcdef"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewVerifyCodeSuite()
			v := builders.NewVerificationBuilder().WithEmail("user@example.com").Build()
			s.MockRepo.SeedVerification(t, v)

			err := s.Handler.Handle(context.Background(), VerifyCode{Email: "user@example.com", Code: tt.code})
			require.ErrorIs(t, err, verification.ErrCodeFormat)
			s.MockRepo.AssertVerificationExists(t, "user@example.com")
		})
	}
}

func TestVerifyCodeHandler_CaseSensitiveEmailKey(t *testing.T) {
	t.Parallel()

	s := NewVerifyCodeSuite()
	v := builders.NewVerificationBuilder().
		WithEmail("User@Example.com").
		WithCode("482913").
		Build()
	s.MockRepo.SeedVerification(t, v)

	err := s.Handler.Handle(context.Background(), VerifyCode{Email: "user@example.com", Code: "482913"})
	require.ErrorIs(t, err, verification.ErrNoCodeIssued, "lookup must not normalize case")
}
