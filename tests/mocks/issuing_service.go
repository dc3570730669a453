package mocks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
)

// IssuingService is a scriptable stand-in for the sandbox issuing API.
type IssuingService struct {
	mu sync.Mutex

	accountErr error
	cardErr    error
	simErr     error

	accountToken string
	card         enrollment.CardDetails
	sim          enrollment.AuthorizationSimulation

	accountCalls []enrollment.Profile
	cardCalls    []string
	simCalls     []string
}

func NewIssuingService() *IssuingService {
	return &IssuingService{
		accountToken: "acct_mock_1",
		card: enrollment.CardDetails{
			Token:    "card_mock_1",
			LastFour: "4242",
			ExpMonth: "06",
			ExpYear:  "2031",
			State:    "OPEN",
			Type:     "VIRTUAL",
		},
		sim: enrollment.AuthorizationSimulation{
			Token:              "sim_mock_1",
			DebuggingRequestID: "dbg_mock_1",
		},
	}
}

func (s *IssuingService) FailAccountWith(err error) { s.mu.Lock(); s.accountErr = err; s.mu.Unlock() }
func (s *IssuingService) FailCardWith(err error)    { s.mu.Lock(); s.cardErr = err; s.mu.Unlock() }
func (s *IssuingService) FailSimWith(err error)     { s.mu.Lock(); s.simErr = err; s.mu.Unlock() }

func (s *IssuingService) CreateAccountHolder(ctx context.Context, p enrollment.Profile) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accountCalls = append(s.accountCalls, p)
	if s.accountErr != nil {
		return "", s.accountErr
	}
	return s.accountToken, nil
}

func (s *IssuingService) CreateCard(ctx context.Context, accountToken string) (enrollment.CardDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cardCalls = append(s.cardCalls, accountToken)
	if s.cardErr != nil {
		return enrollment.CardDetails{}, s.cardErr
	}
	return s.card, nil
}

func (s *IssuingService) SimulateAuthorization(ctx context.Context, cardToken string, amountCents int64, descriptor string) (enrollment.AuthorizationSimulation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.simCalls = append(s.simCalls, cardToken)
	if s.simErr != nil {
		return enrollment.AuthorizationSimulation{}, s.simErr
	}
	return s.sim, nil
}

func (s *IssuingService) AccountCalls() []enrollment.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]enrollment.Profile{}, s.accountCalls...)
}

func (s *IssuingService) CardCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.cardCalls...)
}

func (s *IssuingService) AssertNoCardCalls(t *testing.T) {
	t.Helper()
	require.Empty(t, s.CardCalls(), "expected no card creation calls")
}
