package mocks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solux-cash/solux-backend/internal/domain/verification"
	"github.com/solux-cash/solux-backend/pkg/errorx"
)

type VerificationRepo struct {
	*EventRepo
	dbbyEmail map[string]*verification.Verification
	mu        sync.Mutex
}

func NewVerificationRepo() *VerificationRepo {
	return &VerificationRepo{
		EventRepo: NewEventRepo(),
		dbbyEmail: make(map[string]*verification.Verification),
	}
}

// GetVerification returns a detached copy, mirroring the memory repo's
// contract.
func (r *VerificationRepo) GetVerification(ctx context.Context, email string) (*verification.Verification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, exists := r.dbbyEmail[email]; exists {
		return verification.Rehydrate(verification.RehydrateArgs{
			Email:     v.Email(),
			Code:      v.Code(),
			IssuedAt:  v.IssuedAt(),
			ExpiresAt: v.ExpiresAt(),
		}), nil
	}
	return nil, errorx.NewNotFound()
}

func (r *VerificationRepo) SaveVerification(ctx context.Context, v *verification.Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v == nil {
		return errors.New("verification cannot be nil")
	}

	r.dbbyEmail[v.Email()] = v
	r.appendEvents(v.GetUncommittedEvents()...)
	v.MarkEventsAsCommitted()

	return nil
}

func (r *VerificationRepo) DeleteVerification(ctx context.Context, v *verification.Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v == nil {
		return errors.New("verification cannot be nil")
	}

	delete(r.dbbyEmail, v.Email())
	r.appendEvents(v.GetUncommittedEvents()...)
	v.MarkEventsAsCommitted()

	return nil
}

func (r *VerificationRepo) SeedVerification(t *testing.T, v *verification.Verification) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	require.NotNil(t, v)
	r.dbbyEmail[v.Email()] = v
}

func (r *VerificationRepo) AssertVerificationExists(t *testing.T, email string) *verification.Verification {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	v, exists := r.dbbyEmail[email]
	require.True(t, exists, "expected verification for %s to exist", email)
	return v
}

func (r *VerificationRepo) AssertVerificationNotExists(t *testing.T, email string) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.dbbyEmail[email]
	require.False(t, exists, "expected verification for %s to not exist", email)
}
