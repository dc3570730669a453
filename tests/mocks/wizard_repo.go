package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
	"github.com/solux-cash/solux-backend/pkg/errorx"
)

type WizardRepo struct {
	*EventRepo
	dbbyID map[uuid.UUID]*enrollment.Wizard
	mu     sync.Mutex
}

func NewWizardRepo() *WizardRepo {
	return &WizardRepo{
		EventRepo: NewEventRepo(),
		dbbyID:    make(map[uuid.UUID]*enrollment.Wizard),
	}
}

// GetWizard returns a snapshot, mirroring the memory repo's contract.
func (r *WizardRepo) GetWizard(ctx context.Context, id uuid.UUID) (*enrollment.Wizard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, exists := r.dbbyID[id]; exists {
		return w.Snapshot(), nil
	}
	return nil, errorx.NewNotFound()
}

func (r *WizardRepo) SaveWizard(ctx context.Context, w *enrollment.Wizard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w == nil {
		return errors.New("wizard cannot be nil")
	}

	r.dbbyID[w.ID()] = w
	r.appendEvents(w.GetUncommittedEvents()...)
	w.MarkEventsAsCommitted()

	return nil
}

func (r *WizardRepo) UpdateWizard(ctx context.Context, id uuid.UUID, fn func(context.Context, *enrollment.Wizard) error) error {
	if fn == nil {
		return errors.New("update function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.dbbyID[id]
	if !exists {
		return errorx.NewNotFound()
	}

	if err := fn(ctx, w); err != nil {
		return fmt.Errorf("failed to apply update function: %w", err)
	}

	r.appendEvents(w.GetUncommittedEvents()...)
	w.MarkEventsAsCommitted()

	return nil
}

func (r *WizardRepo) DeleteWizard(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.dbbyID[id]; !exists {
		return errorx.NewNotFound()
	}
	delete(r.dbbyID, id)
	return nil
}

func (r *WizardRepo) SeedWizard(t *testing.T, w *enrollment.Wizard) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	require.NotNil(t, w)
	r.dbbyID[w.ID()] = w
}

func (r *WizardRepo) AssertWizardExists(t *testing.T, id uuid.UUID) *enrollment.Wizard {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.dbbyID[id]
	require.True(t, exists, "expected wizard %s to exist", id)
	return w
}

func (r *WizardRepo) AssertWizardNotExists(t *testing.T, id uuid.UUID) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.dbbyID[id]
	require.False(t, exists, "expected wizard %s to not exist", id)
}

// WaitForStep polls until the wizard reaches step or the timeout elapses.
// Background scans and enrollment advance wizards asynchronously.
func (r *WizardRepo) WaitForStep(t *testing.T, id uuid.UUID, step enrollment.Step, timeout time.Duration) *enrollment.Wizard {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		w, exists := r.dbbyID[id]
		if exists && w.Step() == step {
			r.mu.Unlock()
			return w
		}
		r.mu.Unlock()
		time.Sleep(2 * time.Millisecond)
	}

	t.Fatalf("timed out waiting for wizard %s to reach step %s", id, step)
	return nil
}

// WaitForEnrollError polls until the wizard carries a non-empty enrollment
// error.
func (r *WizardRepo) WaitForEnrollError(t *testing.T, id uuid.UUID, timeout time.Duration) string {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		w, exists := r.dbbyID[id]
		if exists && w.EnrollError() != "" {
			reason := w.EnrollError()
			r.mu.Unlock()
			return reason
		}
		r.mu.Unlock()
		time.Sleep(2 * time.Millisecond)
	}

	t.Fatalf("timed out waiting for wizard %s enrollment error", id)
	return ""
}
