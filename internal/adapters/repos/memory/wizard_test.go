package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
	"github.com/solux-cash/solux-backend/pkg/errorx"
)

func TestWizardRepo_CRUD(t *testing.T) {
	t.Parallel()

	repo := NewWizardRepo(nil)
	ctx := context.Background()

	_, err := repo.GetWizard(ctx, uuid.New())
	require.True(t, errorx.IsNotFound(err))

	w := enrollment.NewWizard()
	require.NoError(t, repo.SaveWizard(ctx, w))

	got, err := repo.GetWizard(ctx, w.ID())
	require.NoError(t, err)
	assert.Equal(t, enrollment.StepWelcome, got.Step())

	require.NoError(t, repo.DeleteWizard(ctx, w.ID()))
	_, err = repo.GetWizard(ctx, w.ID())
	require.True(t, errorx.IsNotFound(err))

	err = repo.DeleteWizard(ctx, w.ID())
	require.True(t, errorx.IsNotFound(err))
}

func TestWizardRepo_Update(t *testing.T) {
	t.Parallel()

	repo := NewWizardRepo(nil)
	ctx := context.Background()

	w := enrollment.NewWizard()
	require.NoError(t, repo.SaveWizard(ctx, w))

	err := repo.UpdateWizard(ctx, w.ID(), func(_ context.Context, w *enrollment.Wizard) error {
		return w.Begin()
	})
	require.NoError(t, err)

	got, err := repo.GetWizard(ctx, w.ID())
	require.NoError(t, err)
	assert.Equal(t, enrollment.StepEmailEntry, got.Step())

	// a guard failure propagates
	err = repo.UpdateWizard(ctx, w.ID(), func(_ context.Context, w *enrollment.Wizard) error {
		return w.Begin()
	})
	require.ErrorIs(t, err, enrollment.ErrStepMismatch)
}

// savedAtFaceCapture stores a session advanced far enough that
// SetScanProgress is a legal mutation.
func savedAtFaceCapture(t *testing.T, repo *WizardRepo) *enrollment.Wizard {
	t.Helper()

	w := enrollment.NewWizard()
	require.NoError(t, w.Begin())
	require.NoError(t, w.EmailAccepted("user@example.com"))
	require.NoError(t, w.EmailVerified())
	require.NoError(t, w.GrantCamera())
	require.NoError(t, repo.SaveWizard(context.Background(), w))
	return w
}

func TestWizardRepo_GetReturnsDetachedSnapshot(t *testing.T) {
	t.Parallel()

	repo := NewWizardRepo(nil)
	ctx := context.Background()
	w := savedAtFaceCapture(t, repo)

	before, err := repo.GetWizard(ctx, w.ID())
	require.NoError(t, err)
	assert.NotSame(t, w, before)

	err = repo.UpdateWizard(ctx, w.ID(), func(_ context.Context, w *enrollment.Wizard) error {
		return w.SetScanProgress(55)
	})
	require.NoError(t, err)

	assert.Equal(t, 0, before.ScanProgress(), "snapshot must not track later updates")

	after, err := repo.GetWizard(ctx, w.ID())
	require.NoError(t, err)
	assert.Equal(t, 55, after.ScanProgress())
}

// Polling a session while a scan goroutine advances it is the client's
// normal path; reads must never touch the aggregate the writer holds.
func TestWizardRepo_PollDuringScanUpdates(t *testing.T) {
	t.Parallel()

	repo := NewWizardRepo(nil)
	ctx := context.Background()
	id := savedAtFaceCapture(t, repo).ID()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for pct := 0; pct <= 100; pct++ {
			err := repo.UpdateWizard(ctx, id, func(_ context.Context, w *enrollment.Wizard) error {
				return w.SetScanProgress(pct)
			})
			if err != nil {
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		got, err := repo.GetWizard(ctx, id)
		require.NoError(t, err)
		pct := got.ScanProgress()
		require.GreaterOrEqual(t, pct, 0)
		require.LessOrEqual(t, pct, 100)
	}
	<-done
}
