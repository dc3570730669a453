package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/google/uuid"

	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
	"github.com/solux-cash/solux-backend/internal/domain/event"
	"github.com/solux-cash/solux-backend/pkg/errorx"
)

type WizardRepo struct {
	mu  sync.RWMutex
	db  map[uuid.UUID]*enrollment.Wizard
	bus *cqrs.EventBus
}

func NewWizardRepo(bus *cqrs.EventBus) *WizardRepo {
	return &WizardRepo{
		db:  make(map[uuid.UUID]*enrollment.Wizard),
		bus: bus,
	}
}

// GetWizard returns a detached snapshot of the session. Scan and enrollment
// goroutines mutate the stored aggregate under the write lock, so the live
// pointer never leaves the repo.
func (r *WizardRepo) GetWizard(ctx context.Context, id uuid.UUID) (*enrollment.Wizard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, exists := r.db[id]
	if !exists {
		return nil, errorx.NewResourceNotFound("wizard")
	}
	return w.Snapshot(), nil
}

func (r *WizardRepo) SaveWizard(ctx context.Context, w *enrollment.Wizard) error {
	if w == nil {
		return errors.New("wizard cannot be nil")
	}

	r.mu.Lock()
	r.db[w.ID()] = w
	events := drainEvents(w)
	r.mu.Unlock()

	return r.publish(ctx, events)
}

// UpdateWizard applies fn to the stored wizard under the write lock, then
// publishes whatever events the mutation recorded. Events are drained while
// the lock is held so a concurrent update cannot touch the recorder
// mid-publish. A failing fn leaves the wizard as fn left it; wizard methods
// guard their own transitions and do not partially mutate.
func (r *WizardRepo) UpdateWizard(ctx context.Context, id uuid.UUID, fn func(context.Context, *enrollment.Wizard) error) error {
	if fn == nil {
		return errors.New("update function cannot be nil")
	}

	r.mu.Lock()
	w, exists := r.db[id]
	if !exists {
		r.mu.Unlock()
		return errorx.NewResourceNotFound("wizard")
	}

	if err := fn(ctx, w); err != nil {
		r.mu.Unlock()
		return err
	}
	events := drainEvents(w)
	r.mu.Unlock()

	return r.publish(ctx, events)
}

func (r *WizardRepo) DeleteWizard(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.db[id]; !exists {
		return errorx.NewResourceNotFound("wizard")
	}
	delete(r.db, id)
	return nil
}

func (r *WizardRepo) publish(ctx context.Context, events []event.Event) error {
	if r.bus == nil {
		return nil
	}

	for _, e := range events {
		if err := r.bus.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
