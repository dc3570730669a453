// Package memory holds the in-process stores backing the sandbox. State
// lives for the lifetime of the process; a restart wipes every live code
// and wizard session, which is acceptable for a demo environment.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"github.com/solux-cash/solux-backend/internal/domain/event"
	"github.com/solux-cash/solux-backend/internal/domain/verification"
	"github.com/solux-cash/solux-backend/pkg/errorx"
)

// drainEvents takes the aggregate's uncommitted events while the caller
// still holds the store lock, so publishing never reads the recorder
// concurrently with another mutation.
func drainEvents(rec interface {
	GetUncommittedEvents() []event.Event
	MarkEventsAsCommitted()
}) []event.Event {
	events := rec.GetUncommittedEvents()
	rec.MarkEventsAsCommitted()
	return events
}

// VerificationRepo keys live codes by the exact email string. No
// normalization: "User@x.com" and "user@x.com" are distinct entries.
type VerificationRepo struct {
	mu  sync.RWMutex
	db  map[string]*verification.Verification
	bus *cqrs.EventBus
}

// NewVerificationRepo builds the store. bus may be nil when event publishing
// is not wired, e.g. in narrow tests.
func NewVerificationRepo(bus *cqrs.EventBus) *VerificationRepo {
	return &VerificationRepo{
		db:  make(map[string]*verification.Verification),
		bus: bus,
	}
}

// GetVerification returns a detached copy of the live entry, same treatment
// as WizardRepo.GetWizard: the stored aggregate stays behind the lock.
func (r *VerificationRepo) GetVerification(ctx context.Context, email string) (*verification.Verification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, exists := r.db[email]
	if !exists {
		return nil, errorx.NewResourceNotFound("verification")
	}
	return verification.Rehydrate(verification.RehydrateArgs{
		Email:     v.Email(),
		Code:      v.Code(),
		IssuedAt:  v.IssuedAt(),
		ExpiresAt: v.ExpiresAt(),
	}), nil
}

// SaveVerification stores v, replacing any live entry for the same email.
func (r *VerificationRepo) SaveVerification(ctx context.Context, v *verification.Verification) error {
	if v == nil {
		return errors.New("verification cannot be nil")
	}

	r.mu.Lock()
	r.db[v.Email()] = v
	events := drainEvents(v)
	r.mu.Unlock()

	return r.publish(ctx, events)
}

func (r *VerificationRepo) DeleteVerification(ctx context.Context, v *verification.Verification) error {
	if v == nil {
		return errors.New("verification cannot be nil")
	}

	r.mu.Lock()
	delete(r.db, v.Email())
	events := drainEvents(v)
	r.mu.Unlock()

	return r.publish(ctx, events)
}

func (r *VerificationRepo) publish(ctx context.Context, events []event.Event) error {
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
