package verification

import (
	"time"

	"github.com/solux-cash/solux-backend/internal/domain/event"
)

const EventStreamName = "events_verification"

type CodeIssued struct {
	event.Header
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (e CodeIssued) GetStreamName() string {
	return EventStreamName
}

type EmailVerified struct {
	event.Header
	Email string `json:"email"`
}

func (e EmailVerified) GetStreamName() string {
	return EventStreamName
}
