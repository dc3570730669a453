package enrollment

import (
	"github.com/google/uuid"

	"github.com/solux-cash/solux-backend/internal/domain/event"
)

const EventStreamName = "events_enrollment"

type EnrollmentCompleted struct {
	event.Header
	WizardID     uuid.UUID `json:"wizard_id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	AccountToken string    `json:"account_token"`
	CardToken    string    `json:"card_token"`
	CardLastFour string    `json:"card_last_four"`
}

func (e EnrollmentCompleted) GetStreamName() string {
	return EventStreamName
}

type EnrollmentFailed struct {
	event.Header
	WizardID uuid.UUID `json:"wizard_id"`
	Email    string    `json:"email"`
	Reason   string    `json:"reason"`
}

func (e EnrollmentFailed) GetStreamName() string {
	return EventStreamName
}
