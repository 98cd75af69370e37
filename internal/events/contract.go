package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicCatalogEvents = "catalog.events"
)

// Event types published by this service.
const (
	WizardSubmitted        = "booking.wizard.submitted"
	WizardSubmissionFailed = "booking.wizard.submission_failed"
)

// Event types consumed from the catalog.
const (
	CatalogServiceUpdated      = "catalog.service.updated"
	CatalogProfessionalUpdated = "catalog.professional.updated"
)

// WizardSubmittedEvent is published after the booking API accepted a draft.
type WizardSubmittedEvent struct {
	WizardID      uuid.UUID `json:"wizard_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	BookingID     string    `json:"booking_id"`
	ServiceID     string    `json:"service_id"`
	WorkerID      string    `json:"worker_id"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	PaymentMethod string    `json:"payment_method"`
	TotalAmount   int64     `json:"total_amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// WizardSubmissionFailedEvent is published when a submission attempt failed.
type WizardSubmissionFailedEvent struct {
	WizardID   uuid.UUID `json:"wizard_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CatalogEntryUpdatedEvent is the payload of both catalog update events.
type CatalogEntryUpdatedEvent struct {
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
}
