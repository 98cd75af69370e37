package booking

import (
	"context"

	"github.com/google/uuid"
)

// WizardRepository defines the session store for in-progress wizards.
type WizardRepository interface {
	// FindByID retrieves a wizard session by its identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Wizard, error)

	// Save persists a new wizard session.
	Save(ctx context.Context, wizard *Wizard) error

	// Update persists changes to an existing session with optimistic locking.
	// The stored version must equal wizard.Version()-1.
	Update(ctx context.Context, wizard *Wizard) error

	// Delete discards a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}

// BookingRepository defines the persistence contract for submitted bookings.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByWizardID retrieves the booking created from a wizard session.
	FindByWizardID(ctx context.Context, wizardID uuid.UUID) (*Booking, error)

	// FindByOwnerID retrieves bookings belonging to a specific customer with pagination.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByPaymentMethod returns booking counts grouped by payment method (admin).
	CountByPaymentMethod(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error
}
