package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Kilat-Home-Services/service-booking/internal/platform/apperr"
	"github.com/google/uuid"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is a submitted wizard draft as recorded by the in-process ledger.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	ownerID       uuid.UUID
	wizardID      uuid.UUID

	serviceID   string
	serviceName string
	workerID    string
	workerName  string

	date         string
	time         string
	address      string
	phone        string
	email        string
	requirements string

	paymentMethod PaymentMethod
	pricing       Pricing

	createdAt time.Time
}

// generateBookingNumber creates a booking number in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking records a completed draft. The draft must have passed every
// wizard step.
func NewBooking(ownerID, wizardID uuid.UUID, draft Draft) (*Booking, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.NewValidationError("owner ID is required")
	}
	if wizardID == uuid.Nil {
		return nil, apperr.NewValidationError("wizard ID is required")
	}
	if errs := ValidateThrough(LastStep, draft); len(errs) > 0 {
		return nil, apperr.NewValidationError(fmt.Sprintf("draft is incomplete: %d invalid field(s)", len(errs)))
	}
	p := draft.Pricing
	if p.TotalAmount != p.BasePrice+p.PlatformFee-p.Discount {
		return nil, apperr.NewValidationError("pricing breakdown does not add up")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	var serviceName, workerName string
	if draft.Service != nil {
		serviceName = draft.Service.Name
	}
	if draft.Worker != nil {
		workerName = draft.Worker.Name
	}

	return &Booking{
		id:            uuid.New(),
		bookingNumber: bookingNumber,
		ownerID:       ownerID,
		wizardID:      wizardID,
		serviceID:     *draft.ServiceID,
		serviceName:   serviceName,
		workerID:      *draft.WorkerID,
		workerName:    workerName,
		date:          strings.TrimSpace(draft.Date),
		time:          strings.TrimSpace(draft.Time),
		address:       strings.TrimSpace(draft.Address),
		phone:         strings.TrimSpace(draft.Phone),
		email:         strings.TrimSpace(draft.Email),
		requirements:  strings.TrimSpace(draft.Requirements),
		paymentMethod: draft.PaymentMethod,
		pricing:       p,
		createdAt:     time.Now().UTC(),
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	ownerID uuid.UUID,
	wizardID uuid.UUID,
	serviceID, serviceName string,
	workerID, workerName string,
	date, timeSlot, address, phone, email, requirements string,
	paymentMethod PaymentMethod,
	pricing Pricing,
	createdAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		bookingNumber: bookingNumber,
		ownerID:       ownerID,
		wizardID:      wizardID,
		serviceID:     serviceID,
		serviceName:   serviceName,
		workerID:      workerID,
		workerName:    workerName,
		date:          date,
		time:          timeSlot,
		address:       address,
		phone:         phone,
		email:         email,
		requirements:  requirements,
		paymentMethod: paymentMethod,
		pricing:       pricing,
		createdAt:     createdAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID                { return b.id }
func (b *Booking) BookingNumber() string        { return b.bookingNumber }
func (b *Booking) OwnerID() uuid.UUID           { return b.ownerID }
func (b *Booking) WizardID() uuid.UUID          { return b.wizardID }
func (b *Booking) ServiceID() string            { return b.serviceID }
func (b *Booking) ServiceName() string          { return b.serviceName }
func (b *Booking) WorkerID() string             { return b.workerID }
func (b *Booking) WorkerName() string           { return b.workerName }
func (b *Booking) Date() string                 { return b.date }
func (b *Booking) Time() string                 { return b.time }
func (b *Booking) Address() string              { return b.address }
func (b *Booking) Phone() string                { return b.phone }
func (b *Booking) Email() string                { return b.email }
func (b *Booking) Requirements() string         { return b.requirements }
func (b *Booking) PaymentMethod() PaymentMethod { return b.paymentMethod }
func (b *Booking) Pricing() Pricing             { return b.pricing }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
