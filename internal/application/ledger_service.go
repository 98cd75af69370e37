package application

import (
	"context"
	"fmt"

	bookingDomain "github.com/Kilat-Home-Services/service-booking/internal/domain/booking"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/apperr"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerSubmitter records submissions in the local bookings table instead of
// calling a remote booking API. Submitting the same wizard twice returns the
// booking recorded the first time.
type LedgerSubmitter struct {
	repo   bookingDomain.BookingRepository
	logger *zap.Logger
}

// NewLedgerSubmitter creates a LedgerSubmitter.
func NewLedgerSubmitter(repo bookingDomain.BookingRepository, logger *zap.Logger) *LedgerSubmitter {
	return &LedgerSubmitter{repo: repo, logger: logger}
}

var _ Submitter = (*LedgerSubmitter)(nil)

// Submit records the draft and returns the booking id.
func (l *LedgerSubmitter) Submit(ctx context.Context, ownerID, wizardID uuid.UUID, draft bookingDomain.Draft) (string, error) {
	existing, err := l.repo.FindByWizardID(ctx, wizardID)
	if err == nil {
		return existing.ID().String(), nil
	}
	if !apperr.Is(err, apperr.CodeNotFound) {
		return "", err
	}

	bk, err := bookingDomain.NewBooking(ownerID, wizardID, draft)
	if err != nil {
		return "", err
	}

	if err := l.repo.Save(ctx, bk); err != nil {
		if apperr.Is(err, apperr.CodeConflict) {
			existing, findErr := l.repo.FindByWizardID(ctx, wizardID)
			if findErr == nil {
				return existing.ID().String(), nil
			}
		}
		return "", err
	}

	l.logger.Info("booking recorded",
		zap.String("booking_id", bk.ID().String()),
		zap.String("booking_number", bk.BookingNumber()),
		zap.String("wizard_id", wizardID.String()),
	)
	return bk.ID().String(), nil
}

// LedgerService serves the recorded bookings: the customer's history, admin
// listings, and rebooking from a past booking.
type LedgerService struct {
	repo    bookingDomain.BookingRepository
	wizards *WizardService
	logger  *zap.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(repo bookingDomain.BookingRepository, wizards *WizardService, logger *zap.Logger) *LedgerService {
	return &LedgerService{repo: repo, wizards: wizards, logger: logger}
}

// GetBooking returns one of the customer's bookings.
func (s *LedgerService) GetBooking(ctx context.Context, ownerID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.OwnerID() != ownerID {
		return nil, apperr.NewForbiddenError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetOwnerBookings retrieves paginated bookings for a specific owner.
func (s *LedgerService) GetOwnerBookings(ctx context.Context, ownerID uuid.UUID, page, limit int) (*PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// Rebook opens a new wizard pre-filled from a past booking. The customer
// lands on the schedule step to pick a new date and time.
func (s *LedgerService) Rebook(ctx context.Context, ownerID, bookingID uuid.UUID) (*WizardDTO, error) {
	original, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Only the original owner can rebook
	if original.OwnerID() != ownerID {
		return nil, apperr.NewForbiddenError("booking does not belong to this user")
	}

	req := StartRequest{
		ServiceID: original.ServiceID(),
		WorkerID:  original.WorkerID(),
		Fields: map[string]string{
			string(bookingDomain.FieldAddress):       original.Address(),
			string(bookingDomain.FieldPhone):         original.Phone(),
			string(bookingDomain.FieldEmail):         original.Email(),
			string(bookingDomain.FieldRequirements):  original.Requirements(),
			string(bookingDomain.FieldPaymentMethod): string(original.PaymentMethod()),
		},
	}
	return s.wizards.Start(ctx, ownerID, req)
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *LedgerService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *LedgerService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByPaymentMethod(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings:   total,
		ByPaymentMethod: counts,
	}, nil
}
