package application

import (
	"context"
	"sync"

	bookingDomain "github.com/Kilat-Home-Services/service-booking/internal/domain/booking"
	"github.com/Kilat-Home-Services/service-booking/internal/domain/catalog"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/apperr"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/kafka"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, ownerID, wizardID uuid.UUID, draft bookingDomain.Draft) (string, error) {
	args := m.Called(ctx, ownerID, wizardID, draft)
	return args.String(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) ListServices(ctx context.Context, q catalog.Query) ([]catalog.Service, error) {
	args := m.Called(ctx, q)
	out, _ := args.Get(0).([]catalog.Service)
	return out, args.Error(1)
}

func (m *mockCatalog) GetService(ctx context.Context, id string) (*catalog.Service, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*catalog.Service)
	return out, args.Error(1)
}

func (m *mockCatalog) ListProfessionals(ctx context.Context, q catalog.Query) ([]catalog.Professional, error) {
	args := m.Called(ctx, q)
	out, _ := args.Get(0).([]catalog.Professional)
	return out, args.Error(1)
}

func (m *mockCatalog) GetProfessional(ctx context.Context, id string) (*catalog.Professional, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*catalog.Professional)
	return out, args.Error(1)
}

// fakeLedger is an in-memory BookingRepository.
type fakeLedger struct {
	mu       sync.Mutex
	bookings []*bookingDomain.Booking
}

func (f *fakeLedger) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID() == id {
			return b, nil
		}
	}
	return nil, apperr.NewNotFoundError("Booking", id.String())
}

func (f *fakeLedger) FindByWizardID(ctx context.Context, wizardID uuid.UUID) (*bookingDomain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.WizardID() == wizardID {
			return b, nil
		}
	}
	return nil, apperr.NewNotFoundError("Booking", wizardID.String())
}

func (f *fakeLedger) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var owned []*bookingDomain.Booking
	for _, b := range f.bookings {
		if b.OwnerID() == ownerID {
			owned = append(owned, b)
		}
	}
	return paginate(owned, page, limit), int64(len(owned)), nil
}

func (f *fakeLedger) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return paginate(f.bookings, page, limit), int64(len(f.bookings)), nil
}

func (f *fakeLedger) CountByPaymentMethod(ctx context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range f.bookings {
		counts[string(b.PaymentMethod())]++
	}
	return counts, nil
}

func (f *fakeLedger) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.WizardID() == bk.WizardID() {
			return apperr.NewConflictError("booking already recorded for this wizard")
		}
	}
	f.bookings = append(f.bookings, bk)
	return nil
}

func paginate(in []*bookingDomain.Booking, page, limit int) []*bookingDomain.Booking {
	start := (page - 1) * limit
	if start >= len(in) {
		return nil
	}
	end := start + limit
	if end > len(in) {
		end = len(in)
	}
	return in[start:end]
}
