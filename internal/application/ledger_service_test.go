package application

import (
	"context"
	"testing"

	bookingDomain "github.com/Kilat-Home-Services/service-booking/internal/domain/booking"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func completedDraft(t *testing.T) bookingDomain.Draft {
	t.Helper()
	d := bookingDomain.NewDraft()
	strategy := bookingDomain.NewStandardPricingStrategy()
	d.SelectService(svc1, strategy)
	d.SelectWorker(w1, strategy)
	for name, value := range scheduleFields {
		require.NoError(t, d.Set(bookingDomain.Field(name), value))
	}
	return d
}

func TestLedgerSubmitter_RecordsOnce(t *testing.T) {
	ledger := &fakeLedger{}
	sub := NewLedgerSubmitter(ledger, zap.NewNop())
	ctx := context.Background()
	owner, wizardID := uuid.New(), uuid.New()

	id, err := sub.Submit(ctx, owner, wizardID, completedDraft(t))
	require.NoError(t, err)
	require.Len(t, ledger.bookings, 1)
	assert.Equal(t, ledger.bookings[0].ID().String(), id)
	assert.Equal(t, int64(164), ledger.bookings[0].Pricing().TotalAmount)

	again, err := sub.Submit(ctx, owner, wizardID, completedDraft(t))
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Len(t, ledger.bookings, 1)
}

func TestLedgerSubmitter_RejectsIncompleteDraft(t *testing.T) {
	sub := NewLedgerSubmitter(&fakeLedger{}, zap.NewNop())
	_, err := sub.Submit(context.Background(), uuid.New(), uuid.New(), bookingDomain.NewDraft())
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestLedgerSubmitter_DrivesWizard(t *testing.T) {
	f := newFixture(t)
	ledger := &fakeLedger{}
	f.svc.submitter = NewLedgerSubmitter(ledger, zap.NewNop())
	f.publisher.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	w := f.atPayment(t)
	result, err := f.svc.Submit(context.Background(), f.owner, w.ID)
	require.NoError(t, err)
	require.True(t, result.Submitted)

	bk, err := ledger.FindByWizardID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, bk.ID().String(), result.BookingID)
	assert.Equal(t, f.owner, bk.OwnerID())
	assert.Equal(t, "12 Rua Augusta, Lisbon", bk.Address())
}

func TestLedgerService_History(t *testing.T) {
	ledger := &fakeLedger{}
	sub := NewLedgerSubmitter(ledger, zap.NewNop())
	svc := NewLedgerService(ledger, nil, zap.NewNop())
	ctx := context.Background()

	owner, other := uuid.New(), uuid.New()
	for i := 0; i < 3; i++ {
		_, err := sub.Submit(ctx, owner, uuid.New(), completedDraft(t))
		require.NoError(t, err)
	}
	cash := completedDraft(t)
	cash.PaymentMethod = bookingDomain.PaymentCash
	otherID, err := sub.Submit(ctx, other, uuid.New(), cash)
	require.NoError(t, err)

	page, err := svc.GetOwnerBookings(ctx, owner, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	_, err = svc.GetBooking(ctx, owner, uuid.MustParse(otherID))
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	bk, err := svc.GetBooking(ctx, other, uuid.MustParse(otherID))
	require.NoError(t, err)
	assert.Equal(t, "cash", bk.PaymentMethod)

	all, total, err := svc.ListAllBookings(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, int64(4), total)

	stats, err := svc.GetBookingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalBookings)
	assert.Equal(t, map[string]int64{"online": 3, "cash": 1}, stats.ByPaymentMethod)
}

func TestLedgerService_Rebook(t *testing.T) {
	f := newFixture(t)
	ledger := &fakeLedger{}
	svc := NewLedgerService(ledger, f.svc, zap.NewNop())
	ctx := context.Background()

	d := completedDraft(t)
	d.Requirements = "two cats, keep the door closed"
	d.PaymentMethod = bookingDomain.PaymentCash
	bookingID, err := NewLedgerSubmitter(ledger, zap.NewNop()).Submit(ctx, f.owner, uuid.New(), d)
	require.NoError(t, err)

	w, err := svc.Rebook(ctx, f.owner, uuid.MustParse(bookingID))
	require.NoError(t, err)
	assert.Equal(t, "step_2", w.State)
	assert.Equal(t, "svc1", *w.Draft.ServiceID)
	assert.Equal(t, "w1", *w.Draft.WorkerID)
	assert.Equal(t, "12 Rua Augusta, Lisbon", w.Draft.Address)
	assert.Equal(t, "two cats, keep the door closed", w.Draft.Requirements)
	assert.Equal(t, "cash", w.Draft.PaymentMethod)
	assert.Empty(t, w.Draft.Date, "a new date must be picked")

	_, err = svc.Rebook(ctx, uuid.New(), uuid.MustParse(bookingID))
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestNewPaginatedResult(t *testing.T) {
	p := NewPaginatedResult([]int{1, 2}, 5, 1, 2)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, NewPaginatedResult([]int{}, 5, 1, 0).TotalPages)
}
