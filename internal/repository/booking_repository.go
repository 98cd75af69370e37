package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingDomain "github.com/Kilat-Home-Services/service-booking/internal/domain/booking"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingNumber string    `gorm:"uniqueIndex;not null;size:20"`
	OwnerID       uuid.UUID `gorm:"type:uuid;index;not null"`
	WizardID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	ServiceID     string    `gorm:"not null;size:64;index"`
	ServiceName   string    `gorm:"size:200"`
	WorkerID      string    `gorm:"not null;size:64;index"`
	WorkerName    string    `gorm:"size:200"`
	ScheduledDate string    `gorm:"column:scheduled_date;not null;size:32"`
	ScheduledTime string    `gorm:"column:scheduled_time;not null;size:32"`
	Address       string    `gorm:"not null;size:500"`
	Phone         string    `gorm:"not null;size:50"`
	Email         string    `gorm:"not null;size:254"`
	Requirements  string    `gorm:"size:2000"`
	PaymentMethod string    `gorm:"not null;size:20;index"`
	BasePrice     int64     `gorm:"not null"`
	PlatformFee   int64     `gorm:"not null"`
	Discount      int64     `gorm:"not null;default:0"`
	TotalAmount   int64     `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

var _ bookingDomain.BookingRepository = (*GormBookingRepository)(nil)

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByWizardID retrieves the booking created from a wizard session.
func (r *GormBookingRepository) FindByWizardID(ctx context.Context, wizardID uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("wizard_id = ?", wizardID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Booking", wizardID.String())
		}
		return nil, fmt.Errorf("failed to find booking by wizard ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByOwnerID retrieves bookings for a specific owner with pagination.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner bookings: %w", err)
	}

	return toDomainBookings(models), total, nil
}

// Save persists a new booking. A second booking for the same wizard is a
// conflict.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.NewConflictError("booking already recorded for this wizard")
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models), total, nil
}

// CountByPaymentMethod returns booking counts grouped by payment method (admin).
func (r *GormBookingRepository) CountByPaymentMethod(ctx context.Context) (map[string]int64, error) {
	type methodCount struct {
		PaymentMethod string
		Count         int64
	}
	var results []methodCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("payment_method, count(*) as count").
		Group("payment_method").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by payment method: %w", err)
	}

	counts := make(map[string]int64)
	for _, mc := range results {
		counts[mc.PaymentMethod] = mc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	p := bk.Pricing()
	return &BookingModel{
		ID:            bk.ID(),
		BookingNumber: bk.BookingNumber(),
		OwnerID:       bk.OwnerID(),
		WizardID:      bk.WizardID(),
		ServiceID:     bk.ServiceID(),
		ServiceName:   bk.ServiceName(),
		WorkerID:      bk.WorkerID(),
		WorkerName:    bk.WorkerName(),
		ScheduledDate: bk.Date(),
		ScheduledTime: bk.Time(),
		Address:       bk.Address(),
		Phone:         bk.Phone(),
		Email:         bk.Email(),
		Requirements:  bk.Requirements(),
		PaymentMethod: string(bk.PaymentMethod()),
		BasePrice:     p.BasePrice,
		PlatformFee:   p.PlatformFee,
		Discount:      p.Discount,
		TotalAmount:   p.TotalAmount,
		CreatedAt:     bk.CreatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.OwnerID,
		m.WizardID,
		m.ServiceID, m.ServiceName,
		m.WorkerID, m.WorkerName,
		m.ScheduledDate, m.ScheduledTime, m.Address, m.Phone, m.Email, m.Requirements,
		bookingDomain.PaymentMethod(m.PaymentMethod),
		bookingDomain.Pricing{
			BasePrice:   m.BasePrice,
			PlatformFee: m.PlatformFee,
			Discount:    m.Discount,
			TotalAmount: m.TotalAmount,
		},
		m.CreatedAt,
	)
}

func toDomainBookings(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toDomainBooking(&models[i])
	}
	return bookings
}
