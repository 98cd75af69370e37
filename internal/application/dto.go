package application

import (
	"time"

	bookingDomain "github.com/Kilat-Home-Services/service-booking/internal/domain/booking"
	"github.com/google/uuid"
)

// DraftDTO is the response representation of a booking draft.
type DraftDTO struct {
	ServiceID     *string                    `json:"service_id"`
	WorkerID      *string                    `json:"worker_id"`
	Service       *bookingDomain.ServiceInfo `json:"service,omitempty"`
	Worker        *bookingDomain.WorkerInfo  `json:"worker,omitempty"`
	Date          string                     `json:"date"`
	Time          string                     `json:"time"`
	Address       string                     `json:"address"`
	Phone         string                     `json:"phone"`
	Email         string                     `json:"email"`
	Requirements  string                     `json:"requirements"`
	PaymentMethod string                     `json:"payment_method"`
}

// WizardDTO is the response representation of a wizard session.
// Pricing is omitted until the service step is complete.
type WizardDTO struct {
	ID              uuid.UUID              `json:"id"`
	State           string                 `json:"state"`
	Step            int                    `json:"step"`
	StepName        string                 `json:"step_name"`
	StepCount       int                    `json:"step_count"`
	Status          string                 `json:"status"`
	RequiredFields  []string               `json:"required_fields"`
	Draft           DraftDTO               `json:"draft"`
	Pricing         *bookingDomain.Pricing `json:"pricing,omitempty"`
	Errors          map[string]string      `json:"errors"`
	SubmissionError string                 `json:"submission_error,omitempty"`
	BookingID       string                 `json:"booking_id,omitempty"`
	Version         int64                  `json:"version"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// SubmitResultDTO is the outcome of a submit attempt. Submitted is false when
// validation or the booking API failed; Wizard then carries the errors or
// banner to display.
type SubmitResultDTO struct {
	Submitted bool       `json:"submitted"`
	BookingID string     `json:"booking_id,omitempty"`
	Wizard    *WizardDTO `json:"wizard"`
}

// BookingDTO is the response representation of a recorded booking.
type BookingDTO struct {
	ID            uuid.UUID             `json:"id"`
	BookingNumber string                `json:"booking_number"`
	OwnerID       uuid.UUID             `json:"owner_id"`
	WizardID      uuid.UUID             `json:"wizard_id"`
	ServiceID     string                `json:"service_id"`
	ServiceName   string                `json:"service_name,omitempty"`
	WorkerID      string                `json:"worker_id"`
	WorkerName    string                `json:"worker_name,omitempty"`
	Date          string                `json:"date"`
	Time          string                `json:"time"`
	Address       string                `json:"address"`
	Phone         string                `json:"phone"`
	Email         string                `json:"email"`
	Requirements  string                `json:"requirements,omitempty"`
	PaymentMethod string                `json:"payment_method"`
	Pricing       bookingDomain.Pricing `json:"pricing"`
	CreatedAt     time.Time             `json:"created_at"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings   int64            `json:"total_bookings"`
	ByPaymentMethod map[string]int64 `json:"by_payment_method"`
}

// PaginatedResult is one page of a listing.
type PaginatedResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginatedResult builds a page, deriving the page count.
func NewPaginatedResult[T any](items []T, total int64, page, limit int) PaginatedResult[T] {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PaginatedResult[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

func toWizardDTO(w *bookingDomain.Wizard) WizardDTO {
	d := w.Draft()

	errs := make(map[string]string)
	for f, msg := range w.Errors() {
		errs[string(f)] = msg
	}

	required := bookingDomain.RequiredFields(w.Step())
	fields := make([]string, len(required))
	for i, f := range required {
		fields[i] = string(f)
	}

	result := WizardDTO{
		ID:             w.ID(),
		State:          w.State(),
		Step:           int(w.Step()),
		StepName:       w.Step().String(),
		StepCount:      bookingDomain.StepCount,
		Status:         string(w.Status()),
		RequiredFields: fields,
		Draft: DraftDTO{
			ServiceID:     d.ServiceID,
			WorkerID:      d.WorkerID,
			Service:       d.Service,
			Worker:        d.Worker,
			Date:          d.Date,
			Time:          d.Time,
			Address:       d.Address,
			Phone:         d.Phone,
			Email:         d.Email,
			Requirements:  d.Requirements,
			PaymentMethod: string(d.PaymentMethod),
		},
		Errors:          errs,
		SubmissionError: w.SubmissionError(),
		BookingID:       w.BookingID(),
		Version:         w.Version(),
		CreatedAt:       w.CreatedAt(),
		UpdatedAt:       w.UpdatedAt(),
	}
	if w.PricingVisible() {
		p := d.Pricing
		result.Pricing = &p
	}
	return result
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:            bk.ID(),
		BookingNumber: bk.BookingNumber(),
		OwnerID:       bk.OwnerID(),
		WizardID:      bk.WizardID(),
		ServiceID:     bk.ServiceID(),
		ServiceName:   bk.ServiceName(),
		WorkerID:      bk.WorkerID(),
		WorkerName:    bk.WorkerName(),
		Date:          bk.Date(),
		Time:          bk.Time(),
		Address:       bk.Address(),
		Phone:         bk.Phone(),
		Email:         bk.Email(),
		Requirements:  bk.Requirements(),
		PaymentMethod: string(bk.PaymentMethod()),
		Pricing:       bk.Pricing(),
		CreatedAt:     bk.CreatedAt(),
	}
}
