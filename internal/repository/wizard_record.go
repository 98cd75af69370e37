package repository

import (
	"fmt"
	"time"

	bookingDomain "github.com/Kilat-Home-Services/service-booking/internal/domain/booking"
	"github.com/google/uuid"
)

// wizardRecord is the stored snapshot of a wizard session.
type wizardRecord struct {
	ID              uuid.UUID           `json:"id"`
	OwnerID         uuid.UUID           `json:"owner_id"`
	Draft           bookingDomain.Draft `json:"draft"`
	Step            int                 `json:"step"`
	Status          string              `json:"status"`
	Errors          map[string]string   `json:"errors,omitempty"`
	SubmissionError string              `json:"submission_error,omitempty"`
	BookingID       string              `json:"booking_id,omitempty"`
	Version         int64               `json:"version"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func toWizardRecord(w *bookingDomain.Wizard) wizardRecord {
	var errs map[string]string
	if fe := w.Errors(); len(fe) > 0 {
		errs = make(map[string]string, len(fe))
		for f, msg := range fe {
			errs[string(f)] = msg
		}
	}
	return wizardRecord{
		ID:              w.ID(),
		OwnerID:         w.OwnerID(),
		Draft:           w.Draft(),
		Step:            int(w.Step()),
		Status:          string(w.Status()),
		Errors:          errs,
		SubmissionError: w.SubmissionError(),
		BookingID:       w.BookingID(),
		Version:         w.Version(),
		CreatedAt:       w.CreatedAt(),
		UpdatedAt:       w.UpdatedAt(),
	}
}

func toDomainWizard(r wizardRecord) (*bookingDomain.Wizard, error) {
	status, err := bookingDomain.ParseWizardStatus(r.Status)
	if err != nil {
		return nil, err
	}
	step := bookingDomain.Step(r.Step)
	if !step.IsValid() {
		return nil, fmt.Errorf("invalid wizard step: %d", r.Step)
	}

	errs := make(bookingDomain.FieldErrors, len(r.Errors))
	for f, msg := range r.Errors {
		errs[bookingDomain.Field(f)] = msg
	}

	return bookingDomain.ReconstructWizard(
		r.ID,
		r.OwnerID,
		r.Draft.Clone(),
		step,
		status,
		errs,
		r.SubmissionError,
		r.BookingID,
		r.Version,
		r.CreatedAt,
		r.UpdatedAt,
	), nil
}
