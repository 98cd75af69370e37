package booking

import (
	"fmt"
	"time"

	"github.com/Kilat-Home-Services/service-booking/internal/domain/catalog"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/apperr"
	"github.com/google/uuid"
)

// Seed pre-selects catalog entries when a wizard is opened from a deep link.
type Seed struct {
	Service *catalog.Service
	Worker  *catalog.Professional
}

// Wizard is the aggregate root for one in-progress booking session.
type Wizard struct {
	id      uuid.UUID
	ownerID uuid.UUID
	draft   Draft
	step    Step
	status  WizardStatus
	errors  FieldErrors

	submissionError string
	bookingID       string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewWizard opens a session for ownerID. Already-satisfied leading steps are
// skipped: a seeded service starts at the professional step, a seeded service
// and worker at the schedule step. A worker without a service is kept but
// the wizard still starts at the service step.
func NewWizard(ownerID uuid.UUID, seed Seed, pricing PricingStrategy) (*Wizard, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.NewValidationError("owner ID is required")
	}

	draft := NewDraft()
	step := StepService
	if seed.Service != nil {
		draft.SelectService(*seed.Service, pricing)
		step = StepProfessional
	}
	if seed.Worker != nil {
		draft.SelectWorker(*seed.Worker, pricing)
		if seed.Service != nil {
			step = StepSchedule
		}
	}

	now := time.Now().UTC()
	return &Wizard{
		id:        uuid.New(),
		ownerID:   ownerID,
		draft:     draft,
		step:      step,
		status:    StatusEditing,
		errors:    FieldErrors{},
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructWizard rebuilds a Wizard from persistence data (no validation).
func ReconstructWizard(
	id uuid.UUID,
	ownerID uuid.UUID,
	draft Draft,
	step Step,
	status WizardStatus,
	errors FieldErrors,
	submissionError string,
	bookingID string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Wizard {
	if errors == nil {
		errors = FieldErrors{}
	}
	return &Wizard{
		id:              id,
		ownerID:         ownerID,
		draft:           draft,
		step:            step,
		status:          status,
		errors:          errors,
		submissionError: submissionError,
		bookingID:       bookingID,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the session identifier.
func (w *Wizard) ID() uuid.UUID { return w.id }

// OwnerID returns the customer who owns the session.
func (w *Wizard) OwnerID() uuid.UUID { return w.ownerID }

// Draft returns a copy of the draft.
func (w *Wizard) Draft() Draft { return w.draft.Clone() }

// Step returns the current step index.
func (w *Wizard) Step() Step { return w.step }

// Status returns the current phase.
func (w *Wizard) Status() WizardStatus { return w.status }

// Errors returns a copy of the field errors of the last validation.
func (w *Wizard) Errors() FieldErrors { return w.errors.Clone() }

// SubmissionError returns the banner message of the last failed submission.
func (w *Wizard) SubmissionError() string { return w.submissionError }

// BookingID returns the identifier assigned by the submission API.
func (w *Wizard) BookingID() string { return w.bookingID }

// Version returns the entity version for optimistic locking.
func (w *Wizard) Version() int64 { return w.version }

// CreatedAt returns the creation timestamp.
func (w *Wizard) CreatedAt() time.Time { return w.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (w *Wizard) UpdatedAt() time.Time { return w.updatedAt }

// State returns the externally visible state: step_0..step_3 while editing,
// otherwise the status name.
func (w *Wizard) State() string {
	if w.status == StatusEditing {
		return fmt.Sprintf("step_%d", w.step)
	}
	return string(w.status)
}

// PricingVisible reports whether pricing may be shown. It is hidden until the
// service step is behind the customer.
func (w *Wizard) PricingVisible() bool {
	return w.step > StepService && w.draft.ServiceID != nil
}

// IsOwnedBy checks if the session belongs to the given user.
func (w *Wizard) IsOwnedBy(userID uuid.UUID) bool {
	return w.ownerID == userID
}

// --- Behavior ---

// SetField assigns a free-input field and clears its error.
func (w *Wizard) SetField(field Field, value string) error {
	if err := w.requireInput(); err != nil {
		return err
	}
	if err := w.draft.Set(field, value); err != nil {
		return apperr.NewValidationError(err.Error())
	}
	delete(w.errors, field)
	w.touch()
	return nil
}

// SelectService selects the service and reprices the draft.
func (w *Wizard) SelectService(svc catalog.Service, pricing PricingStrategy) error {
	if err := w.requireInput(); err != nil {
		return err
	}
	if svc.ID == "" {
		return apperr.NewValidationError("service ID is required")
	}
	w.draft.SelectService(svc, pricing)
	delete(w.errors, FieldServiceID)
	w.touch()
	return nil
}

// SelectWorker selects the professional and reprices the draft.
func (w *Wizard) SelectWorker(pro catalog.Professional, pricing PricingStrategy) error {
	if err := w.requireInput(); err != nil {
		return err
	}
	if pro.ID == "" {
		return apperr.NewValidationError("worker ID is required")
	}
	w.draft.SelectWorker(pro, pricing)
	delete(w.errors, FieldWorkerID)
	w.touch()
	return nil
}

// Next validates the current step and advances when it has no errors. It
// reports whether the step changed; a validation failure is not an error.
func (w *Wizard) Next() (bool, error) {
	if w.status != StatusEditing {
		return false, apperr.NewInvalidStateError(w.State(), "next step")
	}
	if w.step >= LastStep {
		return false, apperr.NewInvalidStateError(w.State(), "next step")
	}

	w.errors = ValidateStep(w.step, w.draft)
	w.touch()
	if len(w.errors) > 0 {
		return false, nil
	}
	w.step++
	return true, nil
}

// Back moves one step backward without validation. It is a no-op on the
// first step. Leaving a failed submission drops the banner.
func (w *Wizard) Back() error {
	switch w.status {
	case StatusEditing:
	case StatusSubmissionFailed:
		w.status = StatusEditing
		w.submissionError = ""
	default:
		return apperr.NewInvalidStateError(w.State(), "previous step")
	}

	if w.step > StepService {
		w.step--
	}
	w.errors = FieldErrors{}
	w.touch()
	return nil
}

// BeginSubmit moves the wizard into submitting when every step validates.
// It reports whether submission may proceed; validation failures populate
// Errors and leave the state unchanged.
func (w *Wizard) BeginSubmit() (bool, error) {
	if w.step != LastStep || !w.status.CanTransitionTo(StatusSubmitting) {
		return false, apperr.NewInvalidStateError(w.State(), string(StatusSubmitting))
	}

	errs := ValidateThrough(LastStep, w.draft)
	w.touch()
	if len(errs) > 0 {
		w.errors = errs
		return false, nil
	}

	w.errors = FieldErrors{}
	w.status = StatusSubmitting
	return true, nil
}

// MarkSubmitted records a successful submission.
func (w *Wizard) MarkSubmitted(bookingID string) error {
	if !w.status.CanTransitionTo(StatusSubmitted) {
		return apperr.NewInvalidStateError(w.State(), string(StatusSubmitted))
	}
	w.status = StatusSubmitted
	w.bookingID = bookingID
	w.submissionError = ""
	w.touch()
	return nil
}

// MarkSubmissionFailed records a failed submission. The draft is untouched so
// the customer can retry.
func (w *Wizard) MarkSubmissionFailed(message string) error {
	if !w.status.CanTransitionTo(StatusSubmissionFailed) {
		return apperr.NewInvalidStateError(w.State(), string(StatusSubmissionFailed))
	}
	w.status = StatusSubmissionFailed
	w.submissionError = message
	w.touch()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (w *Wizard) IncrementVersion() {
	w.version++
	w.updatedAt = time.Now().UTC()
}

func (w *Wizard) requireInput() error {
	if !w.status.AcceptsInput() {
		return apperr.NewInvalidStateError(w.State(), "edit draft")
	}
	return nil
}

func (w *Wizard) touch() {
	w.updatedAt = time.Now().UTC()
}
