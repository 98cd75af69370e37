package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	bookingDomain "github.com/Kilat-Home-Services/service-booking/internal/domain/booking"
	"github.com/Kilat-Home-Services/service-booking/internal/domain/catalog"
	"github.com/Kilat-Home-Services/service-booking/internal/events"
	"github.com/Kilat-Home-Services/service-booking/internal/gateway"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/apperr"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenericSubmissionError is the banner shown for failures that carry no
// customer-facing message.
const GenericSubmissionError = "booking failed, please try again"

const eventSource = "service-booking"

// Submitter hands a completed draft to the booking backend and returns the
// created booking identifier.
type Submitter interface {
	Submit(ctx context.Context, ownerID, wizardID uuid.UUID, draft bookingDomain.Draft) (string, error)
}

// EventPublisher publishes CloudEvents. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// StartRequest holds the deep-link parameters of a new wizard. Fields are
// applied after seeding.
type StartRequest struct {
	ServiceID string
	WorkerID  string
	Fields    map[string]string
}

// WizardService is the application service orchestrating the booking wizard.
type WizardService struct {
	repo      bookingDomain.WizardRepository
	catalog   catalog.Provider
	pricing   bookingDomain.PricingStrategy
	submitter Submitter
	publisher EventPublisher
	logger    *zap.Logger
}

// NewWizardService creates a new WizardService. publisher may be nil.
func NewWizardService(
	repo bookingDomain.WizardRepository,
	catalogProvider catalog.Provider,
	pricing bookingDomain.PricingStrategy,
	submitter Submitter,
	publisher EventPublisher,
	logger *zap.Logger,
) *WizardService {
	return &WizardService{
		repo:      repo,
		catalog:   catalogProvider,
		pricing:   pricing,
		submitter: submitter,
		publisher: publisher,
		logger:    logger,
	}
}

// Start opens a wizard for ownerID. Deep-link ids unknown to the catalog are
// dropped and the wizard starts at the first unsatisfied step.
func (s *WizardService) Start(ctx context.Context, ownerID uuid.UUID, req StartRequest) (*WizardDTO, error) {
	var seed bookingDomain.Seed

	if req.ServiceID != "" {
		svc, err := s.catalog.GetService(ctx, req.ServiceID)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			s.logger.Info("dropping unknown deep-link service", zap.String("service_id", req.ServiceID))
		case err != nil:
			return nil, apperr.NewUnavailableError("catalog is unavailable", err)
		default:
			seed.Service = svc
		}
	}
	if req.WorkerID != "" {
		pro, err := s.catalog.GetProfessional(ctx, req.WorkerID)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			s.logger.Info("dropping unknown deep-link professional", zap.String("worker_id", req.WorkerID))
		case err != nil:
			return nil, apperr.NewUnavailableError("catalog is unavailable", err)
		default:
			seed.Worker = pro
		}
	}

	w, err := bookingDomain.NewWizard(ownerID, seed, s.pricing)
	if err != nil {
		return nil, err
	}
	if err := applyFields(w, req.Fields); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to save wizard: %w", err)
	}

	s.logger.Info("wizard started",
		zap.String("wizard_id", w.ID().String()),
		zap.String("owner_id", ownerID.String()),
		zap.Int("step", int(w.Step())),
	)

	result := toWizardDTO(w)
	return &result, nil
}

// GetWizard returns the current state of a session.
func (s *WizardService) GetWizard(ctx context.Context, ownerID, wizardID uuid.UUID) (*WizardDTO, error) {
	w, err := s.load(ctx, ownerID, wizardID)
	if err != nil {
		return nil, err
	}
	result := toWizardDTO(w)
	return &result, nil
}

// SetFields assigns free-input fields. Either every field is applied or none.
func (s *WizardService) SetFields(ctx context.Context, ownerID, wizardID uuid.UUID, fields map[string]string) (*WizardDTO, error) {
	if len(fields) == 0 {
		return nil, apperr.NewValidationError("no fields given")
	}
	return s.mutate(ctx, ownerID, wizardID, func(w *bookingDomain.Wizard) error {
		return applyFields(w, fields)
	})
}

// SelectService selects a catalog service.
func (s *WizardService) SelectService(ctx context.Context, ownerID, wizardID uuid.UUID, serviceID string) (*WizardDTO, error) {
	svc, err := s.catalog.GetService(ctx, serviceID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, apperr.NewValidationError(fmt.Sprintf("unknown service: %s", serviceID))
	}
	if err != nil {
		return nil, apperr.NewUnavailableError("catalog is unavailable", err)
	}
	return s.mutate(ctx, ownerID, wizardID, func(w *bookingDomain.Wizard) error {
		return w.SelectService(*svc, s.pricing)
	})
}

// SelectWorker selects a catalog professional.
func (s *WizardService) SelectWorker(ctx context.Context, ownerID, wizardID uuid.UUID, workerID string) (*WizardDTO, error) {
	pro, err := s.catalog.GetProfessional(ctx, workerID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, apperr.NewValidationError(fmt.Sprintf("unknown professional: %s", workerID))
	}
	if err != nil {
		return nil, apperr.NewUnavailableError("catalog is unavailable", err)
	}
	return s.mutate(ctx, ownerID, wizardID, func(w *bookingDomain.Wizard) error {
		return w.SelectWorker(*pro, s.pricing)
	})
}

// Next validates the current step and advances when it is valid. Validation
// failures are reported in the returned wizard's errors.
func (s *WizardService) Next(ctx context.Context, ownerID, wizardID uuid.UUID) (*WizardDTO, error) {
	return s.mutate(ctx, ownerID, wizardID, func(w *bookingDomain.Wizard) error {
		_, err := w.Next()
		return err
	})
}

// Back moves to the previous step.
func (s *WizardService) Back(ctx context.Context, ownerID, wizardID uuid.UUID) (*WizardDTO, error) {
	return s.mutate(ctx, ownerID, wizardID, func(w *bookingDomain.Wizard) error {
		return w.Back()
	})
}

// Submit hands the draft to the booking backend. The submitting state is
// persisted before the call so a concurrent submit of the same session is
// rejected. Backend failures never surface as errors: they become the
// wizard's submission banner and the draft is kept for a retry.
func (s *WizardService) Submit(ctx context.Context, ownerID, wizardID uuid.UUID) (*SubmitResultDTO, error) {
	w, err := s.load(ctx, ownerID, wizardID)
	if err != nil {
		return nil, err
	}

	ok, err := w.BeginSubmit()
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, w); err != nil {
		return nil, err
	}
	if !ok {
		dto := toWizardDTO(w)
		return &SubmitResultDTO{Wizard: &dto}, nil
	}

	// Once submitting, the outcome is recorded even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	bookingID, submitErr := s.submitter.Submit(ctx, w.OwnerID(), w.ID(), w.Draft())
	if submitErr != nil {
		return s.recordFailure(ctx, w, submitErr)
	}

	if err := w.MarkSubmitted(bookingID); err != nil {
		return nil, err
	}
	s.publishSubmitted(ctx, w)

	if err := s.repo.Delete(ctx, w.ID()); err != nil {
		s.logger.Warn("failed to discard submitted wizard, keeping it as submitted",
			zap.String("wizard_id", w.ID().String()),
			zap.Error(err),
		)
		// The booking exists; the stored session must not stay in submitting.
		if err := s.persistOutcome(ctx, w); err != nil {
			s.logger.Error("failed to persist submitted wizard",
				zap.String("wizard_id", w.ID().String()),
				zap.String("booking_id", bookingID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("wizard submitted",
		zap.String("wizard_id", w.ID().String()),
		zap.String("booking_id", bookingID),
	)

	dto := toWizardDTO(w)
	return &SubmitResultDTO{Submitted: true, BookingID: bookingID, Wizard: &dto}, nil
}

// Abandon discards a session. A submission in flight cannot be abandoned.
func (s *WizardService) Abandon(ctx context.Context, ownerID, wizardID uuid.UUID) error {
	w, err := s.load(ctx, ownerID, wizardID)
	if err != nil {
		return err
	}
	if w.Status() == bookingDomain.StatusSubmitting {
		return apperr.NewInvalidStateError(w.State(), "abandoned")
	}
	if err := s.repo.Delete(ctx, w.ID()); err != nil {
		return fmt.Errorf("failed to delete wizard: %w", err)
	}
	return nil
}

func (s *WizardService) recordFailure(ctx context.Context, w *bookingDomain.Wizard, submitErr error) (*SubmitResultDTO, error) {
	message := submissionMessage(submitErr)
	s.logger.Warn("wizard submission failed",
		zap.String("wizard_id", w.ID().String()),
		zap.String("banner", message),
		zap.Error(submitErr),
	)

	if err := w.MarkSubmissionFailed(message); err != nil {
		return nil, err
	}
	if err := s.persistOutcome(ctx, w); err != nil {
		// The caller still gets the banner; the stored session stays in
		// submitting until its TTL runs out.
		s.logger.Error("failed to persist submission failure",
			zap.String("wizard_id", w.ID().String()),
			zap.Error(err),
		)
	}

	evt := events.WizardSubmissionFailedEvent{
		WizardID:   w.ID(),
		OwnerID:    w.OwnerID(),
		Reason:     submitErr.Error(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.WizardSubmissionFailed, w.ID().String(), evt)

	dto := toWizardDTO(w)
	return &SubmitResultDTO{Wizard: &dto}, nil
}

// submissionMessage picks the banner text for a failed submission.
func submissionMessage(err error) string {
	var rejected *gateway.SubmissionRejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	var appErr *apperr.AppError
	if errors.As(err, &appErr) && appErr.Code == apperr.CodeValidation {
		return appErr.Message
	}
	return GenericSubmissionError
}

// mutate loads a session, applies fn, and persists the result.
func (s *WizardService) mutate(ctx context.Context, ownerID, wizardID uuid.UUID, fn func(w *bookingDomain.Wizard) error) (*WizardDTO, error) {
	w, err := s.load(ctx, ownerID, wizardID)
	if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	if err := s.save(ctx, w); err != nil {
		return nil, err
	}
	result := toWizardDTO(w)
	return &result, nil
}

func (s *WizardService) load(ctx context.Context, ownerID, wizardID uuid.UUID) (*bookingDomain.Wizard, error) {
	w, err := s.repo.FindByID(ctx, wizardID)
	if err != nil {
		return nil, err
	}
	if !w.IsOwnedBy(ownerID) {
		return nil, apperr.NewForbiddenError("wizard does not belong to this user")
	}
	return w, nil
}

func (s *WizardService) save(ctx context.Context, w *bookingDomain.Wizard) error {
	w.IncrementVersion()
	return s.repo.Update(ctx, w)
}

// persistOutcome stores the result of a submitter call. The call cannot be
// undone, so a failed write is retried once at the same version.
func (s *WizardService) persistOutcome(ctx context.Context, w *bookingDomain.Wizard) error {
	if err := s.save(ctx, w); err == nil {
		return nil
	}
	return s.repo.Update(ctx, w)
}

// applyFields validates every name before assigning anything.
func applyFields(w *bookingDomain.Wizard, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, err := bookingDomain.ParseField(name); err != nil {
			return apperr.NewValidationError(err.Error())
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := w.SetField(bookingDomain.Field(name), fields[name]); err != nil {
			return err
		}
	}
	return nil
}

func (s *WizardService) publishSubmitted(ctx context.Context, w *bookingDomain.Wizard) {
	d := w.Draft()
	evt := events.WizardSubmittedEvent{
		WizardID:      w.ID(),
		OwnerID:       w.OwnerID(),
		BookingID:     w.BookingID(),
		Date:          d.Date,
		Time:          d.Time,
		PaymentMethod: string(d.PaymentMethod),
		TotalAmount:   d.Pricing.TotalAmount,
		OccurredAt:    time.Now().UTC(),
	}
	if d.ServiceID != nil {
		evt.ServiceID = *d.ServiceID
	}
	if d.WorkerID != nil {
		evt.WorkerID = *d.WorkerID
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.WizardSubmitted, w.ID().String(), evt)
}

func (s *WizardService) publishEvent(ctx context.Context, topic, eventType, subject string, data interface{}) {
	if s.publisher == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, topic, cloudEvent.WithSubject(subject)); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
