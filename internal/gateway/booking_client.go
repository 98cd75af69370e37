package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Kilat-Home-Services/service-booking/internal/domain/booking"
	"github.com/google/uuid"
)

// SubmissionRejectedError is returned when the booking API refuses a draft.
// Message is safe to show to the customer.
type SubmissionRejectedError struct {
	Status  int
	Message string
}

func (e *SubmissionRejectedError) Error() string {
	return fmt.Sprintf("booking rejected (status %d): %s", e.Status, e.Message)
}

// submitBookingRequest is the body of POST /bookings.
type submitBookingRequest struct {
	ServiceID     string `json:"service_id"`
	WorkerID      string `json:"worker_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Requirements  string `json:"requirements"`
	PaymentMethod string `json:"payment_method"`
	TotalAmount   int64  `json:"total_amount"`
	CustomerID    string `json:"customer_id"`
	ReferenceID   string `json:"reference_id"`
}

type submitBookingResponse struct {
	ID   string `json:"id"`
	Data *struct {
		ID string `json:"id"`
	} `json:"data,omitempty"`
}

// BookingClient hands completed drafts to the Booking Submission API.
type BookingClient struct {
	rest restClient
}

// NewBookingClient creates a BookingClient for the API rooted at baseURL.
func NewBookingClient(baseURL, apiKey string, timeout time.Duration) *BookingClient {
	return &BookingClient{rest: newRESTClient(baseURL, apiKey, timeout)}
}

// Submit posts the draft and returns the created booking identifier. The
// wizard id is sent as reference_id so the API can deduplicate retries.
func (c *BookingClient) Submit(ctx context.Context, ownerID, wizardID uuid.UUID, draft booking.Draft) (string, error) {
	if draft.ServiceID == nil || draft.WorkerID == nil {
		return "", errors.New("booking api: draft has no service or worker")
	}

	body := submitBookingRequest{
		ServiceID:     *draft.ServiceID,
		WorkerID:      *draft.WorkerID,
		Date:          draft.Date,
		Time:          draft.Time,
		Address:       draft.Address,
		Phone:         draft.Phone,
		Email:         draft.Email,
		Requirements:  draft.Requirements,
		PaymentMethod: string(draft.PaymentMethod),
		TotalAmount:   draft.Pricing.TotalAmount,
		CustomerID:    ownerID.String(),
		ReferenceID:   wizardID.String(),
	}

	resp, err := c.rest.do(ctx, http.MethodPost, "/bookings", body)
	if err != nil {
		return "", fmt.Errorf("booking api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("booking api: status=%d: %s", resp.StatusCode, readErrorMessage(resp))
	}
	if !isSuccess(resp.StatusCode) {
		return "", &SubmissionRejectedError{Status: resp.StatusCode, Message: readErrorMessage(resp)}
	}

	var out submitBookingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("booking api: decode response: %w", err)
	}
	id := strings.TrimSpace(out.ID)
	if id == "" && out.Data != nil {
		id = strings.TrimSpace(out.Data.ID)
	}
	if id == "" {
		return "", errors.New("booking api: response has no booking id")
	}
	return id, nil
}
