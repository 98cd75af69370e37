package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Kilat-Home-Services/service-booking/internal/domain/booking"
	"github.com/Kilat-Home-Services/service-booking/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogClient_ListServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/services", r.URL.Path)
		assert.Equal(t, "clean", r.URL.Query().Get("q"))
		assert.Equal(t, "home", r.URL.Query().Get("category"))
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		_, _ = w.Write([]byte(`[{"id":"svc1","name":"Deep Cleaning","base_price":149,"duration":"3h","includes":["kitchen"]}]`))
	}))
	defer srv.Close()

	c := NewCatalogClient(srv.URL+"/v1/", "secret", time.Second)
	out, err := c.ListServices(context.Background(), catalog.Query{Text: "clean", Category: "home"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "svc1", out[0].ID)
	assert.Equal(t, int64(149), out[0].BasePrice)
	assert.Equal(t, []string{"kitchen"}, out[0].Includes)
}

func TestCatalogClient_ListProfessionalsUsesSpecialty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/professionals", r.URL.Path)
		assert.Equal(t, "plumbing", r.URL.Query().Get("specialty"))
		assert.Empty(t, r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{"id":"w1","name":"Ana","rating":4.9,"hourly_rate":35,"specialties":["plumbing"]}]`))
	}))
	defer srv.Close()

	out, err := NewCatalogClient(srv.URL, "", 0).ListProfessionals(context.Background(), catalog.Query{Category: "plumbing"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Offers("plumbing"))
}

func TestCatalogClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewCatalogClient(srv.URL, "", time.Second)
	_, err := c.GetService(context.Background(), "nope")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = c.GetProfessional(context.Background(), "nope")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCatalogClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream down"}`))
	}))
	defer srv.Close()

	_, err := NewCatalogClient(srv.URL, "", time.Second).GetService(context.Background(), "svc1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, catalog.ErrNotFound))
	assert.Contains(t, err.Error(), "upstream down")
}

func submittableDraft() booking.Draft {
	d := booking.NewDraft()
	strategy := booking.NewStandardPricingStrategy()
	d.SelectService(catalog.Service{ID: "svc1", Name: "Deep Cleaning", BasePrice: 149}, strategy)
	d.SelectWorker(catalog.Professional{ID: "w1", Name: "Ana"}, strategy)
	d.Date = "2026-11-02"
	d.Time = "09:00"
	d.Address = "12 Rua Augusta"
	d.Phone = "912345678"
	d.Email = "ana@example.com"
	return d
}

func TestBookingClient_Submit(t *testing.T) {
	ownerID, wizardID := uuid.New(), uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bookings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body submitBookingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "svc1", body.ServiceID)
		assert.Equal(t, "w1", body.WorkerID)
		assert.Equal(t, "online", body.PaymentMethod)
		assert.Equal(t, int64(164), body.TotalAmount)
		assert.Equal(t, ownerID.String(), body.CustomerID)
		assert.Equal(t, wizardID.String(), body.ReferenceID)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"bk-42"}`))
	}))
	defer srv.Close()

	id, err := NewBookingClient(srv.URL, "", time.Second).Submit(context.Background(), ownerID, wizardID, submittableDraft())
	require.NoError(t, err)
	assert.Equal(t, "bk-42", id)
}

func TestBookingClient_SubmitEnvelopedID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"bk-7"}}`))
	}))
	defer srv.Close()

	id, err := NewBookingClient(srv.URL, "", time.Second).Submit(context.Background(), uuid.New(), uuid.New(), submittableDraft())
	require.NoError(t, err)
	assert.Equal(t, "bk-7", id)
}

func TestBookingClient_SubmitRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"card declined"}`, "card declined"},
		{"error string", `{"error":"card declined"}`, "card declined"},
		{"error object", `{"success":false,"error":{"code":"PAYMENT","message":"card declined"}}`, "card declined"},
		{"plain text", `card declined`, "card declined"},
		{"empty body", ``, "Payment Required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusPaymentRequired)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewBookingClient(srv.URL, "", time.Second).Submit(context.Background(), uuid.New(), uuid.New(), submittableDraft())
			var rejected *SubmissionRejectedError
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, http.StatusPaymentRequired, rejected.Status)
			assert.Equal(t, tt.want, rejected.Message)
		})
	}
}

func TestBookingClient_SubmitServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewBookingClient(srv.URL, "", time.Second).Submit(context.Background(), uuid.New(), uuid.New(), submittableDraft())
	require.Error(t, err)
	var rejected *SubmissionRejectedError
	assert.False(t, errors.As(err, &rejected))
}

func TestBookingClient_SubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewBookingClient(srv.URL, "", time.Second).Submit(context.Background(), uuid.New(), uuid.New(), submittableDraft())
	require.Error(t, err)
}

func TestBookingClient_SubmitIncompleteDraft(t *testing.T) {
	_, err := NewBookingClient("http://unused", "", time.Second).Submit(context.Background(), uuid.New(), uuid.New(), booking.NewDraft())
	assert.Error(t, err)
}
