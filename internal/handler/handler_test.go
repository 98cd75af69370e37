package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Kilat-Home-Services/service-booking/internal/application"
	bookingDomain "github.com/Kilat-Home-Services/service-booking/internal/domain/booking"
	"github.com/Kilat-Home-Services/service-booking/internal/domain/catalog"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/apperr"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/auth"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/middleware"
	"github.com/Kilat-Home-Services/service-booking/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCatalog struct {
	err error
}

var (
	cleaning = catalog.Service{ID: "svc1", Name: "Deep Cleaning", Category: "cleaning", BasePrice: 149, Duration: "3h"}
	ana      = catalog.Professional{ID: "w1", Name: "Ana Costa", Rating: 4.9, Specialties: []string{"cleaning"}}
)

func (f *fakeCatalog) ListServices(ctx context.Context, q catalog.Query) ([]catalog.Service, error) {
	if f.err != nil {
		return nil, f.err
	}
	if q.Category != "" && q.Category != cleaning.Category {
		return nil, nil
	}
	return []catalog.Service{cleaning}, nil
}

func (f *fakeCatalog) GetService(ctx context.Context, id string) (*catalog.Service, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id != cleaning.ID {
		return nil, catalog.ErrNotFound
	}
	svc := cleaning
	return &svc, nil
}

func (f *fakeCatalog) ListProfessionals(ctx context.Context, q catalog.Query) ([]catalog.Professional, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []catalog.Professional{ana}, nil
}

func (f *fakeCatalog) GetProfessional(ctx context.Context, id string) (*catalog.Professional, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id != ana.ID {
		return nil, catalog.ErrNotFound
	}
	p := ana
	return &p, nil
}

type stubSubmitter struct {
	err error
}

func (s stubSubmitter) Submit(ctx context.Context, ownerID, wizardID uuid.UUID, draft bookingDomain.Draft) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "bk-1", nil
}

// memLedger is an in-memory BookingRepository.
type memLedger struct {
	mu       sync.Mutex
	bookings []*bookingDomain.Booking
}

func (m *memLedger) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID() == id {
			return b, nil
		}
	}
	return nil, apperr.NewNotFoundError("Booking", id.String())
}

func (m *memLedger) FindByWizardID(ctx context.Context, wizardID uuid.UUID) (*bookingDomain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.WizardID() == wizardID {
			return b, nil
		}
	}
	return nil, apperr.NewNotFoundError("Booking", wizardID.String())
}

func (m *memLedger) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range m.bookings {
		if b.OwnerID() == ownerID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memLedger) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings, int64(len(m.bookings)), nil
}

func (m *memLedger) CountByPaymentMethod(ctx context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range m.bookings {
		counts[string(b.PaymentMethod())]++
	}
	return counts, nil
}

func (m *memLedger) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, bk)
	return nil
}

type recordingInvalidator struct {
	services []string
}

func (r *recordingInvalidator) InvalidateService(ctx context.Context, id string) error {
	r.services = append(r.services, id)
	return nil
}

func (r *recordingInvalidator) InvalidateProfessional(ctx context.Context, id string) error {
	return nil
}

type testServer struct {
	router  *gin.Engine
	jwt     *auth.JWTManager
	ledger  *memLedger
	invalid *recordingInvalidator
}

type serverOptions struct {
	submitter application.Submitter
	catalog   catalog.Provider
	limiter   *middleware.RateLimiter
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	log := zap.NewNop()
	ledger := &memLedger{}
	if opts.submitter == nil {
		opts.submitter = application.NewLedgerSubmitter(ledger, log)
	}
	if opts.catalog == nil {
		opts.catalog = &fakeCatalog{}
	}

	wizards := application.NewWizardService(
		repository.NewMemoryWizardStore(time.Hour),
		opts.catalog,
		bookingDomain.NewStandardPricingStrategy(),
		opts.submitter,
		nil,
		log,
	)
	ledgerService := application.NewLedgerService(ledger, wizards, log)
	jwtManager := auth.NewJWTManager("test-secret", "kilat-auth", time.Hour)
	invalid := &recordingInvalidator{}

	router := gin.New()
	NewWizardHandler(wizards, opts.limiter, log).RegisterRoutes(&router.RouterGroup, jwtManager)
	NewCatalogHandler(opts.catalog).RegisterRoutes(&router.RouterGroup)
	NewBookingHandler(ledgerService).RegisterRoutes(&router.RouterGroup, jwtManager)
	NewAdminBookingHandler(ledgerService, invalid).RegisterRoutes(&router.RouterGroup, jwtManager)

	return &testServer{router: router, jwt: jwtManager, ledger: ledger, invalid: invalid}
}

func (s *testServer) token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok, err := s.jwt.GenerateAccessToken(userID, role)
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
