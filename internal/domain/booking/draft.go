package booking

import (
	"fmt"

	"github.com/Kilat-Home-Services/service-booking/internal/domain/catalog"
)

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCash   PaymentMethod = "cash"
)

// IsValid returns true if the payment method is recognized.
func (p PaymentMethod) IsValid() bool {
	return p == PaymentOnline || p == PaymentCash
}

// Field names a draft field. The same names key FieldErrors.
type Field string

const (
	FieldServiceID     Field = "service_id"
	FieldWorkerID      Field = "worker_id"
	FieldDate          Field = "date"
	FieldTime          Field = "time"
	FieldAddress       Field = "address"
	FieldPhone         Field = "phone"
	FieldEmail         Field = "email"
	FieldRequirements  Field = "requirements"
	FieldPaymentMethod Field = "payment_method"
)

// settableFields are the free-input fields. Service and worker are chosen
// from the catalog instead.
var settableFields = map[Field]struct{}{
	FieldDate:          {},
	FieldTime:          {},
	FieldAddress:       {},
	FieldPhone:         {},
	FieldEmail:         {},
	FieldRequirements:  {},
	FieldPaymentMethod: {},
}

// ParseField converts a client-supplied name into a settable Field.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := settableFields[f]; !ok {
		return "", fmt.Errorf("unknown or read-only field: %s", name)
	}
	return f, nil
}

// ServiceInfo is the denormalized copy of the selected service.
type ServiceInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BasePrice int64  `json:"base_price"`
	Duration  string `json:"duration,omitempty"`
}

// WorkerInfo is the denormalized copy of the selected professional.
type WorkerInfo struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Rating     float64 `json:"rating"`
	HourlyRate int64   `json:"hourly_rate"`
}

// Draft accumulates the customer's selections across wizard steps.
// Pricing is derived and only ever written by recalculation.
type Draft struct {
	ServiceID     *string       `json:"service_id"`
	WorkerID      *string       `json:"worker_id"`
	Service       *ServiceInfo  `json:"service,omitempty"`
	Worker        *WorkerInfo   `json:"worker,omitempty"`
	Date          string        `json:"date"`
	Time          string        `json:"time"`
	Address       string        `json:"address"`
	Phone         string        `json:"phone"`
	Email         string        `json:"email"`
	Requirements  string        `json:"requirements"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Pricing       Pricing       `json:"pricing"`
}

// NewDraft returns an empty draft with the default payment method.
func NewDraft() Draft {
	return Draft{PaymentMethod: PaymentOnline}
}

// Set assigns a free-input field. Values are stored as given; the step
// validator judges them later.
func (d *Draft) Set(field Field, value string) error {
	switch field {
	case FieldDate:
		d.Date = value
	case FieldTime:
		d.Time = value
	case FieldAddress:
		d.Address = value
	case FieldPhone:
		d.Phone = value
	case FieldEmail:
		d.Email = value
	case FieldRequirements:
		d.Requirements = value
	case FieldPaymentMethod:
		d.PaymentMethod = PaymentMethod(value)
	default:
		return fmt.Errorf("unknown or read-only field: %s", field)
	}
	return nil
}

// SelectService records the service and reprices the draft.
func (d *Draft) SelectService(svc catalog.Service, pricing PricingStrategy) {
	id := svc.ID
	d.ServiceID = &id
	d.Service = &ServiceInfo{
		ID:        svc.ID,
		Name:      svc.Name,
		BasePrice: svc.BasePrice,
		Duration:  svc.Duration,
	}
	d.Reprice(pricing)
}

// SelectWorker records the professional and reprices the draft.
func (d *Draft) SelectWorker(pro catalog.Professional, pricing PricingStrategy) {
	id := pro.ID
	d.WorkerID = &id
	d.Worker = &WorkerInfo{
		ID:         pro.ID,
		Name:       pro.Name,
		Rating:     pro.Rating,
		HourlyRate: pro.HourlyRate,
	}
	d.Reprice(pricing)
}

// Reprice recomputes the derived pricing from the selected service.
func (d *Draft) Reprice(pricing PricingStrategy) {
	var base int64
	if d.ServiceID != nil && d.Service != nil {
		base = d.Service.BasePrice
	}
	d.Pricing = pricing.Calculate(PricingParams{BasePrice: base})
}

// Clone returns a deep copy.
func (d Draft) Clone() Draft {
	out := d
	if d.ServiceID != nil {
		id := *d.ServiceID
		out.ServiceID = &id
	}
	if d.WorkerID != nil {
		id := *d.WorkerID
		out.WorkerID = &id
	}
	if d.Service != nil {
		svc := *d.Service
		out.Service = &svc
	}
	if d.Worker != nil {
		w := *d.Worker
		out.Worker = &w
	}
	return out
}

func (d Draft) serviceIDValue() string {
	if d.ServiceID == nil {
		return ""
	}
	return *d.ServiceID
}

func (d Draft) workerIDValue() string {
	if d.WorkerID == nil {
		return ""
	}
	return *d.WorkerID
}
