package booking

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Step is a 0-indexed wizard screen.
type Step int

const (
	StepService Step = iota
	StepProfessional
	StepSchedule
	StepPayment
)

// StepCount is the number of wizard steps.
const StepCount = 4

// LastStep is the step from which the booking is submitted.
const LastStep = StepPayment

var stepNames = [StepCount]string{"service", "professional", "schedule", "payment"}

// String returns the step's name.
func (s Step) String() string {
	if !s.IsValid() {
		return "unknown"
	}
	return stepNames[s]
}

// IsValid reports whether s is within [0, StepCount).
func (s Step) IsValid() bool {
	return s >= 0 && s < StepCount
}

// FieldErrors maps an invalid field to its user-facing message.
type FieldErrors map[Field]string

// Clone returns a copy that shares nothing with fe.
func (fe FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(fe))
	for k, v := range fe {
		out[k] = v
	}
	return out
}

var basicEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// fieldRule checks one field with a validator tag chain. Messages are keyed
// by the tag that failed. Optional rules only bound the value and are left
// out of RequiredFields.
type fieldRule struct {
	field    Field
	value    func(d Draft) string
	tags     string
	messages map[string]string
	optional bool
}


// The max= limits match the bookings table columns.
var stepRules = map[Step][]fieldRule{
	StepService: {
		{
			field:    FieldServiceID,
			value:    Draft.serviceIDValue,
			tags:     "required",
			messages: map[string]string{"required": "Please select a service"},
		},
	},
	StepProfessional: {
		{
			field:    FieldWorkerID,
			value:    Draft.workerIDValue,
			tags:     "required",
			messages: map[string]string{"required": "Please select a professional"},
		},
	},
	StepSchedule: {
		{
			field:    FieldDate,
			value:    func(d Draft) string { return d.Date },
			tags:  "required,max=32",
			messages: map[string]string{
				"required": "Please select a date",
				"max":      "Date must be at most 32 characters",
			},
		},
		{
			field:    FieldTime,
			value:    func(d Draft) string { return d.Time },
			tags:  "required,max=32",
			messages: map[string]string{
				"required": "Please select a time",
				"max":      "Time must be at most 32 characters",
			},
		},
		{
			field:    FieldAddress,
			value:    func(d Draft) string { return d.Address },
			tags:  "required,max=500",
			messages: map[string]string{
				"required": "Address is required",
				"max":      "Address must be at most 500 characters",
			},
		},
		{
			field:    FieldPhone,
			value:    func(d Draft) string { return d.Phone },
			tags:  "required,max=50",
			messages: map[string]string{
				"required": "Phone number is required",
				"max":      "Phone number must be at most 50 characters",
			},
		},
		{
			field: FieldEmail,
			value: func(d Draft) string { return d.Email },
			tags:  "required,max=254,basic_email",
			messages: map[string]string{
				"required":    "Email is required",
				"max":         "Email must be at most 254 characters",
				"basic_email": "Please enter a valid email address",
			},
		},
		{
			field:    FieldRequirements,
			value:    func(d Draft) string { return d.Requirements },
			tags:     "max=2000",
			messages: map[string]string{"max": "Requirements must be at most 2000 characters"},
			optional: true,
		},
	},
	StepPayment: {
		{
			field: FieldPaymentMethod,
			value: func(d Draft) string { return string(d.PaymentMethod) },
			tags:  "required,oneof=online cash",
			messages: map[string]string{
				"required": "Please select a payment method",
				"oneof":    "Please select a valid payment method",
			},
		},
	},
}

// StepValidator evaluates the per-step rule table.
type StepValidator struct {
	v *validator.Validate
}

// NewStepValidator builds a validator with the custom tags registered.
func NewStepValidator() *StepValidator {
	v := validator.New()
	if err := v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return basicEmailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return &StepValidator{v: v}
}

var defaultStepValidator = NewStepValidator()

// ValidateStep returns one message per invalid field of step. The map is
// empty when the step may be left. Values are trimmed before checking, so
// whitespace-only values count as empty. Unknown steps have no rules.
func (sv *StepValidator) ValidateStep(step Step, d Draft) FieldErrors {
	errs := FieldErrors{}
	for _, rule := range stepRules[step] {
		value := strings.TrimSpace(rule.value(d))
		err := sv.v.Var(value, rule.tags)
		if err == nil {
			continue
		}
		errs[rule.field] = rule.message(err)
	}
	return errs
}

func (r fieldRule) message(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := r.messages[verrs[0].Tag()]; ok {
			return msg
		}
	}
	return "Invalid value"
}

// ValidateStep validates step with the shared validator.
func ValidateStep(step Step, d Draft) FieldErrors {
	return defaultStepValidator.ValidateStep(step, d)
}

// ValidateThrough validates every step up to and including last, merging
// the results.
func ValidateThrough(last Step, d Draft) FieldErrors {
	errs := FieldErrors{}
	for s := StepService; s <= last; s++ {
		for f, msg := range ValidateStep(s, d) {
			errs[f] = msg
		}
	}
	return errs
}

// RequiredFields lists the fields the given step checks.
func RequiredFields(step Step) []Field {
	out := []Field{}
	for _, r := range stepRules[step] {
		if !r.optional {
			out = append(out, r.field)
		}
	}
	return out
}
