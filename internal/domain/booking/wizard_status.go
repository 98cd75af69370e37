package booking

import "fmt"

// WizardStatus represents the phase of a wizard session. While editing, the
// current step carries the rest of the state.
type WizardStatus string

const (
	StatusEditing          WizardStatus = "editing"
	StatusSubmitting       WizardStatus = "submitting"
	StatusSubmitted        WizardStatus = "submitted"
	StatusSubmissionFailed WizardStatus = "submission_failed"
)

// validTransitions defines the state machine for wizard status transitions.
var validTransitions = map[WizardStatus][]WizardStatus{
	StatusEditing:          {StatusSubmitting},
	StatusSubmitting:       {StatusSubmitted, StatusSubmissionFailed},
	StatusSubmissionFailed: {StatusSubmitting, StatusEditing},
	StatusSubmitted:        {},
}

// IsValid returns true if the status is a recognized wizard status.
func (s WizardStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s WizardStatus) CanTransitionTo(target WizardStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s WizardStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// AcceptsInput returns true if the draft may be edited in this status.
func (s WizardStatus) AcceptsInput() bool {
	return s == StatusEditing || s == StatusSubmissionFailed
}

// String returns the string representation of the status.
func (s WizardStatus) String() string {
	return string(s)
}

// ParseWizardStatus converts a string to a WizardStatus, returning an error if invalid.
func ParseWizardStatus(s string) (WizardStatus, error) {
	status := WizardStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid wizard status: %s", s)
	}
	return status, nil
}
