package domain

import dErrors "civicpulse/pkg/domain-errors"

// Status is the triage state of a report.
//
// All statuses are mutually reachable: moderators may re-open resolved reports,
// so there is no terminal state and no forward-only ordering.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusResolved Status = "resolved"
)

var validStatuses = map[Status]bool{
	StatusPending:  true,
	StatusReviewed: true,
	StatusResolved: true,
}

// ParseStatus constructs a Status from external input.
//
// Errors: returns CodeValidation when the value is empty or unsupported.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "status cannot be empty")
	}
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid status")
	}
	return st, nil
}

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// Statuses returns all supported statuses in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusReviewed, StatusResolved}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}
