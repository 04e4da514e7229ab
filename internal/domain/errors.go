package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is wrapped by every ValidationError
	ErrValidation = errors.New("validation error")

	// ErrFollowUpAlreadyScheduled is returned when a follow up for the date already exists
	ErrFollowUpAlreadyScheduled = errors.New("follow up already scheduled")

	// ErrInvalidPartyType is returned for party types other than Lead
	ErrInvalidPartyType = errors.New("invalid party type")

	// ErrSlotUnavailable is the kind of a raised double booking or full slot
	ErrSlotUnavailable = errors.New("time slot unavailable")
)

// ValidationError is a user facing message produced by a business rule.
// Kind optionally narrows the failure for callers that map it to a different response.
type ValidationError struct {
	Message string
	Kind    error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() []error {
	if e.Kind != nil {
		return []error{ErrValidation, e.Kind}
	}
	return []error{ErrValidation}
}

// Invalid builds a ValidationError from a format string
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ValidationMessage extracts the user facing message, falling back to err.Error()
func ValidationMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

// Warnings collects soft validation messages.
// A rule reported with raise=true becomes a ValidationError instead.
type Warnings []string

// Report records msg as a warning, or returns it as an error when raise is set
func (w *Warnings) Report(raise bool, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if raise {
		return &ValidationError{Message: msg}
	}
	*w = append(*w, msg)
	return nil
}

// ReportKind is Report with a Kind attached to the raised error
func (w *Warnings) ReportKind(raise bool, kind error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if raise {
		return &ValidationError{Message: msg, Kind: kind}
	}
	*w = append(*w, msg)
	return nil
}

func (w Warnings) String() string {
	return strings.Join(w, "; ")
}
