package apperrors

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy

var (
	// ErrPlanning indicates the query planner could not produce questions or queries
	ErrPlanning = errors.New("planning failed")

	// ErrAcquisition indicates an article could not be downloaded or parsed
	ErrAcquisition = errors.New("article acquisition failed")

	// ErrDateUnknown indicates no publication date could be resolved
	ErrDateUnknown = errors.New("published date unknown")

	// ErrClassification indicates an article could not be scored
	ErrClassification = errors.New("classification failed")

	// ErrSynthesis indicates the analysis agent roster could not be built
	ErrSynthesis = errors.New("agent synthesis failed")

	// ErrAnalysis indicates an agent failed to analyze an article
	ErrAnalysis = errors.New("article analysis failed")

	// ErrSummary indicates the summary could not be produced
	ErrSummary = errors.New("summary failed")
)

// Collaborator errors

var (
	// ErrMalformedResponse indicates a completion could not be coerced to the expected shape
	ErrMalformedResponse = errors.New("malformed completion response")

	// ErrDuplicate indicates a unique key already exists in storage
	ErrDuplicate = errors.New("duplicate record")

	// ErrPersistence indicates a storage write failed
	ErrPersistence = errors.New("persistence failed")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrExternal indicates a remote service answered with an error
	ErrExternal = errors.New("external service error")
)

// SubjectError reports a fatal failure of one subject's run.
type SubjectError struct {
	Subject string
	Err     error
}

func (e *SubjectError) Error() string {
	return fmt.Sprintf("subject %q: %v", e.Subject, e.Err)
}

func (e *SubjectError) Unwrap() error {
	return e.Err
}

// MultiError wraps multiple errors
type MultiError struct {
	Errors []error
}

// Error implements the error interface
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("multiple errors (%d): %v", len(m.Errors), m.Errors[0])
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add adds an error to the list
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// ToError returns the MultiError as an error, or nil if no errors
func (m *MultiError) ToError() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Mark tags err with a taxonomy sentinel and context. Both kind and err stay
// visible to errors.Is.
func Mark(kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", kind, fmt.Sprintf(format, args...), err)
}
