package services

import (
	"errors"

	"survey/internal/pkg/limiter"
)

var (
	ErrInvalidSubmission   = errors.New("invalid submission")
	ErrInvalidQuery        = errors.New("invalid query")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrSurveyNotStarted    = errors.New("survey not started yet")
	ErrSurveyEnded         = errors.New("survey ended")
	ErrRateLimited         = limiter.ErrRateLimited
)

// ValidationError is a client mistake whose message is safe to show as is.
type ValidationError struct {
	Field   string
	Message string
	kind    error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == e.kind
}

func invalidSubmission(field, message string) error {
	return &ValidationError{Field: field, Message: message, kind: ErrInvalidSubmission}
}

func invalidQuery(field, message string) error {
	return &ValidationError{Field: field, Message: message, kind: ErrInvalidQuery}
}
