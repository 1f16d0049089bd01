package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrScheduledDispatch  = errors.New("scheduled dispatch is not supported")
	ErrEmptyDestination   = errors.New("destination must not be empty")
	ErrChannelUnavailable = errors.New("no channel in the chain accepts this destination")
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}
