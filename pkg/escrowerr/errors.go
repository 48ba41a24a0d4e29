// Package escrowerr defines the typed errors returned by the escrow service.
package escrowerr

import (
	"errors"
	"fmt"
)

// ValidationError is returned when a request or a payment-method policy check is rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NotFoundError is returned when an escrow, order, or account does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// AuthorizationError is returned when the actor may not act on the resource.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: " + e.Reason
}

// StateConflictError is returned when a transition is illegal, or a concurrent writer won the race.
type StateConflictError struct {
	From   string
	To     string
	Reason string
}

// Error leaves out whichever side of the transition is unknown.
func (e *StateConflictError) Error() string {
	msg := "state conflict"
	switch {
	case e.From != "" && e.To != "":
		msg += fmt.Sprintf(" %s -> %s", e.From, e.To)
	case e.To != "":
		msg += " -> " + e.To
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// ExternalServiceError wraps a failure of a collaborator such as the payment gateway.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// ConfigurationError is returned when the service is wired inconsistently, e.g. an unknown payment method.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Validation builds a ValidationError with a formatted reason.
func Validation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Unauthorized builds an AuthorizationError with a formatted reason.
func Unauthorized(format string, args ...any) error {
	return &AuthorizationError{Reason: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsAuthorization(err error) bool {
	var target *AuthorizationError
	return errors.As(err, &target)
}

func IsStateConflict(err error) bool {
	var target *StateConflictError
	return errors.As(err, &target)
}

func IsExternalService(err error) bool {
	var target *ExternalServiceError
	return errors.As(err, &target)
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
