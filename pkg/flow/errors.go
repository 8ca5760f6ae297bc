package flow

import (
	"errors"
	"fmt"

	"github.com/boostdesk/ticket-bot/pkg/action"
)

var (
	// ErrSessionNotFound indicates the user has no flow in progress, either
	// because it was never started or because it expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrWrongStep indicates an input that is not accepted at the flow's current step.
	ErrWrongStep = errors.New("input not accepted at current step")

	// ErrCategoryMismatch indicates details for a different category than the flow's.
	ErrCategoryMismatch = errors.New("input does not match order category")

	// ErrAlreadyProcessing indicates a confirmation while a previous one is still running.
	ErrAlreadyProcessing = errors.New("order is already being processed")

	// ErrPricingFailed indicates an unexpected pricing failure for validated input.
	ErrPricingFailed = errors.New("price calculation failed")

	// ErrUnknownInput indicates an Input type the controller does not handle.
	ErrUnknownInput = errors.New("unknown input")
)

// ValidationError is a rejected user input. Message is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ProvisioningError wraps a failed ticket hand-off. The flow is kept so the
// user can confirm again.
type ProvisioningError struct {
	Err error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("ticket provisioning failed: %v", e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

const (
	msgSessionNotFound  = "Session data not found. Please try again."
	msgWrongStep        = "This step is no longer available. Please start a new order."
	msgAlreadyRunning   = "Your ticket is already being created, please wait."
	msgPricingFailed    = "Invalid price calculation. Please try again or contact support."
	msgProvisioning     = "We could not create your ticket. Please press confirm again or contact support."
	msgGenericFailure   = "Something went wrong. Please try again or contact support."
	msgCategoryMismatch = "These details do not belong to your current order. Please start a new order."
)

// UserMessage converts an error returned by the controller into text that
// can be shown to the user without leaking internals.
func UserMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var rejected *action.RejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason
	}
	var perr *ProvisioningError
	if errors.As(err, &perr) {
		return msgProvisioning
	}

	switch {
	case errors.Is(err, ErrSessionNotFound):
		return msgSessionNotFound
	case errors.Is(err, ErrWrongStep):
		return msgWrongStep
	case errors.Is(err, ErrCategoryMismatch):
		return msgCategoryMismatch
	case errors.Is(err, ErrAlreadyProcessing):
		return msgAlreadyRunning
	case errors.Is(err, ErrPricingFailed):
		return msgPricingFailed
	}
	return msgGenericFailure
}

// IsUserError reports whether err is an expected outcome of user behaviour
// rather than an internal failure worth alerting on.
func IsUserError(err error) bool {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return true
	}
	var rejected *action.RejectedError
	if errors.As(err, &rejected) {
		return true
	}
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrWrongStep) ||
		errors.Is(err, ErrCategoryMismatch) ||
		errors.Is(err, ErrAlreadyProcessing)
}
