package action

import (
	"errors"
	"fmt"
)

var (
	// ErrRollbackNotSupported indicates that an action doesn't support rollback.
	ErrRollbackNotSupported = errors.New("rollback not supported for this action")

	// ErrActionNotFound indicates that a requested action doesn't exist in the registry.
	ErrActionNotFound = errors.New("action not found in registry")

	// ErrInvalidConfig indicates that an action's configuration is invalid.
	// Actions failing with it are not retried.
	ErrInvalidConfig = errors.New("invalid action configuration")

	// ErrMaxRetriesExceeded indicates that an action failed after all retry attempts.
	ErrMaxRetriesExceeded = errors.New("maximum retry attempts exceeded")

	// ErrMissingTicket indicates an action that needs a provisioned ticket
	// channel ran before one was created.
	ErrMissingTicket = errors.New("ticket channel has not been created")
)

// RejectedError is an order refused by a hand-off action before anything was
// provisioned. Reason is shown to the customer. Rejections are not retried.
type RejectedError struct {
	ActionID string
	Reason   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("order rejected by %s: %s", e.ActionID, e.Reason)
}
