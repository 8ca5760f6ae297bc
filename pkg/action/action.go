package action

import (
	"context"

	"github.com/boostdesk/ticket-bot/pkg/order"
)

// Action is one step of the ticket hand-off for a confirmed order.
// Actions are registered in a Registry and executed by the Executor.
type Action interface {
	// ID returns unique action identifier.
	ID() string

	// Name returns human-readable action name.
	Name() string

	// Execute performs the action for an order. Actions record what they
	// produced (channel ID, message IDs) on the ticket so later actions and
	// rollbacks can use it.
	Execute(ctx context.Context, o *order.Order, t *order.Ticket) error

	// Rollback undoes the action (optional, can return ErrRollbackNotSupported).
	// This is called if a subsequent action in the hand-off fails and rollback is enabled.
	Rollback(ctx context.Context, o *order.Order, t *order.Ticket) error

	// Config returns the action's configuration.
	Config() ActionConfig
}

// ActionResult represents the outcome of an action execution.
type ActionResult struct {
	ActionID string
	Success  bool
	Attempts int
	Error    error
}

// NewActionResult creates a successful action result.
func NewActionResult(actionID string) *ActionResult {
	return &ActionResult{
		ActionID: actionID,
		Success:  true,
		Attempts: 1,
	}
}

// NewActionError creates a failed action result with an error.
func NewActionError(actionID string, err error) *ActionResult {
	return &ActionResult{
		ActionID: actionID,
		Success:  false,
		Attempts: 1,
		Error:    err,
	}
}
