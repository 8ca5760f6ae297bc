package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boostdesk/ticket-bot/pkg/metrics"
	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// rollbackTimeout bounds the whole rollback of a failed hand-off.
const rollbackTimeout = 30 * time.Second

// Executor executes hand-off actions for confirmed orders.
type Executor struct {
	registry *Registry
	metrics  *metrics.Collectors
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithMetrics records every action execution in m.
func WithMetrics(m *metrics.Collectors) ExecutorOption {
	return func(e *Executor) { e.metrics = m }
}

// NewExecutor creates a new action executor.
func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry: registry,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs a single action for an order, retrying per its RetryConfig.
func (e *Executor) Execute(ctx context.Context, actionID string, o *order.Order, t *order.Ticket) (*ActionResult, error) {
	action := e.registry.Get(actionID)
	if action == nil {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, actionID)
	}

	logrus.Infof("executing action %s for order %s (user: %s)", actionID, o.ID, o.UserID)

	result := e.run(ctx, action, o, t)
	if result.Error != nil {
		return result, result.Error
	}
	return result, nil
}

// ExecuteMultiple executes multiple actions in sequence.
// If rollbackOnError is true, previously executed actions will be rolled back if a later action fails.
func (e *Executor) ExecuteMultiple(ctx context.Context, actionIDs []string, o *order.Order, t *order.Ticket, rollbackOnError bool) ([]*ActionResult, error) {
	var results []*ActionResult
	var executedActions []Action

	for _, actionID := range actionIDs {
		action := e.registry.Get(actionID)
		if action == nil {
			err := fmt.Errorf("%w: %s", ErrActionNotFound, actionID)
			logrus.Errorf("%v", err)

			if rollbackOnError && len(executedActions) > 0 {
				e.rollbackActions(ctx, executedActions, o, t)
			}

			return results, err
		}

		logrus.Infof("executing action %s for order %s (user: %s)", actionID, o.ID, o.UserID)

		result := e.run(ctx, action, o, t)
		results = append(results, result)
		if result.Error != nil {
			if rollbackOnError && len(executedActions) > 0 {
				e.rollbackActions(ctx, executedActions, o, t)
			}

			return results, result.Error
		}

		executedActions = append(executedActions, action)
	}

	return results, nil
}

// run executes one action, retrying transient failures. Errors wrapping
// ErrInvalidConfig, ErrMissingTicket or a *RejectedError fail immediately.
func (e *Executor) run(ctx context.Context, action Action, o *order.Order, t *order.Ticket) *ActionResult {
	cfg := action.Config()
	attempts := 0

	operation := func() error {
		attempts++
		err := action.Execute(ctx, o, t)
		if err == nil {
			return nil
		}
		var rejected *RejectedError
		if errors.Is(err, ErrInvalidConfig) || errors.Is(err, ErrMissingTicket) || errors.As(err, &rejected) {
			return backoff.Permanent(err)
		}
		logrus.Warnf("action %s attempt %d failed: %v", action.ID(), attempts, err)
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(cfg.Retry.BackOff(), ctx))
	if err != nil && attempts > 1 {
		err = fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, attempts, err)
	}
	e.metrics.ActionExecuted(action.ID(), err)

	if err != nil {
		logrus.Errorf("action %s failed: %v", action.ID(), err)
		result := NewActionError(action.ID(), err)
		result.Attempts = attempts
		return result
	}

	logrus.Infof("action %s completed successfully", action.ID())
	result := NewActionResult(action.ID())
	result.Attempts = attempts
	return result
}

// rollbackActions rolls back actions in reverse order. Rollback runs on a
// fresh deadline: the hand-off context is often the one that just expired.
func (e *Executor) rollbackActions(ctx context.Context, actions []Action, o *order.Order, t *order.Ticket) {
	logrus.Warnf("rolling back %d actions for order %s", len(actions), o.ID)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	// Rollback in reverse order
	for i := len(actions) - 1; i >= 0; i-- {
		action := actions[i]
		logrus.Infof("rolling back action %s", action.ID())

		err := action.Rollback(ctx, o, t)
		if err != nil {
			if errors.Is(err, ErrRollbackNotSupported) {
				logrus.Debugf("action %s does not support rollback", action.ID())
			} else {
				logrus.Errorf("failed to rollback action %s: %v", action.ID(), err)
			}
		} else {
			logrus.Infof("action %s rolled back successfully", action.ID())
		}
	}
}

// GetRegistry returns the action registry used by this executor.
func (e *Executor) GetRegistry() *Registry {
	return e.registry
}
