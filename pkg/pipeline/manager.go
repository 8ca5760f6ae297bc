package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/boostdesk/ticket-bot/pkg/action"
	"github.com/boostdesk/ticket-bot/pkg/order"
)

// Manager hands confirmed orders to the configured action sequence:
// Order → Ticket channel → Messages → Archive
type Manager struct {
	executor *action.Executor
	handoff  HandoffConfig
	logger   *slog.Logger
}

// NewManager creates a new pipeline manager running the hand-off actions
// through executor.
func NewManager(executor *action.Executor, handoff HandoffConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		executor: executor,
		handoff:  handoff,
		logger:   logger,
	}
}

// Handoff provisions a ticket for a confirmed order. On failure the completed
// actions are rolled back, unless disabled, and no ticket is returned.
func (m *Manager) Handoff(ctx context.Context, o *order.Order) (*order.Ticket, error) {
	if o == nil || o.ID == "" {
		return nil, fmt.Errorf("%w: order must have an ID", action.ErrInvalidConfig)
	}

	if m.handoff.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.handoff.Timeout)
		defer cancel()
	}

	m.logger.Info("handing off order",
		slog.String("order_id", o.ID),
		slog.String("user_id", o.UserID),
		slog.String("category", string(o.Category)),
		slog.Int("action_count", len(m.handoff.Actions)))

	ticket := order.NewTicket(o.ID)
	results, err := m.executor.ExecuteMultiple(ctx, m.handoff.Actions, o, ticket, m.handoff.Rollback())

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			m.logger.Error("action execution failed",
				slog.String("action_id", result.ActionID),
				slog.String("order_id", o.ID),
				slog.Int("attempts", result.Attempts),
				slog.String("error", result.Error.Error()))
		} else {
			successCount++
		}
	}

	if err != nil {
		if successCount > 0 {
			m.logger.Warn("partial hand-off failure",
				slog.String("order_id", o.ID),
				slog.Int("success", successCount),
				slog.Int("failed", failureCount),
				slog.Bool("rolled_back", m.handoff.Rollback()))
		}
		return nil, fmt.Errorf("handoff of order %s failed: %w", o.ID, err)
	}

	m.logger.Info("hand-off completed",
		slog.String("order_id", o.ID),
		slog.String("channel_id", ticket.ChannelID),
		slog.Int("success_count", successCount))

	return ticket, nil
}

// Actions returns the hand-off action IDs in execution order.
func (m *Manager) Actions() []string {
	return append([]string(nil), m.handoff.Actions...)
}
