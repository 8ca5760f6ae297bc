// Copyright (c) 2025 BoostDesk. All Rights Reserved.

package bootstrap

import (
	"fmt"

	"github.com/boostdesk/ticket-bot/pkg/action"
	actionBuiltin "github.com/boostdesk/ticket-bot/pkg/action/builtin"
	"github.com/boostdesk/ticket-bot/pkg/metrics"
	"github.com/boostdesk/ticket-bot/pkg/pipeline"
	"github.com/sirupsen/logrus"
)

// InitActionExecutor creates and initializes an action executor with the
// hand-off actions from the bot config.
//
// ============================================================
// DEVELOPER: Register custom action types here.
// ============================================================
// Actions run when a customer confirms an order. Each action
// type does one hand-off step (e.g., create the ticket channel,
// post the recap, log the order).
//
// Steps to add a new action:
// 1. Create your action in pkg/action/builtin/
// 2. Implement the Action interface
// 3. Register the action type in pkg/action/builtin/init.go
// 4. Add action configuration to config/bot.yaml
// 5. Add its ID to handoff.actions in config/bot.yaml
//
// The builtin actions:
// - check_ticket_limit → refuses customers with too many open tickets
// - create_ticket_channel → private channel for the customer and staff
// - post_order_recap → order embed in the ticket channel
// - log_order → order summary in the staff log channel
// - record_ticket → ticket archive entry
//
// IMPORTANT: Actions may need external service dependencies
// (e.g., the Discord channel service). Pass dependencies
// through the Dependencies struct.
// ============================================================
func InitActionExecutor(
	pipelineConfig *pipeline.Config,
	deps *actionBuiltin.Dependencies,
	collectors *metrics.Collectors,
) (*action.Executor, *action.Registry, error) {
	// ============================================================
	// DEVELOPER: Action registration
	// ============================================================
	// This registers all action factories defined in pkg/action/builtin/init.go
	// To add new action types, modify pkg/action/builtin/init.go
	// ============================================================
	actionBuiltin.RegisterActions(deps)

	actionConfigs := pipelineConfig.ActionConfigs()

	// Create registry and register actions
	registry := action.NewRegistry()
	if err := action.RegisterActions(registry, actionConfigs); err != nil {
		return nil, nil, fmt.Errorf("failed to register actions: %w", err)
	}

	logrus.Infof("registered %d of %d configured actions: %v", registry.Count(), len(actionConfigs), registry.IDs())

	var opts []action.ExecutorOption
	if collectors != nil {
		opts = append(opts, action.WithMetrics(collectors))
	}
	executor := action.NewExecutor(registry, opts...)
	logrus.Infof("initialized action executor")

	return executor, registry, nil
}
