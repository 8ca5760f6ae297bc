// Copyright (c) 2025 BoostDesk. All Rights Reserved.

package bootstrap

import (
	"log/slog"

	"github.com/boostdesk/ticket-bot/pkg/action"
	"github.com/boostdesk/ticket-bot/pkg/common"
	"github.com/boostdesk/ticket-bot/pkg/pipeline"
	"github.com/sirupsen/logrus"
)

// InitPipeline creates the hand-off manager that turns confirmed orders into
// tickets.
//
// ============================================================
// DEVELOPER: Configure the hand-off sequence
// ============================================================
// The hand-off sequence is configured in config/bot.yaml:
//
//	handoff:
//	  actions: [check-ticket-limit, create-channel, post-recap]  # ← Run in this order
//	  rollback_on_error: true
//	  timeout: 30s
//
// When a customer confirms:
// 1. The manager runs each action in sequence
// 2. If any action fails, completed actions are rolled back
// 3. The customer keeps their flow and can confirm again
//
// To change the sequence, edit config/bot.yaml, not this file.
// ============================================================
func InitPipeline(
	actionExecutor *action.Executor,
	pipelineConfig *pipeline.Config,
) *pipeline.Manager {
	logger := slog.New(common.NewSlogHandler(logrus.StandardLogger()))
	manager := pipeline.NewManager(actionExecutor, pipelineConfig.Handoff, logger)
	logrus.Infof("initialized pipeline manager, hand-off sequence: %v (rollback: %t)",
		manager.Actions(), pipelineConfig.Handoff.Rollback())

	return manager
}
