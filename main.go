// Copyright (c) 2025 BoostDesk. All Rights Reserved.

package main

import (
	"context"

	"github.com/boostdesk/ticket-bot/internal/app"
	"github.com/boostdesk/ticket-bot/internal/config"
	"github.com/boostdesk/ticket-bot/pkg/common"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Infof("starting ticket bot..")

	// Configure logging
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}
	logrus.SetLevel(common.ParseLogLevel(cfg.LogLevel))

	ctx := context.Background()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logrus.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		logrus.Fatalf("application error: %v", err)
	}
}
