// Copyright (c) 2025 BoostDesk. All Rights Reserved.

package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run(ctx context.Context) error {
	// Start servers
	if err := a.grpcServer.Start(ctx); err != nil {
		return err
	}
	if err := a.metricsServer.Start(ctx); err != nil {
		return err
	}

	// Connect to the Discord gateway
	a.session.AddHandler(a.router.HandleInteraction)
	a.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		logrus.Infof("logged in as %s#%s", r.User.Username, r.User.Discriminator)
	})
	if err := a.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	// ============================================================
	// DEVELOPER: Order panel
	// ============================================================
	// When DISCORD_PANEL_CHANNEL_ID is set, a fresh order panel is
	// posted there on every start. Leave it empty to keep an
	// existing panel message; its buttons keep working.
	// ============================================================
	if a.cfg.PanelChannelID != "" {
		if _, err := a.channels.SendPanel(ctx, a.cfg.PanelChannelID); err != nil {
			logrus.Errorf("failed to post order panel: %v", err)
		}
	}

	logrus.Info("application started successfully")

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logrus.Info("shutdown signal received")
	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down all application components.
//
// ============================================================
// DEVELOPER: Shutdown order is critical
// ============================================================
// Components are shut down in reverse dependency order:
// 1. Stop receiving interactions (Discord gateway)
// 2. Stop accepting new requests (gRPC + metrics servers)
// 3. Close external connections (Redis)
// 4. Flush telemetry data (OpenTelemetry)
//
// IMPORTANT: Shutdown errors are logged but don't stop the
// shutdown sequence. Each component gets a chance to clean up.
// ============================================================
func (a *App) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down application...")

	// ============================================================
	// Step 1: Disconnect from Discord
	// ============================================================
	if a.session != nil {
		if err := a.session.Close(); err != nil {
			logrus.Errorf("Discord session close error: %v", err)
		}
	}

	// ============================================================
	// Step 2: Shutdown servers (stop accepting new requests)
	// ============================================================
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		logrus.Errorf("gRPC server shutdown error: %v", err)
	}
	if err := a.metricsServer.Shutdown(ctx); err != nil {
		logrus.Errorf("metrics server shutdown error: %v", err)
	}

	// ============================================================
	// Step 3: Close external connections
	// ============================================================
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logrus.Errorf("Redis close error: %v", err)
		}
	}

	// ============================================================
	// Step 4: Flush telemetry data
	// ============================================================
	if a.shutdownTelemetry != nil {
		if err := a.shutdownTelemetry(ctx); err != nil {
			logrus.Errorf("telemetry shutdown error: %v", err)
		}
	}

	logrus.Info("application shutdown complete")
	return nil
}
