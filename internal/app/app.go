// Copyright (c) 2025 BoostDesk. All Rights Reserved.

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/boostdesk/ticket-bot/internal/bootstrap"
	"github.com/boostdesk/ticket-bot/internal/config"
	"github.com/boostdesk/ticket-bot/internal/server"
	"github.com/boostdesk/ticket-bot/pkg/discord"
	"github.com/boostdesk/ticket-bot/pkg/flowstate"
	"github.com/boostdesk/ticket-bot/pkg/metrics"
	"github.com/boostdesk/ticket-bot/pkg/pipeline"
	"github.com/bwmarrin/discordgo"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	actionBuiltin "github.com/boostdesk/ticket-bot/pkg/action/builtin"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	session           *discordgo.Session
	channels          *discord.ChannelService
	router            *discord.Router
	grpcServer        *server.GRPCServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	shutdownTelemetry func(context.Context) error
}

// New creates and initializes a new application instance.
//
// ============================================================
// DEVELOPER: Application initialization order
// ============================================================
// Components are initialized in dependency order:
// 1. Redis (flow state and ticket archive, skipped for memory backend)
// 2. Bot config (YAML configuration)
// 3. Discord session (not connected until Run)
// 4. Stores and metrics
// 5. Hand-off pipeline and order flow
// 6. Servers (gRPC health, metrics)
// 7. Telemetry (OpenTelemetry tracing)
//
// If you add new external dependencies, initialize them in
// step 4 before bootstrapping the hand-off pipeline.
// ============================================================
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	// ============================================================
	// Step 1: Initialize Redis
	// ============================================================
	if cfg.UsesRedis() {
		if err := app.initRedis(ctx); err != nil {
			return nil, fmt.Errorf("failed to init Redis: %w", err)
		}
	}

	// ============================================================
	// Step 2: Load bot configuration
	// ============================================================
	pipelineConfig, err := pipeline.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load bot config from %s: %w", cfg.ConfigPath, err)
	}
	logrus.Infof("loaded bot configuration from %s", cfg.ConfigPath)

	// ============================================================
	// Step 3: Create the Discord session
	// ============================================================
	if err := app.initDiscord(); err != nil {
		return nil, fmt.Errorf("failed to init Discord session: %w", err)
	}

	// ============================================================
	// Step 4: Initialize stores and metrics
	// ============================================================
	stores, err := bootstrap.InitStores(app.redisClient, cfg.FlowStateTTL, cfg.TicketTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to init stores: %w", err)
	}
	collectors := metrics.New()

	// ============================================================
	// Step 5: Bootstrap the hand-off pipeline and order flow
	// ============================================================
	// Confirmed orders flow through:
	// Router → Flow Controller → Pipeline Manager → Action Executor
	//
	// DEVELOPER: If your custom actions need external services,
	// add them to the Dependencies struct in
	// pkg/action/builtin/init.go and pass them here.
	// ============================================================
	deps := &actionBuiltin.Dependencies{
		Channels:  app.channels,
		Messenger: app.channels,
		Tickets:   stores.Tickets,
	}

	actionExecutor, actionRegistry, err := bootstrap.InitActionExecutor(pipelineConfig, deps, collectors)
	if err != nil {
		return nil, fmt.Errorf("failed to init action executor: %w", err)
	}

	// ============================================================
	// Validate pipeline wiring
	// ============================================================
	// This ensures every action in the hand-off sequence of
	// config/bot.yaml was built and registered.
	// ============================================================
	if err := pipeline.ValidateWiring(actionRegistry, pipelineConfig); err != nil {
		return nil, fmt.Errorf("pipeline wiring validation failed: %w", err)
	}
	logrus.Info("pipeline wiring validation passed")

	pipelineManager := bootstrap.InitPipeline(actionExecutor, pipelineConfig)
	controller := bootstrap.InitFlowController(stores.Flows, pipelineManager, collectors)
	app.router = discord.NewRouter(app.session, controller)

	// ============================================================
	// Step 6: Setup servers
	// ============================================================
	var checks []server.HealthCheck
	if app.redisClient != nil {
		checks = append(checks, flowstate.NewHealthChecker(app.redisClient))
	}
	app.grpcServer = server.NewGRPCServer(cfg.GRPCPort, checks...)
	if err := app.grpcServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics", collectors.Collectors()...)
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	// ============================================================
	// Step 7: Setup telemetry
	// ============================================================
	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.ServiceName, cfg.Environment, 0, cfg.ZipkinEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")

	return app, nil
}

// initRedis initializes the Redis client.
func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisHost + ":" + a.cfg.RedisPort,
		Password:     a.cfg.RedisPassword,
		DB:           0, // use default DB
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(a.cfg.RedisRetryDelayMs) * time.Millisecond
	maxRetries := backoff.WithMaxRetries(b, uint64(a.cfg.RedisMaxRetries))

	err := backoff.Retry(
		func() error {
			_, err := client.Ping(ctx).Result()
			if err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		backoff.WithContext(maxRetries, ctx),
	)

	if err != nil {
		_ = client.Close()
		return err
	}

	a.redisClient = client
	logrus.Info("Redis client initialized")
	return nil
}

// initDiscord creates the bot session and the channel service on top of it.
// The gateway connection is opened in Run.
//
// ============================================================
// DEVELOPER: Discord session configuration
// ============================================================
// The bot only needs the Guilds intent: panel buttons, select
// menus and modals arrive as interactions, not messages. Add
// intents here if a new feature reads guild messages or members.
// ============================================================
func (a *App) initDiscord() error {
	session, err := discordgo.New("Bot " + a.cfg.DiscordToken)
	if err != nil {
		return err
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	a.session = session
	a.channels = discord.NewChannelService(session, a.cfg.GuildID)
	logrus.Infof("Discord session created for guild %s", a.cfg.GuildID)
	return nil
}
