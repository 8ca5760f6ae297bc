// Copyright (c) 2025 BoostDesk. All Rights Reserved.

package config

import "time"

// Config holds all application configuration loaded from environment variables.
// This struct uses github.com/caarlos0/env for automatic environment variable parsing.
//
// ============================================================
// DEVELOPER: Add new configuration fields here.
// ============================================================
// Use struct tags to define:
// - `env:"VAR_NAME"` - the environment variable name
// - `env:",required"` - make it required
// - `envDefault:"value"` - set a default value
//
// After adding fields here, update loader.go Validate() if custom
// validation is needed.
// ============================================================
type Config struct {
	// ============================================================
	// Server configuration
	// ============================================================
	GRPCPort    int    `env:"GRPC_PORT" envDefault:"6565"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"BoostTicketBot"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// ============================================================
	// Discord configuration (REQUIRED)
	// ============================================================
	DiscordToken   string `env:"DISCORD_TOKEN,required,notEmpty"`
	GuildID        string `env:"DISCORD_GUILD_ID,required,notEmpty"`
	PanelChannelID string `env:"DISCORD_PANEL_CHANNEL_ID"`

	// ============================================================
	// Flow state storage
	// ============================================================
	StoreBackend string        `env:"STORE_BACKEND" envDefault:"redis"`
	FlowStateTTL time.Duration `env:"FLOW_STATE_TTL" envDefault:"30m"`
	TicketTTL    time.Duration `env:"TICKET_RECORD_TTL" envDefault:"0"`

	// ============================================================
	// Redis configuration
	// ============================================================
	RedisHost         string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisMaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int    `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`

	// ============================================================
	// Bot configuration
	// ============================================================
	ConfigPath string `env:"CONFIG_PATH" envDefault:"config/bot.yaml"`

	// ============================================================
	// Telemetry configuration
	// ============================================================
	OtelEnabled    bool   `env:"OTEL_ENABLED" envDefault:"true"`
	ZipkinEndpoint string `env:"OTEL_EXPORTER_ZIPKIN_ENDPOINT"`
}

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)
