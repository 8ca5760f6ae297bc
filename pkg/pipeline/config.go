package pipeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/boostdesk/ticket-bot/pkg/action"
	"gopkg.in/yaml.v3"
)

// Config represents the complete bot configuration file.
type Config struct {
	Handoff HandoffConfig  `yaml:"handoff"`
	Actions []ActionConfig `yaml:"actions"`
}

// HandoffConfig lists the actions run, in order, when an order is confirmed.
type HandoffConfig struct {
	Actions []string `yaml:"actions"`
	// RollbackOnError undoes completed actions when a later one fails. Defaults to true.
	RollbackOnError *bool         `yaml:"rollback_on_error,omitempty"`
	Timeout         time.Duration `yaml:"timeout,omitempty"`
}

// Rollback reports whether failed hand-offs roll back completed actions.
func (h HandoffConfig) Rollback() bool {
	return h.RollbackOnError == nil || *h.RollbackOnError
}

// ActionConfig represents an action configuration entry.
type ActionConfig struct {
	ID         string                 `yaml:"id"`
	Type       string                 `yaml:"type"`
	Enabled    bool                   `yaml:"enabled"`
	Retry      *action.RetryConfig    `yaml:"retry,omitempty"`
	Parameters map[string]interface{} `yaml:"parameters,omitempty"`
}

// LoadConfig loads the bot configuration from a YAML file.
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig parses and validates configuration from YAML bytes.
func ParseConfig(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration for common errors.
func (c *Config) Validate() error {
	actions := make(map[string]ActionConfig)
	for _, ac := range c.Actions {
		if ac.ID == "" {
			return fmt.Errorf("action with empty ID found")
		}
		if _, ok := actions[ac.ID]; ok {
			return fmt.Errorf("duplicate action ID: %s", ac.ID)
		}
		actions[ac.ID] = ac

		if ac.Type == "" {
			return fmt.Errorf("action %s has empty type", ac.ID)
		}
		if err := ac.Retry.Validate(); err != nil {
			return fmt.Errorf("action %s retry: %w", ac.ID, err)
		}
	}

	if len(c.Handoff.Actions) == 0 {
		return fmt.Errorf("handoff must list at least one action")
	}
	if c.Handoff.Timeout < 0 {
		return fmt.Errorf("handoff timeout cannot be negative")
	}

	seen := make(map[string]bool)
	for _, id := range c.Handoff.Actions {
		ac, ok := actions[id]
		if !ok {
			return fmt.Errorf("handoff references unknown action: %s", id)
		}
		if !ac.Enabled {
			return fmt.Errorf("handoff references disabled action: %s", id)
		}
		if seen[id] {
			return fmt.Errorf("handoff lists action %s twice", id)
		}
		seen[id] = true
	}

	return nil
}

// ActionConfigs converts the configured actions for the action factory.
func (c *Config) ActionConfigs() []action.ActionConfig {
	result := make([]action.ActionConfig, len(c.Actions))
	for i, ac := range c.Actions {
		result[i] = action.ActionConfig{
			ID:         ac.ID,
			Type:       ac.Type,
			Enabled:    ac.Enabled,
			Retry:      ac.Retry,
			Parameters: ac.Parameters,
		}
	}
	return result
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		// Support ${VAR:default} syntax
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
