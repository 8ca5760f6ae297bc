package action

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ActionConfig is the base configuration for all actions.
// This is typically loaded from the bot YAML configuration file.
type ActionConfig struct {
	ID         string                 `yaml:"id" json:"id"`
	Name       string                 `yaml:"name" json:"name"`
	Type       string                 `yaml:"type" json:"type"` // e.g., "create_ticket_channel"
	Enabled    bool                   `yaml:"enabled" json:"enabled"`
	Retry      *RetryConfig           `yaml:"retry,omitempty" json:"retry,omitempty"`
	Parameters map[string]interface{} `yaml:"parameters" json:"parameters"`
}

const (
	BackoffConstant    = "constant"
	BackoffExponential = "exponential"
)

// RetryConfig defines retry behavior for failed actions.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	Delay       time.Duration `yaml:"delay" json:"delay"`
	Backoff     string        `yaml:"backoff" json:"backoff"` // "constant", "exponential"
}

// Validate checks the retry settings.
func (r *RetryConfig) Validate() error {
	if r == nil {
		return nil
	}
	if r.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", r.MaxAttempts)
	}
	if r.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	switch r.Backoff {
	case "", BackoffConstant, BackoffExponential:
		return nil
	}
	return fmt.Errorf("unknown backoff %q", r.Backoff)
}

// BackOff builds the retry policy. The returned policy allows at most
// MaxAttempts-1 retries after the first attempt.
func (r *RetryConfig) BackOff() backoff.BackOff {
	if r == nil || r.MaxAttempts <= 1 {
		return &backoff.StopBackOff{}
	}

	var b backoff.BackOff
	if r.Backoff == BackoffExponential {
		exp := backoff.NewExponentialBackOff()
		if r.Delay > 0 {
			exp.InitialInterval = r.Delay
		}
		exp.MaxElapsedTime = 0
		b = exp
	} else {
		b = backoff.NewConstantBackOff(r.Delay)
	}
	return backoff.WithMaxRetries(b, uint64(r.MaxAttempts-1))
}

// GetParameterInt retrieves an integer parameter with a default.
func (c *ActionConfig) GetParameterInt(key string, defaultValue int) int {
	if val, ok := c.Parameters[key]; ok {
		if intVal, ok := val.(int); ok {
			return intVal
		}
	}
	return defaultValue
}

// GetParameterString retrieves a string parameter with a default.
func (c *ActionConfig) GetParameterString(key string, defaultValue string) string {
	if val, ok := c.Parameters[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}

// GetParameterBool retrieves a boolean parameter with a default.
func (c *ActionConfig) GetParameterBool(key string, defaultValue bool) bool {
	if val, ok := c.Parameters[key]; ok {
		if boolVal, ok := val.(bool); ok {
			return boolVal
		}
	}
	return defaultValue
}

// GetParameterStringSlice retrieves a string slice parameter with a default.
// Empty entries are dropped, so "${STAFF_ROLE_ID:}" may expand to nothing.
func (c *ActionConfig) GetParameterStringSlice(key string, defaultValue []string) []string {
	val, ok := c.Parameters[key]
	if !ok {
		return defaultValue
	}

	var items []interface{}
	switch v := val.(type) {
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case []interface{}:
		items = v
	default:
		return defaultValue
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if str, ok := item.(string); ok && str != "" {
			result = append(result, str)
		}
	}
	return result
}

// GetParameterStringMap retrieves a string to string map parameter, such as
// the Discord category for each order type.
func (c *ActionConfig) GetParameterStringMap(key string) map[string]string {
	result := make(map[string]string)
	val, ok := c.Parameters[key]
	if !ok {
		return result
	}

	switch m := val.(type) {
	case map[string]string:
		for k, v := range m {
			result[k] = v
		}
	case map[string]interface{}:
		for k, v := range m {
			if str, ok := v.(string); ok {
				result[k] = str
			}
		}
	}
	return result
}
