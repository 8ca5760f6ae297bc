package pipeline

import (
	"fmt"
	"strings"

	"github.com/boostdesk/ticket-bot/pkg/action"
)

// ValidateWiring validates that the hand-off is correctly wired.
// It checks that:
// - All enabled actions in config have registered instances
// - Every hand-off step resolves to a registered action
//
// This catches common mistakes like:
// - Forgetting to register an action type factory
// - Typos in action types
// - Actions whose dependencies were not provided
func ValidateWiring(actionRegistry *action.Registry, config *Config) error {
	var errors []string

	for _, ac := range config.Actions {
		if !ac.Enabled {
			continue
		}

		if !actionRegistry.Has(ac.ID) {
			errors = append(errors, fmt.Sprintf("action '%s' (type=%s) is enabled in config but not registered", ac.ID, ac.Type))
		}
	}

	for _, id := range config.Handoff.Actions {
		if !actionRegistry.Has(id) {
			errors = append(errors, fmt.Sprintf("handoff step '%s' has no registered action", id))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("pipeline wiring validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
