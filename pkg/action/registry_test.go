package action

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/boostdesk/ticket-bot/pkg/order"
)

// mockAction is a simple action implementation for testing
type mockAction struct {
	id     string
	name   string
	config ActionConfig
}

func (m *mockAction) ID() string   { return m.id }
func (m *mockAction) Name() string { return m.name }
func (m *mockAction) Execute(ctx context.Context, o *order.Order, t *order.Ticket) error {
	return nil
}
func (m *mockAction) Rollback(ctx context.Context, o *order.Order, t *order.Ticket) error {
	return ErrRollbackNotSupported
}
func (m *mockAction) Config() ActionConfig { return m.config }

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	if registry == nil {
		t.Fatal("Expected non-nil registry")
	}

	if registry.Count() != 0 {
		t.Errorf("Expected empty registry, got count %d", registry.Count())
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	action := &mockAction{
		id:     "create-channel",
		name:   "Create Channel",
		config: ActionConfig{ID: "create-channel", Enabled: true},
	}

	if err := registry.Register(action); err != nil {
		t.Fatalf("Failed to register action: %v", err)
	}

	if registry.Count() != 1 {
		t.Errorf("Expected count 1, got %d", registry.Count())
	}

	// Try to register same action again
	if err := registry.Register(action); err == nil {
		t.Error("Expected error when registering duplicate action")
	}
}

func TestRegistry_RegisterRejectsEmptyID(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register(&mockAction{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}

	if err := registry.Register(nil); err == nil {
		t.Error("Expected error when registering nil action")
	}
}

func TestRegistry_GetAndHas(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&mockAction{id: "post-recap", name: "Post Recap"})

	retrieved := registry.Get("post-recap")
	if retrieved == nil {
		t.Fatal("Expected to retrieve action")
	}
	if retrieved.Name() != "Post Recap" {
		t.Errorf("Expected name 'Post Recap', got '%s'", retrieved.Name())
	}

	if registry.Get("missing") != nil {
		t.Error("Expected nil for missing action")
	}
	if !registry.Has("post-recap") || registry.Has("missing") {
		t.Error("Has() returned unexpected result")
	}
}

func TestRegistry_IDs(t *testing.T) {
	registry := NewRegistry()
	for _, id := range []string{"log-order", "create-channel", "post-recap"} {
		registry.Register(&mockAction{id: id})
	}

	want := []string{"create-channel", "log-order", "post-recap"}
	if got := registry.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}
