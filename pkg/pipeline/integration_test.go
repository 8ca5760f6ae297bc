package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/boostdesk/ticket-bot/pkg/action"
	actionBuiltin "github.com/boostdesk/ticket-bot/pkg/action/builtin"
	"github.com/boostdesk/ticket-bot/pkg/discord"
	"github.com/boostdesk/ticket-bot/pkg/flow"
	"github.com/boostdesk/ticket-bot/pkg/flowstate"
	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/boostdesk/ticket-bot/pkg/service"
	"github.com/bwmarrin/discordgo"
	"github.com/go-redis/redis/v8"
)

// fakeGuild stands in for the Discord channel service
type fakeGuild struct {
	mu       sync.Mutex
	specs    []discord.TicketChannelSpec
	deleted  []string
	recaps   []string
	logs     []string
	unlogged []string
	failLogs bool
}

func (g *fakeGuild) CreateTicketChannel(ctx context.Context, spec discord.TicketChannelSpec) (*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.specs = append(g.specs, spec)
	return &discordgo.Channel{ID: fmt.Sprintf("chan-%d", len(g.specs)), Name: spec.Name}, nil
}

func (g *fakeGuild) ChannelExists(ctx context.Context, channelID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range g.deleted {
		if id == channelID {
			return false, nil
		}
	}
	return true, nil
}

func (g *fakeGuild) DeleteChannel(ctx context.Context, channelID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, channelID)
	return nil
}

func (g *fakeGuild) SendOrderRecap(ctx context.Context, channelID string, o *order.Order, mentions []string) (*discordgo.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recaps = append(g.recaps, channelID)
	return &discordgo.Message{ID: "recap-" + channelID}, nil
}

func (g *fakeGuild) SendOrderLog(ctx context.Context, channelID string, o *order.Order, t *order.Ticket) (*discordgo.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failLogs {
		return nil, fmt.Errorf("log channel unavailable")
	}
	g.logs = append(g.logs, channelID)
	return &discordgo.Message{ID: "log"}, nil
}

func (g *fakeGuild) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unlogged = append(g.unlogged, messageID)
	return nil
}

const integrationConfig = `
handoff:
  actions: [create-channel, post-recap, log-order, record-ticket]

actions:
  - id: create-channel
    type: create_ticket_channel
    enabled: true
    retry:
      max_attempts: 2
      delay: 1ms
    parameters:
      category_ids:
        trophies: "cat-trophies"
      default_category_id: "cat-default"
      staff_role_ids: ["staff"]

  - id: post-recap
    type: post_order_recap
    enabled: true
    parameters:
      mention_role_ids: ["staff"]

  - id: log-order
    type: log_order
    enabled: true
    parameters:
      channel_id: "staff-log"

  - id: record-ticket
    type: record_ticket
    enabled: true
`

func setupHandoff(t *testing.T, guild *fakeGuild, tickets service.TicketRecorder) *Manager {
	t.Helper()

	config, err := ParseConfig([]byte(integrationConfig))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	actionBuiltin.RegisterActions(&actionBuiltin.Dependencies{
		Channels:  guild,
		Messenger: guild,
		Tickets:   tickets,
	})

	registry := action.NewRegistry()
	if err := action.RegisterActions(registry, config.ActionConfigs()); err != nil {
		t.Fatalf("RegisterActions failed: %v", err)
	}
	if err := ValidateWiring(registry, config); err != nil {
		t.Fatalf("ValidateWiring failed: %v", err)
	}

	return NewManager(action.NewExecutor(registry), config.Handoff, nil)
}

// TestIntegration_OrderToTicket drives a trophy order from the first button
// to an archived ticket.
func TestIntegration_OrderToTicket(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	tickets, err := service.NewRedisService(client, service.RedisServiceConfig{})
	if err != nil {
		t.Fatalf("NewRedisService failed: %v", err)
	}
	guild := &fakeGuild{}
	manager := setupHandoff(t, guild, tickets)

	store := flowstate.NewRedisStore(client, flowstate.RedisStoreConfig{TTL: time.Minute})
	controller := flow.NewController(store, manager, flow.WithIDGenerator(func() string { return "order-42" }))

	ctx := context.Background()
	steps := []flow.Input{
		flow.StartInput{Category: order.CategoryTrophies, Username: "Booster"},
		flow.TrophyDetails{Current: "400", Desired: "600"},
		flow.PaymentSelection{Method: string(order.PaymentPayPal)},
	}
	for _, in := range steps {
		if _, err := controller.Advance(ctx, "user-1", in); err != nil {
			t.Fatalf("Advance(%T) failed: %v", in, err)
		}
	}

	res, err := controller.Advance(ctx, "user-1", flow.Confirmation{})
	if err != nil {
		t.Fatalf("confirmation failed: %v", err)
	}
	if !res.Cleared || res.Ticket == nil || res.Ticket.ChannelID != "chan-1" {
		t.Fatalf("unexpected result: %+v", res)
	}

	if len(guild.specs) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(guild.specs))
	}
	spec := guild.specs[0]
	if spec.Name != "400-600-booster" || spec.ParentID != "cat-trophies" || spec.CustomerID != "user-1" {
		t.Errorf("unexpected channel spec: %+v", spec)
	}
	if len(guild.recaps) != 1 || len(guild.logs) != 1 || guild.logs[0] != "staff-log" {
		t.Errorf("expected recap and log, got recaps=%v logs=%v", guild.recaps, guild.logs)
	}

	rec, err := tickets.GetTicket(ctx, "order-42")
	if err != nil {
		t.Fatalf("expected archived ticket: %v", err)
	}
	if rec.Ticket.Metadata[actionBuiltin.RecapMessageMetadataKey] != "recap-chan-1" {
		t.Errorf("unexpected ticket metadata: %v", rec.Ticket.Metadata)
	}

	if _, err := store.Get(ctx, "user-1"); err != flowstate.ErrNotFound {
		t.Errorf("expected flow to be cleared, got %v", err)
	}
}

// TestIntegration_FailedHandoffRollsBack checks that a failing step removes
// the ticket channel and keeps the flow for another confirmation.
func TestIntegration_FailedHandoffRollsBack(t *testing.T) {
	guild := &fakeGuild{failLogs: true}
	tickets := service.NewMemoryService(0)
	manager := setupHandoff(t, guild, tickets)

	store := flowstate.NewMemoryStore(time.Minute, 0)
	controller := flow.NewController(store, manager, flow.WithIDGenerator(func() string { return "order-7" }))

	ctx := context.Background()
	steps := []flow.Input{
		flow.StartInput{Category: order.CategoryOther, Username: "Booster"},
		flow.OtherDetails{Request: "Club league carries"},
		flow.PaymentSelection{Method: string(order.PaymentCrypto)},
	}
	for _, in := range steps {
		if _, err := controller.Advance(ctx, "user-2", in); err != nil {
			t.Fatalf("Advance(%T) failed: %v", in, err)
		}
	}

	_, err := controller.Advance(ctx, "user-2", flow.Confirmation{})
	if err == nil {
		t.Fatal("expected provisioning error")
	}
	if msg := flow.UserMessage(err); msg != flow.UserMessage(&flow.ProvisioningError{}) {
		t.Errorf("unexpected user message: %q", msg)
	}

	if len(guild.deleted) != 1 || guild.deleted[0] != "chan-1" {
		t.Errorf("expected channel rollback, deleted=%v", guild.deleted)
	}
	if guild.specs[0].ParentID != "cat-default" {
		t.Errorf("expected default category for other orders, got %s", guild.specs[0].ParentID)
	}
	if _, err := tickets.GetTicket(ctx, "order-7"); err != service.ErrTicketNotFound {
		t.Errorf("expected no archived ticket, got %v", err)
	}

	state, err := store.Get(ctx, "user-2")
	if err != nil {
		t.Fatalf("expected flow to be kept: %v", err)
	}
	if state.Processing || state.Step != flowstate.StepConfirming {
		t.Errorf("unexpected flow after failure: step=%s processing=%v", state.Step, state.Processing)
	}
}
