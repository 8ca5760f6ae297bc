package builtin

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/boostdesk/ticket-bot/pkg/action"
	"github.com/boostdesk/ticket-bot/pkg/discord"
	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/boostdesk/ticket-bot/pkg/service"
	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
)

// mockChannels is a mock implementation for testing
type mockChannels struct {
	specs     []discord.TicketChannelSpec
	deleted   []string
	createErr error
	lookupErr error
}

func (m *mockChannels) CreateTicketChannel(ctx context.Context, spec discord.TicketChannelSpec) (*discordgo.Channel, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.specs = append(m.specs, spec)
	return &discordgo.Channel{ID: "chan-1", Name: spec.Name}, nil
}

func (m *mockChannels) ChannelExists(ctx context.Context, channelID string) (bool, error) {
	if m.lookupErr != nil {
		return false, m.lookupErr
	}
	for _, id := range m.deleted {
		if id == channelID {
			return false, nil
		}
	}
	return true, nil
}

func (m *mockChannels) DeleteChannel(ctx context.Context, channelID string) error {
	m.deleted = append(m.deleted, channelID)
	return nil
}

// mockMessenger is a mock implementation for testing
type mockMessenger struct {
	recaps      []string
	mentions    [][]string
	logChannels []string
	removed     []string
	recapErr    error
}

func (m *mockMessenger) SendOrderRecap(ctx context.Context, channelID string, o *order.Order, mentions []string) (*discordgo.Message, error) {
	if m.recapErr != nil {
		return nil, m.recapErr
	}
	m.recaps = append(m.recaps, channelID)
	m.mentions = append(m.mentions, mentions)
	return &discordgo.Message{ID: "msg-1", ChannelID: channelID}, nil
}

func (m *mockMessenger) SendOrderLog(ctx context.Context, channelID string, o *order.Order, t *order.Ticket) (*discordgo.Message, error) {
	m.logChannels = append(m.logChannels, channelID)
	return &discordgo.Message{ID: "log-1", ChannelID: channelID}, nil
}

func (m *mockMessenger) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	m.removed = append(m.removed, channelID+"/"+messageID)
	return nil
}

func testOrder() *order.Order {
	return &order.Order{
		ID:            "order-1",
		UserID:        "user-1",
		Username:      "Booster",
		Category:      order.CategoryRanked,
		Current:       order.TierTarget("Gold 1"),
		Desired:       order.TierTarget("Diamond 2"),
		Price:         decimal.RequireFromString("15"),
		PaymentMethod: order.PaymentPayPal,
	}
}

func TestCreateTicketChannelAction_Execute(t *testing.T) {
	channels := &mockChannels{}
	config := action.ActionConfig{
		ID:      "channel",
		Type:    CreateTicketChannelActionID,
		Enabled: true,
		Parameters: map[string]interface{}{
			"category_ids":        map[string]interface{}{"ranked": "cat-ranked"},
			"default_category_id": "cat-default",
			"staff_role_ids":      []interface{}{"staff-1"},
		},
	}
	act := NewCreateTicketChannelAction(config, channels)

	o := testOrder()
	ticket := order.NewTicket(o.ID)
	if err := act.Execute(context.Background(), o, ticket); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if ticket.ChannelID != "chan-1" || ticket.ChannelName != "g-d2-booster" {
		t.Errorf("ticket = %+v", ticket)
	}
	spec := channels.specs[0]
	if spec.ParentID != "cat-ranked" {
		t.Errorf("Expected parent cat-ranked, got %s", spec.ParentID)
	}
	if spec.CustomerID != "user-1" || len(spec.StaffRoleIDs) != 1 {
		t.Errorf("unexpected spec: %+v", spec)
	}

	// A second run on the same ticket keeps the existing channel.
	if err := act.Execute(context.Background(), o, ticket); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(channels.specs) != 1 {
		t.Errorf("Expected 1 channel, got %d", len(channels.specs))
	}

	if err := act.Rollback(context.Background(), o, ticket); err != nil {
		t.Fatalf("Rollback error: %v", err)
	}
	if len(channels.deleted) != 1 || ticket.ChannelID != "" {
		t.Errorf("Expected channel to be deleted, deleted=%v ticket=%+v", channels.deleted, ticket)
	}
}

func TestCreateTicketChannelAction_DefaultCategory(t *testing.T) {
	channels := &mockChannels{}
	act := NewCreateTicketChannelAction(action.ActionConfig{
		ID:         "channel",
		Parameters: map[string]interface{}{"default_category_id": "cat-default"},
	}, channels)

	o := testOrder()
	o.Category = order.CategoryOther
	if err := act.Execute(context.Background(), o, order.NewTicket(o.ID)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if channels.specs[0].ParentID != "cat-default" {
		t.Errorf("Expected default category, got %s", channels.specs[0].ParentID)
	}

	if err := act.Execute(context.Background(), o, nil); !errors.Is(err, action.ErrMissingTicket) {
		t.Errorf("Expected ErrMissingTicket, got %v", err)
	}
}

func TestPostOrderRecapAction(t *testing.T) {
	tests := []struct {
		name         string
		params       map[string]interface{}
		wantMentions []string
	}{
		{
			name:         "customer only by default",
			wantMentions: []string{"<@user-1>"},
		},
		{
			name:         "customer and roles",
			params:       map[string]interface{}{"mention_role_ids": []interface{}{"staff-1"}},
			wantMentions: []string{"<@user-1>", "<@&staff-1>"},
		},
		{
			name:         "roles only",
			params:       map[string]interface{}{"mention_customer": false, "mention_role_ids": []string{"staff-1"}},
			wantMentions: []string{"<@&staff-1>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messenger := &mockMessenger{}
			act := NewPostOrderRecapAction(action.ActionConfig{ID: "recap", Parameters: tt.params}, messenger)

			ticket := order.NewTicket("order-1")
			ticket.ChannelID = "chan-1"
			if err := act.Execute(context.Background(), testOrder(), ticket); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			got := messenger.mentions[0]
			if len(got) != len(tt.wantMentions) {
				t.Fatalf("mentions = %v, want %v", got, tt.wantMentions)
			}
			for i := range got {
				if got[i] != tt.wantMentions[i] {
					t.Errorf("mentions[%d] = %s, want %s", i, got[i], tt.wantMentions[i])
				}
			}
			if ticket.Metadata[RecapMessageMetadataKey] != "msg-1" {
				t.Errorf("Expected recap message id in metadata, got %v", ticket.Metadata)
			}
		})
	}
}

func TestPostOrderRecapAction_NoChannel(t *testing.T) {
	act := NewPostOrderRecapAction(action.ActionConfig{ID: "recap"}, &mockMessenger{})

	err := act.Execute(context.Background(), testOrder(), order.NewTicket("order-1"))
	if !errors.Is(err, action.ErrMissingTicket) {
		t.Errorf("Expected ErrMissingTicket, got %v", err)
	}
	if err := act.Rollback(context.Background(), testOrder(), nil); !errors.Is(err, action.ErrRollbackNotSupported) {
		t.Errorf("Expected ErrRollbackNotSupported, got %v", err)
	}
}

func TestLogOrderAction(t *testing.T) {
	messenger := &mockMessenger{}

	silent := NewLogOrderAction(action.ActionConfig{ID: "log"}, messenger)
	if err := silent.Execute(context.Background(), testOrder(), nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(messenger.logChannels) != 0 {
		t.Errorf("Expected no log message without channel, got %v", messenger.logChannels)
	}

	posting := NewLogOrderAction(action.ActionConfig{
		ID:         "log",
		Parameters: map[string]interface{}{"channel_id": "log-chan"},
	}, messenger)
	if err := posting.Execute(context.Background(), testOrder(), order.NewTicket("order-1")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(messenger.logChannels) != 1 || messenger.logChannels[0] != "log-chan" {
		t.Errorf("logChannels = %v", messenger.logChannels)
	}

	// Nothing was posted for a ticket without the message key.
	if err := posting.Rollback(context.Background(), testOrder(), order.NewTicket("order-1")); err != nil {
		t.Errorf("Rollback without message: %v", err)
	}
	if len(messenger.removed) != 0 {
		t.Errorf("Expected no deletion, got %v", messenger.removed)
	}
}

func TestHandoffChain_RollsBackOrderLog(t *testing.T) {
	channels := &mockChannels{}
	messenger := &mockMessenger{recapErr: errors.New("discord unavailable")}
	RegisterActions(&Dependencies{Channels: channels, Messenger: messenger, Tickets: service.NewMemoryService(0)})

	registry := action.NewRegistry()
	err := action.RegisterActions(registry, []action.ActionConfig{
		{ID: "channel", Type: CreateTicketChannelActionID, Enabled: true},
		{ID: "log", Type: LogOrderActionID, Enabled: true, Parameters: map[string]interface{}{"channel_id": "log-chan"}},
		{ID: "recap", Type: PostOrderRecapActionID, Enabled: true},
	})
	if err != nil {
		t.Fatalf("RegisterActions() error = %v", err)
	}

	o := testOrder()
	ticket := order.NewTicket(o.ID)
	_, err = action.NewExecutor(registry).ExecuteMultiple(context.Background(), []string{"channel", "log", "recap"}, o, ticket, true)
	if err == nil {
		t.Fatal("Expected hand-off error")
	}

	if len(messenger.removed) != 1 || messenger.removed[0] != "log-chan/log-1" {
		t.Errorf("Expected staff log deletion, removed=%v", messenger.removed)
	}
	if _, ok := ticket.Metadata[LogMessageMetadataKey]; ok {
		t.Errorf("Expected log message key to be cleared, got %v", ticket.Metadata)
	}
	if len(channels.deleted) != 1 {
		t.Errorf("Expected channel rollback, deleted=%v", channels.deleted)
	}
}

func TestRecordTicketAction(t *testing.T) {
	recorder := service.NewMemoryService(0)
	act := NewRecordTicketAction(action.ActionConfig{ID: "record"}, recorder)
	ctx := context.Background()
	o := testOrder()
	ticket := order.NewTicket(o.ID)

	if err := act.Execute(ctx, o, ticket); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := recorder.GetTicket(ctx, o.ID); err != nil {
		t.Fatalf("Expected record, got %v", err)
	}

	if err := act.Rollback(ctx, o, ticket); err != nil {
		t.Fatalf("Rollback error: %v", err)
	}
	if _, err := recorder.GetTicket(ctx, o.ID); !errors.Is(err, service.ErrTicketNotFound) {
		t.Errorf("Expected record to be removed, got %v", err)
	}
}

func TestRegisterActions_MissingDependencies(t *testing.T) {
	RegisterActions(&Dependencies{})

	for _, typ := range []string{CheckTicketLimitActionID, CreateTicketChannelActionID, PostOrderRecapActionID, RecordTicketActionID} {
		_, err := action.CreateAction(action.ActionConfig{ID: typ, Type: typ, Enabled: true})
		if !errors.Is(err, action.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", typ, err)
		}
	}

	// Logging works without a messenger.
	act, err := action.CreateAction(action.ActionConfig{ID: "log", Type: LogOrderActionID, Enabled: true})
	if err != nil || act == nil {
		t.Errorf("Expected log action, got %v, %v", act, err)
	}
}

func TestHandoffChain_RollsBackChannel(t *testing.T) {
	channels := &mockChannels{}
	messenger := &mockMessenger{recapErr: errors.New("discord unavailable")}
	RegisterActions(&Dependencies{Channels: channels, Messenger: messenger, Tickets: service.NewMemoryService(0)})

	registry := action.NewRegistry()
	err := action.RegisterActions(registry, []action.ActionConfig{
		{ID: "channel", Type: CreateTicketChannelActionID, Enabled: true},
		{ID: "recap", Type: PostOrderRecapActionID, Enabled: true},
	})
	if err != nil {
		t.Fatalf("RegisterActions() error = %v", err)
	}

	o := testOrder()
	ticket := order.NewTicket(o.ID)
	_, err = action.NewExecutor(registry).ExecuteMultiple(context.Background(), []string{"channel", "recap"}, o, ticket, true)
	if err == nil {
		t.Fatal("Expected hand-off error")
	}

	if len(channels.deleted) != 1 || channels.deleted[0] != "chan-1" {
		t.Errorf("Expected channel rollback, deleted=%v", channels.deleted)
	}
	if ticket.ChannelID != "" {
		t.Errorf("Expected ticket channel to be cleared, got %s", ticket.ChannelID)
	}
}

func TestCheckTicketLimitAction_Handoff(t *testing.T) {
	type existing struct {
		category order.Category
		closed   bool
	}

	tests := []struct {
		name       string
		params     map[string]interface{}
		existing   []existing
		lookupErr  error
		wantReason string
		wantOpen   int
	}{
		{
			name:     "under both limits",
			existing: []existing{{category: order.CategoryRanked}},
			wantOpen: 2,
		},
		{
			name: "total limit reached",
			existing: []existing{
				{category: order.CategoryTrophies},
				{category: order.CategoryBulk},
				{category: order.CategoryOther},
			},
			wantReason: "You have reached the maximum of 3 open tickets (3/3). Please close an existing ticket before opening a new one.",
			wantOpen:   3,
		},
		{
			name: "category limit reached",
			existing: []existing{
				{category: order.CategoryRanked},
				{category: order.CategoryRanked},
			},
			wantReason: "You have reached the maximum of 2 open ranked tickets (2/2). Please close an existing ranked ticket before opening a new one.",
			wantOpen:   2,
		},
		{
			name: "deleted channels are closed",
			existing: []existing{
				{category: order.CategoryRanked, closed: true},
				{category: order.CategoryRanked, closed: true},
				{category: order.CategoryTrophies},
			},
			wantOpen: 2,
		},
		{
			name:   "configured limits",
			params: map[string]interface{}{"max_total": 1, "max_per_category": 0},
			existing: []existing{
				{category: order.CategoryOther},
			},
			wantReason: "You have reached the maximum of 1 open tickets (1/1). Please close an existing ticket before opening a new one.",
			wantOpen:   1,
		},
		{
			name:   "disabled limits",
			params: map[string]interface{}{"max_total": 0, "max_per_category": 0},
			existing: []existing{
				{category: order.CategoryRanked},
				{category: order.CategoryRanked},
				{category: order.CategoryRanked},
			},
			wantOpen: 4,
		},
		{
			name: "channel lookup failure does not block",
			existing: []existing{
				{category: order.CategoryRanked},
				{category: order.CategoryRanked},
			},
			lookupErr: errors.New("discord unavailable"),
			wantOpen:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			channels := &mockChannels{lookupErr: tt.lookupErr}
			tickets := service.NewMemoryService(0)

			for i, e := range tt.existing {
				prev := testOrder()
				prev.ID = fmt.Sprintf("prev-%d", i)
				prev.Category = e.category
				ticket := order.NewTicket(prev.ID)
				ticket.ChannelID = fmt.Sprintf("prev-chan-%d", i)
				if e.closed {
					channels.deleted = append(channels.deleted, ticket.ChannelID)
				}
				if err := tickets.RecordTicket(ctx, prev, ticket); err != nil {
					t.Fatalf("RecordTicket() error = %v", err)
				}
			}

			RegisterActions(&Dependencies{Channels: channels, Messenger: &mockMessenger{}, Tickets: tickets})
			registry := action.NewRegistry()
			err := action.RegisterActions(registry, []action.ActionConfig{
				{ID: "limit", Type: CheckTicketLimitActionID, Enabled: true, Parameters: tt.params,
					Retry: &action.RetryConfig{MaxAttempts: 3}},
				{ID: "channel", Type: CreateTicketChannelActionID, Enabled: true},
				{ID: "record", Type: RecordTicketActionID, Enabled: true},
			})
			if err != nil {
				t.Fatalf("RegisterActions() error = %v", err)
			}

			o := testOrder()
			results, err := action.NewExecutor(registry).ExecuteMultiple(ctx, []string{"limit", "channel", "record"}, o, order.NewTicket(o.ID), true)

			if tt.wantReason != "" {
				var rejected *action.RejectedError
				if !errors.As(err, &rejected) {
					t.Fatalf("expected RejectedError, got %v", err)
				}
				if rejected.Reason != tt.wantReason {
					t.Errorf("reason = %q, want %q", rejected.Reason, tt.wantReason)
				}
				if len(results) != 1 || results[0].Attempts != 1 {
					t.Errorf("rejection should stop the hand-off after one attempt, results=%+v", results)
				}
				if len(channels.specs) != 0 {
					t.Errorf("no channel should be created, got %d", len(channels.specs))
				}
			} else {
				if err != nil {
					t.Fatalf("ExecuteMultiple() error = %v", err)
				}
				if len(channels.specs) != 1 {
					t.Errorf("expected a ticket channel, got %d", len(channels.specs))
				}
			}

			open, err := tickets.ListUserTickets(ctx, o.UserID)
			if err != nil {
				t.Fatalf("ListUserTickets() error = %v", err)
			}
			if len(open) != tt.wantOpen {
				t.Errorf("open tickets = %d, want %d", len(open), tt.wantOpen)
			}
		})
	}
}
