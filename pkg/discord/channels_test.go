package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/bwmarrin/discordgo"
)

func TestChannelService_CreateTicketChannel(t *testing.T) {
	session := &fakeSession{}
	svc := NewChannelService(session, "guild-1")

	ch, err := svc.CreateTicketChannel(context.Background(), TicketChannelSpec{
		Name:         "400-600-booster",
		Topic:        "topic",
		ParentID:     "cat-1",
		CustomerID:   "user-1",
		StaffRoleIDs: []string{"staff-1", "staff-2"},
	})
	if err != nil {
		t.Fatalf("CreateTicketChannel() error = %v", err)
	}
	if ch.Name != "400-600-booster" {
		t.Errorf("channel name = %q", ch.Name)
	}

	if len(session.created) != 1 {
		t.Fatalf("expected 1 channel created, got %d", len(session.created))
	}
	data := session.created[0]
	if data.Type != discordgo.ChannelTypeGuildText || data.ParentID != "cat-1" || data.Topic != "topic" {
		t.Errorf("unexpected channel data: %+v", data)
	}
	if len(data.PermissionOverwrites) != 4 {
		t.Fatalf("expected 4 overwrites, got %d", len(data.PermissionOverwrites))
	}

	everyone := data.PermissionOverwrites[0]
	if everyone.ID != "guild-1" || everyone.Type != discordgo.PermissionOverwriteTypeRole || everyone.Deny&discordgo.PermissionViewChannel == 0 {
		t.Errorf("@everyone overwrite = %+v", everyone)
	}

	customer := data.PermissionOverwrites[1]
	if customer.ID != "user-1" || customer.Type != discordgo.PermissionOverwriteTypeMember {
		t.Errorf("customer overwrite = %+v", customer)
	}
	if customer.Allow&discordgo.PermissionSendMessages == 0 || customer.Deny&discordgo.PermissionMentionEveryone == 0 {
		t.Errorf("customer permissions allow=%d deny=%d", customer.Allow, customer.Deny)
	}

	for _, staff := range data.PermissionOverwrites[2:] {
		if staff.Type != discordgo.PermissionOverwriteTypeRole || staff.Allow&discordgo.PermissionManageChannels == 0 {
			t.Errorf("staff overwrite = %+v", staff)
		}
	}
}

func TestChannelService_CreateTicketChannelErrors(t *testing.T) {
	session := &fakeSession{}
	svc := NewChannelService(session, "guild-1")

	if _, err := svc.CreateTicketChannel(context.Background(), TicketChannelSpec{}); err == nil {
		t.Error("expected error for empty channel name")
	}

	session.createErr = errDiscordDown
	_, err := svc.CreateTicketChannel(context.Background(), TicketChannelSpec{Name: "x"})
	if !errors.Is(err, errDiscordDown) {
		t.Errorf("expected wrapped discord error, got %v", err)
	}
}

func TestChannelService_Messages(t *testing.T) {
	session := &fakeSession{}
	svc := NewChannelService(session, "guild-1")
	ctx := context.Background()
	o := &order.Order{ID: "order-1", UserID: "user-1", Category: order.CategoryOther, Request: "club league"}

	if _, err := svc.SendOrderRecap(ctx, "chan-1", o, []string{"<@user-1>", "<@&staff-1>"}); err != nil {
		t.Fatalf("SendOrderRecap() error = %v", err)
	}
	if _, err := svc.SendOrderLog(ctx, "log-1", o, &order.Ticket{OrderID: "order-1", ChannelID: "chan-1"}); err != nil {
		t.Fatalf("SendOrderLog() error = %v", err)
	}
	if _, err := svc.SendPanel(ctx, "panel-1"); err != nil {
		t.Fatalf("SendPanel() error = %v", err)
	}
	if err := svc.DeleteChannel(ctx, "chan-1"); err != nil {
		t.Fatalf("DeleteChannel() error = %v", err)
	}
	if err := svc.DeleteMessage(ctx, "log-1", "msg-2"); err != nil {
		t.Fatalf("DeleteMessage() error = %v", err)
	}

	if len(session.messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(session.messages))
	}
	recap := session.messages[0]
	if recap.channelID != "chan-1" || recap.data.Content != "<@user-1> <@&staff-1>" {
		t.Errorf("recap = %s %q", recap.channelID, recap.data.Content)
	}
	if recap.data.Embeds[0].Footer.Text != "Order order-1" {
		t.Errorf("recap footer = %q", recap.data.Embeds[0].Footer.Text)
	}
	if session.messages[1].channelID != "log-1" {
		t.Errorf("log channel = %s", session.messages[1].channelID)
	}
	if got := len(session.messages[2].data.Components); got != 1 {
		t.Errorf("panel rows = %d, want 1", got)
	}
	if len(session.deleted) != 1 || session.deleted[0] != "chan-1" {
		t.Errorf("deleted = %v", session.deleted)
	}
	if len(session.removed) != 1 || session.removed[0] != "log-1/msg-2" {
		t.Errorf("removed = %v", session.removed)
	}

	if ok, err := svc.ChannelExists(ctx, "chan-2"); err != nil || !ok {
		t.Errorf("ChannelExists(chan-2) = %v, %v; want true", ok, err)
	}
	if ok, err := svc.ChannelExists(ctx, "chan-1"); err != nil || ok {
		t.Errorf("ChannelExists(deleted) = %v, %v; want false", ok, err)
	}

	session.sendErr = errDiscordDown
	if _, err := svc.SendOrderRecap(ctx, "chan-1", o, nil); !errors.Is(err, errDiscordDown) {
		t.Errorf("expected wrapped send error, got %v", err)
	}
	if err := svc.DeleteMessage(ctx, "log-1", "msg-2"); !errors.Is(err, errDiscordDown) {
		t.Errorf("expected wrapped delete error, got %v", err)
	}
	if _, err := svc.ChannelExists(ctx, "chan-2"); !errors.Is(err, errDiscordDown) {
		t.Errorf("expected wrapped lookup error, got %v", err)
	}
}
