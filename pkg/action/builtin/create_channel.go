package builtin

import (
	"context"

	"github.com/boostdesk/ticket-bot/pkg/action"
	"github.com/boostdesk/ticket-bot/pkg/discord"
	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/sirupsen/logrus"
)

const (
	// CreateTicketChannelActionID is the type of the private ticket channel action
	CreateTicketChannelActionID = "create_ticket_channel"
)

// CreateTicketChannelAction opens a private channel for the order, visible
// to the customer and the staff roles, under the Discord category configured
// for the order's boost type.
type CreateTicketChannelAction struct {
	config            action.ActionConfig
	channels          ChannelProvisioner
	categoryIDs       map[string]string
	defaultCategoryID string
	staffRoleIDs      []string
}

// NewCreateTicketChannelAction creates a new ticket channel action.
func NewCreateTicketChannelAction(config action.ActionConfig, channels ChannelProvisioner) *CreateTicketChannelAction {
	a := &CreateTicketChannelAction{
		config:            config,
		channels:          channels,
		categoryIDs:       config.GetParameterStringMap("category_ids"),
		defaultCategoryID: config.GetParameterString("default_category_id", ""),
		staffRoleIDs:      config.GetParameterStringSlice("staff_role_ids", nil),
	}

	logrus.Infof("creating ticket channel action: categories=%d, staffRoles=%d", len(a.categoryIDs), len(a.staffRoleIDs))
	return a
}

// ID returns the action identifier.
func (a *CreateTicketChannelAction) ID() string {
	return a.config.ID
}

// Name returns the action name.
func (a *CreateTicketChannelAction) Name() string {
	return "Create Ticket Channel"
}

// Config returns the action configuration.
func (a *CreateTicketChannelAction) Config() action.ActionConfig {
	return a.config
}

func (a *CreateTicketChannelAction) parentID(c order.Category) string {
	if id := a.categoryIDs[string(c)]; id != "" {
		return id
	}
	return a.defaultCategoryID
}

// Execute creates the channel and stores its ID and name on the ticket.
func (a *CreateTicketChannelAction) Execute(ctx context.Context, o *order.Order, t *order.Ticket) error {
	if t == nil {
		return action.ErrMissingTicket
	}
	if t.ChannelID != "" {
		logrus.Warnf("ticket for order %s already has channel %s, skipping creation", o.ID, t.ChannelID)
		return nil
	}

	ch, err := a.channels.CreateTicketChannel(ctx, discord.TicketChannelSpec{
		Name:         discord.TicketChannelName(o),
		Topic:        discord.TicketTopic(o),
		ParentID:     a.parentID(o.Category),
		CustomerID:   o.UserID,
		StaffRoleIDs: a.staffRoleIDs,
	})
	if err != nil {
		return err
	}

	t.ChannelID = ch.ID
	t.ChannelName = ch.Name
	return nil
}

// Rollback deletes the channel created by Execute.
func (a *CreateTicketChannelAction) Rollback(ctx context.Context, o *order.Order, t *order.Ticket) error {
	if t == nil || t.ChannelID == "" {
		return nil
	}

	if err := a.channels.DeleteChannel(ctx, t.ChannelID); err != nil {
		return err
	}

	logrus.Infof("removed ticket channel %s of order %s", t.ChannelID, o.ID)
	t.ChannelID = ""
	t.ChannelName = ""
	return nil
}
