package builtin

import (
	"context"
	"fmt"

	"github.com/boostdesk/ticket-bot/pkg/action"
	"github.com/boostdesk/ticket-bot/pkg/order"
)

const (
	// PostOrderRecapActionID is the type of the order recap action
	PostOrderRecapActionID = "post_order_recap"

	// RecapMessageMetadataKey holds the recap message ID on the ticket.
	RecapMessageMetadataKey = "recap_message_id"
)

// PostOrderRecapAction posts the order recap in the ticket channel and pings
// the customer and staff.
type PostOrderRecapAction struct {
	config          action.ActionConfig
	messenger       OrderMessenger
	mentionCustomer bool
	mentionRoleIDs  []string
}

func NewPostOrderRecapAction(config action.ActionConfig, messenger OrderMessenger) *PostOrderRecapAction {
	return &PostOrderRecapAction{
		config:          config,
		messenger:       messenger,
		mentionCustomer: config.GetParameterBool("mention_customer", true),
		mentionRoleIDs:  config.GetParameterStringSlice("mention_role_ids", nil),
	}
}

func (a *PostOrderRecapAction) ID() string {
	return a.config.ID
}

func (a *PostOrderRecapAction) Name() string {
	return "Post Order Recap"
}

func (a *PostOrderRecapAction) Config() action.ActionConfig {
	return a.config
}

func (a *PostOrderRecapAction) mentions(o *order.Order) []string {
	var m []string
	if a.mentionCustomer {
		m = append(m, fmt.Sprintf("<@%s>", o.UserID))
	}
	for _, id := range a.mentionRoleIDs {
		m = append(m, fmt.Sprintf("<@&%s>", id))
	}
	return m
}

func (a *PostOrderRecapAction) Execute(ctx context.Context, o *order.Order, t *order.Ticket) error {
	if t == nil || t.ChannelID == "" {
		return fmt.Errorf("%w: no ticket channel for order %s", action.ErrMissingTicket, o.ID)
	}

	msg, err := a.messenger.SendOrderRecap(ctx, t.ChannelID, o, a.mentions(o))
	if err != nil {
		return err
	}

	t.SetMetadata(RecapMessageMetadataKey, msg.ID)
	return nil
}

// Rollback is not supported; the recap goes away with its channel.
func (a *PostOrderRecapAction) Rollback(ctx context.Context, o *order.Order, t *order.Ticket) error {
	return action.ErrRollbackNotSupported
}
