package builtin

import (
	"context"

	"github.com/boostdesk/ticket-bot/pkg/action"
	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/sirupsen/logrus"
)

const (
	// LogOrderActionID is the type of the staff order log action
	LogOrderActionID = "log_order"

	// LogMessageMetadataKey holds the staff log message ID on the ticket.
	LogMessageMetadataKey = "log_message_id"
)

// LogOrderAction announces a new order in the staff log channel. Without a
// configured channel it only writes the order to the service log.
type LogOrderAction struct {
	config    action.ActionConfig
	messenger OrderMessenger
	channelID string
}

func NewLogOrderAction(config action.ActionConfig, messenger OrderMessenger) *LogOrderAction {
	return &LogOrderAction{
		config:    config,
		messenger: messenger,
		channelID: config.GetParameterString("channel_id", ""),
	}
}

func (a *LogOrderAction) ID() string {
	return a.config.ID
}

func (a *LogOrderAction) Name() string {
	return "Log Order"
}

func (a *LogOrderAction) Config() action.ActionConfig {
	return a.config
}

func (a *LogOrderAction) Execute(ctx context.Context, o *order.Order, t *order.Ticket) error {
	fields := logrus.Fields{
		"order_id":       o.ID,
		"user_id":        o.UserID,
		"category":       o.Category,
		"payment_method": o.PaymentMethod,
	}
	if o.Priced() {
		fields["price"] = o.Price.StringFixed(2)
	}
	if t != nil {
		fields["channel_id"] = t.ChannelID
	}
	logrus.WithFields(fields).Info("new order")

	if a.channelID == "" || a.messenger == nil {
		return nil
	}

	msg, err := a.messenger.SendOrderLog(ctx, a.channelID, o, t)
	if err != nil {
		return err
	}

	if t != nil {
		t.SetMetadata(LogMessageMetadataKey, msg.ID)
	}
	return nil
}

// Rollback deletes the staff log message posted by Execute, if any.
func (a *LogOrderAction) Rollback(ctx context.Context, o *order.Order, t *order.Ticket) error {
	if t == nil || a.messenger == nil {
		return nil
	}
	messageID := t.Metadata[LogMessageMetadataKey]
	if messageID == "" || a.channelID == "" {
		return nil
	}

	if err := a.messenger.DeleteMessage(ctx, a.channelID, messageID); err != nil {
		return err
	}
	delete(t.Metadata, LogMessageMetadataKey)
	return nil
}
