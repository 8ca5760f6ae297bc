package builtin

import (
	"context"
	"fmt"

	"github.com/boostdesk/ticket-bot/pkg/action"
	"github.com/boostdesk/ticket-bot/pkg/discord"
	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/boostdesk/ticket-bot/pkg/service"
	"github.com/bwmarrin/discordgo"
)

// ChannelProvisioner creates, looks up and removes ticket channels.
type ChannelProvisioner interface {
	CreateTicketChannel(ctx context.Context, spec discord.TicketChannelSpec) (*discordgo.Channel, error)
	ChannelExists(ctx context.Context, channelID string) (bool, error)
	DeleteChannel(ctx context.Context, channelID string) error
}

// OrderMessenger posts order messages to channels.
type OrderMessenger interface {
	SendOrderRecap(ctx context.Context, channelID string, o *order.Order, mentions []string) (*discordgo.Message, error)
	SendOrderLog(ctx context.Context, channelID string, o *order.Order, t *order.Ticket) (*discordgo.Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// Dependencies holds dependencies needed by built-in actions.
type Dependencies struct {
	Channels  ChannelProvisioner
	Messenger OrderMessenger
	Tickets   service.TicketRecorder
}

// RegisterActions registers built-in action factories with dependencies.
// Factories fail when the dependency an action needs is missing.
func RegisterActions(deps *Dependencies) {
	if deps == nil {
		deps = &Dependencies{}
	}

	action.RegisterActionType(CheckTicketLimitActionID, func(config action.ActionConfig) (action.Action, error) {
		if deps.Tickets == nil {
			return nil, missingDependency(config, "ticket recorder")
		}
		return NewCheckTicketLimitAction(config, deps.Tickets, deps.Channels), nil
	})

	action.RegisterActionType(CreateTicketChannelActionID, func(config action.ActionConfig) (action.Action, error) {
		if deps.Channels == nil {
			return nil, missingDependency(config, "channel provisioner")
		}
		return NewCreateTicketChannelAction(config, deps.Channels), nil
	})

	action.RegisterActionType(PostOrderRecapActionID, func(config action.ActionConfig) (action.Action, error) {
		if deps.Messenger == nil {
			return nil, missingDependency(config, "order messenger")
		}
		return NewPostOrderRecapAction(config, deps.Messenger), nil
	})

	action.RegisterActionType(LogOrderActionID, func(config action.ActionConfig) (action.Action, error) {
		return NewLogOrderAction(config, deps.Messenger), nil
	})

	action.RegisterActionType(RecordTicketActionID, func(config action.ActionConfig) (action.Action, error) {
		if deps.Tickets == nil {
			return nil, missingDependency(config, "ticket recorder")
		}
		return NewRecordTicketAction(config, deps.Tickets), nil
	})
}

func missingDependency(config action.ActionConfig, name string) error {
	return fmt.Errorf("%w: action %s requires a %s", action.ErrInvalidConfig, config.ID, name)
}
