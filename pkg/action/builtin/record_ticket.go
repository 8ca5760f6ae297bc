package builtin

import (
	"context"

	"github.com/boostdesk/ticket-bot/pkg/action"
	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/boostdesk/ticket-bot/pkg/service"
)

const (
	// RecordTicketActionID is the type of the ticket archive action
	RecordTicketActionID = "record_ticket"
)

// RecordTicketAction archives the order and its ticket.
type RecordTicketAction struct {
	config  action.ActionConfig
	tickets service.TicketRecorder
}

func NewRecordTicketAction(config action.ActionConfig, tickets service.TicketRecorder) *RecordTicketAction {
	return &RecordTicketAction{
		config:  config,
		tickets: tickets,
	}
}

func (a *RecordTicketAction) ID() string {
	return a.config.ID
}

func (a *RecordTicketAction) Name() string {
	return "Record Ticket"
}

func (a *RecordTicketAction) Config() action.ActionConfig {
	return a.config
}

func (a *RecordTicketAction) Execute(ctx context.Context, o *order.Order, t *order.Ticket) error {
	if t == nil {
		return action.ErrMissingTicket
	}
	return a.tickets.RecordTicket(ctx, o, t)
}

func (a *RecordTicketAction) Rollback(ctx context.Context, o *order.Order, t *order.Ticket) error {
	return a.tickets.DeleteTicket(ctx, o.ID)
}
