package builtin

import (
	"context"
	"fmt"

	"github.com/boostdesk/ticket-bot/pkg/action"
	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/boostdesk/ticket-bot/pkg/service"
	"github.com/sirupsen/logrus"
)

const (
	// CheckTicketLimitActionID is the type of the open ticket limit action
	CheckTicketLimitActionID = "check_ticket_limit"

	defaultMaxTickets            = 3
	defaultMaxTicketsPerCategory = 2
)

// CheckTicketLimitAction refuses an order when the customer already holds too
// many open tickets. A ticket is open while its channel exists; tickets whose
// channel was deleted are closed in the recorder on the way.
//
// A zero limit disables that check.
type CheckTicketLimitAction struct {
	config         action.ActionConfig
	tickets        service.TicketRecorder
	channels       ChannelProvisioner
	maxTotal       int
	maxPerCategory int
}

func NewCheckTicketLimitAction(config action.ActionConfig, tickets service.TicketRecorder, channels ChannelProvisioner) *CheckTicketLimitAction {
	return &CheckTicketLimitAction{
		config:         config,
		tickets:        tickets,
		channels:       channels,
		maxTotal:       config.GetParameterInt("max_total", defaultMaxTickets),
		maxPerCategory: config.GetParameterInt("max_per_category", defaultMaxTicketsPerCategory),
	}
}

func (a *CheckTicketLimitAction) ID() string {
	return a.config.ID
}

func (a *CheckTicketLimitAction) Name() string {
	return "Check Ticket Limit"
}

func (a *CheckTicketLimitAction) Config() action.ActionConfig {
	return a.config
}

// Execute fails open when the archive or Discord cannot be read.
func (a *CheckTicketLimitAction) Execute(ctx context.Context, o *order.Order, t *order.Ticket) error {
	records, err := a.tickets.ListUserTickets(ctx, o.UserID)
	if err != nil {
		logrus.Warnf("skipping ticket limit for user %s: %v", o.UserID, err)
		return nil
	}

	total := 0
	inCategory := 0
	for _, rec := range records {
		if rec.Order == nil || !a.isOpen(ctx, o.UserID, rec) {
			continue
		}
		total++
		if rec.Order.Category == o.Category {
			inCategory++
		}
	}
	logrus.Debugf("user %s holds %d open tickets (%d %s)", o.UserID, total, inCategory, o.Category)

	if a.maxTotal > 0 && total >= a.maxTotal {
		return a.reject(fmt.Sprintf("You have reached the maximum of %d open tickets (%d/%d). Please close an existing ticket before opening a new one.",
			a.maxTotal, total, a.maxTotal))
	}
	if a.maxPerCategory > 0 && inCategory >= a.maxPerCategory {
		return a.reject(fmt.Sprintf("You have reached the maximum of %d open %s tickets (%d/%d). Please close an existing %s ticket before opening a new one.",
			a.maxPerCategory, o.Category, inCategory, a.maxPerCategory, o.Category))
	}
	return nil
}

func (a *CheckTicketLimitAction) isOpen(ctx context.Context, userID string, rec *service.TicketRecord) bool {
	if rec.Ticket == nil || rec.Ticket.ChannelID == "" {
		return false
	}
	if a.channels == nil {
		return true
	}

	exists, err := a.channels.ChannelExists(ctx, rec.Ticket.ChannelID)
	if err != nil {
		logrus.Warnf("not counting ticket %s of user %s: %v", rec.Order.ID, userID, err)
		return false
	}
	if !exists {
		if err := a.tickets.CloseTicket(ctx, userID, rec.Order.ID); err != nil {
			logrus.Warnf("failed to close ticket %s: %v", rec.Order.ID, err)
		}
	}
	return exists
}

func (a *CheckTicketLimitAction) reject(reason string) error {
	return &action.RejectedError{ActionID: a.config.ID, Reason: reason}
}

// Rollback has nothing to undo.
func (a *CheckTicketLimitAction) Rollback(ctx context.Context, o *order.Order, t *order.Ticket) error {
	return nil
}
