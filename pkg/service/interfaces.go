package service

import (
	"context"
	"errors"

	"github.com/boostdesk/ticket-bot/pkg/order"
)

// ErrTicketNotFound is returned when no record exists for an order.
var ErrTicketNotFound = errors.New("ticket record not found")

// TicketRecorder archives provisioned tickets so staff tooling can look up
// an order after its flow state is gone. Every record is also indexed under
// its customer until the ticket is closed.
//
// Implementations must be safe for concurrent use.
type TicketRecorder interface {
	RecordTicket(ctx context.Context, o *order.Order, t *order.Ticket) error
	GetTicket(ctx context.Context, orderID string) (*TicketRecord, error)
	DeleteTicket(ctx context.Context, orderID string) error

	// ListUserTickets returns the records still indexed for userID.
	ListUserTickets(ctx context.Context, userID string) ([]*TicketRecord, error)
	// CloseTicket drops an order from its user's index. The record stays archived.
	CloseTicket(ctx context.Context, userID, orderID string) error
}
