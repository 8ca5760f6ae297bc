package service

import (
	"time"

	"github.com/boostdesk/ticket-bot/pkg/order"
)

// TicketRecord is the archived hand-off of one confirmed order.
type TicketRecord struct {
	Order      *order.Order  `json:"order"`
	Ticket     *order.Ticket `json:"ticket"`
	RecordedAt time.Time     `json:"recorded_at"`
}
