package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/patrickmn/go-cache"
)

// MemoryService keeps ticket records in process memory. Records are lost on
// restart, so it is only meant for local runs without Redis.
type MemoryService struct {
	cache *cache.Cache
	// open maps the order IDs of unclosed tickets to their user ID.
	open *cache.Cache
}

// NewMemoryService creates an in-memory recorder. A zero ttl keeps records
// until the process exits.
func NewMemoryService(ttl time.Duration) *MemoryService {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MemoryService{
		cache: cache.New(ttl, 10*time.Minute),
		open:  cache.New(ttl, 10*time.Minute),
	}
}

func (m *MemoryService) RecordTicket(_ context.Context, o *order.Order, t *order.Ticket) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("order must have an ID")
	}
	m.cache.SetDefault(o.ID, &TicketRecord{Order: o, Ticket: t, RecordedAt: time.Now().UTC()})
	if o.UserID != "" {
		m.open.SetDefault(o.ID, o.UserID)
	}
	return nil
}

func (m *MemoryService) GetTicket(_ context.Context, orderID string) (*TicketRecord, error) {
	v, ok := m.cache.Get(orderID)
	if !ok {
		return nil, ErrTicketNotFound
	}
	return v.(*TicketRecord), nil
}

func (m *MemoryService) DeleteTicket(_ context.Context, orderID string) error {
	m.cache.Delete(orderID)
	m.open.Delete(orderID)
	return nil
}

func (m *MemoryService) ListUserTickets(_ context.Context, userID string) ([]*TicketRecord, error) {
	var records []*TicketRecord
	for orderID, item := range m.open.Items() {
		if item.Object.(string) != userID {
			continue
		}
		if v, ok := m.cache.Get(orderID); ok {
			records = append(records, v.(*TicketRecord))
		}
	}
	return records, nil
}

func (m *MemoryService) CloseTicket(_ context.Context, _, orderID string) error {
	m.open.Delete(orderID)
	return nil
}
