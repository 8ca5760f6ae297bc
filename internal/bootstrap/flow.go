// Copyright (c) 2025 BoostDesk. All Rights Reserved.

package bootstrap

import (
	"time"

	"github.com/boostdesk/ticket-bot/pkg/flow"
	"github.com/boostdesk/ticket-bot/pkg/flowstate"
	"github.com/boostdesk/ticket-bot/pkg/metrics"
	"github.com/boostdesk/ticket-bot/pkg/service"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Stores holds the flow state store and ticket archive picked for a backend.
type Stores struct {
	Flows   flowstate.Store
	Tickets service.TicketRecorder
}

// InitStores creates the flow state store and ticket archive. A nil client
// selects the in-memory implementations.
//
// ============================================================
// DEVELOPER: Storage backends
// ============================================================
// STORE_BACKEND=redis keeps flows and tickets across restarts and
// lets several bot replicas share state. STORE_BACKEND=memory is
// meant for local development: everything is lost on restart.
// ============================================================
func InitStores(client *redis.Client, flowTTL, ticketTTL time.Duration) (*Stores, error) {
	if client == nil {
		logrus.Warn("using in-memory stores, flows and tickets are lost on restart")
		return &Stores{
			Flows:   flowstate.NewMemoryStore(flowTTL, 0),
			Tickets: service.NewMemoryService(ticketTTL),
		}, nil
	}

	tickets, err := service.NewRedisService(client, service.RedisServiceConfig{TTL: ticketTTL})
	if err != nil {
		return nil, err
	}

	logrus.Infof("using Redis stores (flow TTL %v)", flowTTL)
	return &Stores{
		Flows:   flowstate.NewRedisStore(client, flowstate.RedisStoreConfig{TTL: flowTTL}),
		Tickets: tickets,
	}, nil
}

// InitFlowController creates the order flow controller handing confirmed
// orders to handoff.
func InitFlowController(store flowstate.Store, handoff flow.Handoff, collectors *metrics.Collectors) *flow.Controller {
	var opts []flow.Option
	if collectors != nil {
		opts = append(opts, flow.WithMetrics(collectors))
	}

	controller := flow.NewController(store, handoff, opts...)
	logrus.Infof("initialized order flow controller")

	return controller
}
