package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const defaultTicketKeyPrefix = "ticket:"

// RedisService stores ticket records in Redis.
type RedisService struct {
	client redis.UniversalClient
	cfg    RedisServiceConfig
	now    func() time.Time
}

// RedisServiceConfig sets the record key prefix and retention. A zero TTL
// keeps records forever.
type RedisServiceConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

func NewRedisService(
	client redis.UniversalClient,
	cfg RedisServiceConfig,
) (*RedisService, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultTicketKeyPrefix
	}
	return &RedisService{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}, nil
}

func (r *RedisService) key(orderID string) string {
	return r.cfg.KeyPrefix + orderID
}

// userKey names the set of a user's unclosed order IDs.
func (r *RedisService) userKey(userID string) string {
	return r.cfg.KeyPrefix + "user:" + userID
}

// RecordTicket stores the order and its ticket under the order ID.
func (r *RedisService) RecordTicket(ctx context.Context, o *order.Order, t *order.Ticket) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("order must have an ID")
	}

	data, err := json.Marshal(&TicketRecord{Order: o, Ticket: t, RecordedAt: r.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal ticket record: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(o.ID), data, r.cfg.TTL)
		if o.UserID != "" {
			pipe.SAdd(ctx, r.userKey(o.UserID), o.ID)
			if r.cfg.TTL > 0 {
				pipe.Expire(ctx, r.userKey(o.UserID), r.cfg.TTL)
			}
		}
		return nil
	})
	if err != nil {
		logrus.Errorf("failed to record ticket for order %s: %v", o.ID, err)
		return fmt.Errorf("failed to record ticket: %w", err)
	}

	logrus.Debugf("recorded ticket for order %s", o.ID)
	return nil
}

// GetTicket returns the record of an order or ErrTicketNotFound.
func (r *RedisService) GetTicket(ctx context.Context, orderID string) (*TicketRecord, error) {
	data, err := r.client.Get(ctx, r.key(orderID)).Bytes()
	if err == redis.Nil {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket record: %w", err)
	}

	var rec TicketRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticket record: %w", err)
	}
	return &rec, nil
}

// DeleteTicket removes the record of an order and its user index entry.
// Missing records are ignored.
func (r *RedisService) DeleteTicket(ctx context.Context, orderID string) error {
	rec, err := r.GetTicket(ctx, orderID)
	if err != nil && !errors.Is(err, ErrTicketNotFound) {
		logrus.Warnf("deleting order %s without its user index entry: %v", orderID, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(orderID))
		if rec != nil && rec.Order != nil && rec.Order.UserID != "" {
			pipe.SRem(ctx, r.userKey(rec.Order.UserID), orderID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete ticket record: %w", err)
	}
	return nil
}

// ListUserTickets returns the unclosed records of userID. Index entries whose
// record expired are pruned.
func (r *RedisService) ListUserTickets(ctx context.Context, userID string) ([]*TicketRecord, error) {
	orderIDs, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets of user %s: %w", userID, err)
	}
	if len(orderIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		keys[i] = r.key(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets of user %s: %w", userID, err)
	}

	var records []*TicketRecord
	var stale []interface{}
	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			stale = append(stale, orderIDs[i])
			continue
		}
		var rec TicketRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			logrus.Warnf("skipping unreadable ticket record %s: %v", orderIDs[i], err)
			continue
		}
		records = append(records, &rec)
	}

	if len(stale) > 0 {
		if err := r.client.SRem(ctx, r.userKey(userID), stale...).Err(); err != nil {
			logrus.Warnf("failed to prune ticket index of user %s: %v", userID, err)
		}
	}
	return records, nil
}

// CloseTicket removes orderID from the user's index.
func (r *RedisService) CloseTicket(ctx context.Context, userID, orderID string) error {
	if err := r.client.SRem(ctx, r.userKey(userID), orderID).Err(); err != nil {
		return fmt.Errorf("failed to close ticket %s: %w", orderID, err)
	}
	return nil
}
