// Copyright (c) 2025 BoostDesk. All Rights Reserved.

package flowstate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RedisStore implements Store using Redis, one JSON document per user.
type RedisStore struct {
	client *redis.Client
	cfg    RedisStoreConfig
}

// RedisStoreConfig tunes key naming and expiry. Zero values use the defaults.
type RedisStoreConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

// NewRedisStore creates a new Redis-backed flow state store.
func NewRedisStore(client *redis.Client, cfg RedisStoreConfig) *RedisStore {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = KeyPrefix
	}
	return &RedisStore{
		client: client,
		cfg:    cfg,
	}
}

// Get retrieves the flow for a user. Returns ErrNotFound when none exists.
func (r *RedisStore) Get(ctx context.Context, userID string) (*FlowState, error) {
	key := makeKey(r.cfg.KeyPrefix, userID)

	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		logrus.Errorf("failed to get flow state for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to get flow state: %w", err)
	}

	var state FlowState
	if err := json.Unmarshal(data, &state); err != nil {
		logrus.Errorf("failed to unmarshal flow state for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to unmarshal flow state: %w", err)
	}

	logrus.Debugf("retrieved flow state for user %s (step: %s)", userID, state.Step)
	return &state, nil
}

// Save writes the flow and resets its TTL.
func (r *RedisStore) Save(ctx context.Context, state *FlowState) error {
	if state == nil || state.UserID == "" {
		return fmt.Errorf("flow state must have a user ID")
	}
	key := makeKey(r.cfg.KeyPrefix, state.UserID)

	data, err := json.Marshal(state)
	if err != nil {
		logrus.Errorf("failed to marshal flow state for user %s: %v", state.UserID, err)
		return fmt.Errorf("failed to marshal flow state: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.cfg.TTL).Err(); err != nil {
		logrus.Errorf("failed to set flow state for user %s: %v", state.UserID, err)
		return fmt.Errorf("failed to set flow state: %w", err)
	}

	logrus.Debugf("saved flow state for user %s with TTL %v", state.UserID, r.cfg.TTL)
	return nil
}

// Delete removes the flow for a user. Deleting a missing flow is not an error.
func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	key := makeKey(r.cfg.KeyPrefix, userID)

	if err := r.client.Del(ctx, key).Err(); err != nil {
		logrus.Errorf("failed to delete flow state for user %s: %v", userID, err)
		return fmt.Errorf("failed to delete flow state: %w", err)
	}

	logrus.Debugf("deleted flow state for user %s", userID)
	return nil
}
