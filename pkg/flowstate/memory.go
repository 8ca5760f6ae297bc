// Copyright (c) 2025 BoostDesk. All Rights Reserved.

package flowstate

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore implements Store in process memory. Flows are lost on restart.
type MemoryStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewMemoryStore creates an in-memory store whose entries expire after ttl.
// Expired entries are purged every cleanupInterval.
func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = ttl
	}
	return &MemoryStore{
		cache: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

// Get returns a copy of the stored flow.
func (m *MemoryStore) Get(_ context.Context, userID string) (*FlowState, error) {
	v, ok := m.cache.Get(userID)
	if !ok {
		return nil, ErrNotFound
	}
	state, ok := v.(*FlowState)
	if !ok {
		return nil, fmt.Errorf("unexpected value type %T for user %s", v, userID)
	}
	return state.Clone(), nil
}

// Save stores a copy of the flow and resets its expiry.
func (m *MemoryStore) Save(_ context.Context, state *FlowState) error {
	if state == nil || state.UserID == "" {
		return fmt.Errorf("flow state must have a user ID")
	}
	m.cache.Set(state.UserID, state.Clone(), m.ttl)
	return nil
}

// Delete removes the flow for a user.
func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.cache.Delete(userID)
	return nil
}

// Count returns the number of flows currently held, including expired entries
// not yet purged.
func (m *MemoryStore) Count() int {
	return m.cache.ItemCount()
}
