// Copyright (c) 2025 BoostDesk. All Rights Reserved.

package flowstate

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultTTL is how long an untouched flow is kept before it expires.
	DefaultTTL = 30 * time.Minute
	// KeyPrefix is the prefix for all flow state keys.
	KeyPrefix = "boost_ticket:flow_state:"
)

// ErrNotFound is returned when a user has no flow in progress.
var ErrNotFound = errors.New("flow state not found")

// Store persists one FlowState per user.
// Implementations refresh the entry TTL on every Save.
type Store interface {
	Get(ctx context.Context, userID string) (*FlowState, error)
	Save(ctx context.Context, state *FlowState) error
	Delete(ctx context.Context, userID string) error
}

func makeKey(prefix, userID string) string {
	return prefix + userID
}
