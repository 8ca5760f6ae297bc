// Copyright (c) 2025 BoostDesk. All Rights Reserved.

package flowstate

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const defaultHealthTimeout = 2 * time.Second

// HealthChecker reports whether the Redis backing the flow store is reachable.
type HealthChecker struct {
	client  *redis.Client
	timeout time.Duration
}

// NewHealthChecker creates a health checker for the given client.
func NewHealthChecker(client *redis.Client) *HealthChecker {
	return &HealthChecker{client: client, timeout: defaultHealthTimeout}
}

// Check pings Redis within the checker timeout.
func (h *HealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.client.Ping(ctx).Err(); err != nil {
		logrus.Errorf("flow store health check failed: %v", err)
		return fmt.Errorf("redis ping: %w", err)
	}

	logrus.Debugf("flow store health check passed")
	return nil
}

// IsHealthy returns true if Redis is accessible.
func (h *HealthChecker) IsHealthy(ctx context.Context) bool {
	return h.Check(ctx) == nil
}
