// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker records tokens that were logged out before they expired.
type Revoker interface {
	Revoke(ctx context.Context, id string, ttl time.Duration) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// keyPrefix namespaces revocation keys in Valkey to avoid collisions.
const keyPrefix = "session:revoked:"

// ValkeyRevoker keeps revoked token IDs in Valkey until the token would
// have expired anyway.
type ValkeyRevoker struct {
	client *redis.Client
}

// NewValkeyRevoker creates a revocation list backed by the given Valkey client.
func NewValkeyRevoker(client *redis.Client) *ValkeyRevoker {
	return &ValkeyRevoker{client: client}
}

// Revoke marks the token ID as revoked for ttl.
func (v *ValkeyRevoker) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	if err := v.client.Set(ctx, keyPrefix+id, 1, ttl).Err(); err != nil {
		return fmt.Errorf("valkey revoke: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token ID has been revoked.
func (v *ValkeyRevoker) IsRevoked(ctx context.Context, id string) (bool, error) {
	err := v.client.Get(ctx, keyPrefix+id).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("valkey revoked lookup: %w", err)
	}
	return true, nil
}
