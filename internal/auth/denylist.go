package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "auth:revoked:"

// TokenDenylist stores revoked token IDs in Redis until their natural
// expiry. Logout writes here; the middleware consults it per request.
type TokenDenylist struct {
	client *redis.Client
}

// NewTokenDenylist constructs the deny-list over a shared client.
func NewTokenDenylist(client *redis.Client) *TokenDenylist {
	return &TokenDenylist{client: client}
}

// Revoke records the token ID for the remainder of its lifetime.
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if d == nil || d.client == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denylistPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether the token ID has been revoked. Redis being
// unreachable fails open so login sessions survive a cache outage.
func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) bool {
	if d == nil || d.client == nil {
		return false
	}
	n, err := d.client.Exists(ctx, denylistPrefix+tokenID).Result()
	if err != nil {
		return false
	}
	return n > 0
}
