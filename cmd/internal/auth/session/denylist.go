package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked token ids until their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, jti string, expiresAt, now time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisDenylist keeps one key per revoked jti with a TTL equal to the
// token's remaining lifetime, so entries expire on their own.
type RedisDenylist struct {
	client redis.Cmdable
	prefix string
}

func NewRedisDenylist(client redis.Cmdable, prefix string) *RedisDenylist {
	if prefix == "" {
		prefix = DefaultConfig().RevocationPrefix
	}
	return &RedisDenylist{client: client, prefix: prefix}
}

func (d *RedisDenylist) key(jti string) string { return d.prefix + jti }

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, expiresAt, now time.Time) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return errors.New("session: empty jti")
	}
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, d.key(jti), "1", ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, nil
	}
	n, err := d.client.Exists(ctx, d.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryDenylist is a process-local Denylist for single-instance runs and tests.
type MemoryDenylist struct {
	mu      sync.Mutex
	now     func() time.Time
	revoked map[string]time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (d *MemoryDenylist) Revoke(ctx context.Context, jti string, expiresAt, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return errors.New("session: empty jti")
	}
	if !expiresAt.After(now) {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.revoked[jti] = expiresAt
	for k, exp := range d.revoked {
		if !exp.After(now) {
			delete(d.revoked, k)
		}
	}
	return nil
}

func (d *MemoryDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.revoked[jti]
	if !ok {
		return false, nil
	}
	if !exp.After(d.now()) {
		delete(d.revoked, jti)
		return false, nil
	}
	return true, nil
}

var (
	_ Denylist = (*RedisDenylist)(nil)
	_ Denylist = (*MemoryDenylist)(nil)
)
