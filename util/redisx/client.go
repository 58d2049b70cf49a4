package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Dedup claims keys with SET NX so a notification is sent once per TTL window.
type Dedup struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDedup(rdb *redis.Client, ttl time.Duration) *Dedup { return &Dedup{rdb: rdb, ttl: ttl} }

// Claim returns true when the caller is the first to see key.
func (d *Dedup) Claim(ctx context.Context, key string) (bool, error) {
	return d.rdb.SetNX(ctx, key, "1", d.ttl).Result()
}
