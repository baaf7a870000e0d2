package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samarthc/loan-manager-backend/internal/domain"
)

type Cache struct {
	Client *redis.Client
}

func New(addr, pass string, db int) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr, Password: pass, DB: db,
	})
	return &Cache{Client: rdb}
}

func profileKey(providerID string) string {
	return "profile:" + providerID
}

// GetProfile returns a cached identity-provider profile, or ErrCacheMiss.
func (c *Cache) GetProfile(ctx context.Context, providerID string) (domain.Profile, error) {
	raw, err := c.Client.Get(ctx, profileKey(providerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Profile{}, domain.ErrCacheMiss
		}
		return domain.Profile{}, err
	}
	var p domain.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// treat a corrupt entry as a miss
		return domain.Profile{}, domain.ErrCacheMiss
	}
	return p, nil
}

func (c *Cache) SetProfile(ctx context.Context, p domain.Profile, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, profileKey(p.ProviderID), raw, ttl).Err()
}

// AllowRequest: simple fixed-window rate limit per client IP.
func (c *Cache) AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error) {
	key := "ratelimit:" + ip
	count, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return true, nil // fail open
	}
	if count == 1 {
		_ = c.Client.Expire(ctx, key, window).Err()
	}
	return count <= int64(limit), nil
}
