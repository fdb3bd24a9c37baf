package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	profileKeyPrefix = "profile:"
	profileTTL       = time.Hour
)

// ProfileCache keeps resolved user profiles in Redis so a chatty channel does
// not hammer the users.info API on every message.
type ProfileCache struct {
	rdb *redis.Client
}

func NewProfileCache(redisURL string) (*ProfileCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &ProfileCache{rdb: rdb}, nil
}

func (c *ProfileCache) Get(ctx context.Context, userID string) (*UserProfile, bool) {
	raw, err := c.rdb.Get(ctx, profileKeyPrefix+userID).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("ProfileCache: get %s: %v", userID, err)
		}
		return nil, false
	}

	var profile UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		log.Printf("ProfileCache: bad payload for %s: %v", userID, err)
		return nil, false
	}
	return &profile, true
}

func (c *ProfileCache) Set(ctx context.Context, profile *UserProfile) {
	raw, err := json.Marshal(profile)
	if err != nil {
		log.Printf("ProfileCache: marshal %s: %v", profile.UserID, err)
		return
	}
	if err := c.rdb.Set(ctx, profileKeyPrefix+profile.UserID, raw, profileTTL).Err(); err != nil {
		log.Printf("ProfileCache: set %s: %v", profile.UserID, err)
	}
}

func (c *ProfileCache) Close() error {
	return c.rdb.Close()
}

// CachedClient fronts another Client with the profile cache. Cache failures
// only cost an extra API call, never an event.
type CachedClient struct {
	inner Client
	cache *ProfileCache
}

func NewCachedClient(inner Client, cache *ProfileCache) *CachedClient {
	return &CachedClient{inner: inner, cache: cache}
}

func (c *CachedClient) ResolveUser(ctx context.Context, userID string) (*UserProfile, error) {
	if profile, ok := c.cache.Get(ctx, userID); ok {
		return profile, nil
	}

	profile, err := c.inner.ResolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, profile)
	return profile, nil
}

func (c *CachedClient) OpenDM(ctx context.Context, userID string) (string, error) {
	return c.inner.OpenDM(ctx, userID)
}

func (c *CachedClient) PostMessage(ctx context.Context, channelID, text string) error {
	return c.inner.PostMessage(ctx, channelID, text)
}
