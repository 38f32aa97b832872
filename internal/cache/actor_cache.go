// Package cache keeps short-lived snapshots of resolved actors in Redis so
// that every request does not reload roles, permissions and departments.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"removaltracker/internal/authz"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ActorCache caches authz.Actor snapshots by user id. A cache without a
// client is valid and caches nothing.
type ActorCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Entry
}

// NewActorCache wraps an already connected client. client may be nil.
func NewActorCache(client *redis.Client, ttl time.Duration) *ActorCache {
	return &ActorCache{
		client: client,
		ttl:    ttl,
		log:    logrus.WithField("component", "actor_cache"),
	}
}

// Connect dials Redis and pings it. When Redis is unreachable the returned
// cache degrades to no caching instead of failing start-up.
func Connect(addr, password string, db int, ttl time.Duration) *ActorCache {
	if addr == "" {
		logrus.WithField("component", "actor_cache").Info("REDIS_ADDR not configured, actor caching disabled")
		return NewActorCache(nil, ttl)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithField("component", "actor_cache").WithError(err).Warn("Redis unreachable, continuing without actor caching")
		_ = client.Close()
		return NewActorCache(nil, ttl)
	}

	return NewActorCache(client, ttl)
}

func (c *ActorCache) key(userID uuid.UUID) string {
	return fmt.Sprintf("actor:%s", userID.String())
}

// Get returns the cached actor, or nil on a miss or when caching is disabled.
func (c *ActorCache) Get(ctx context.Context, userID uuid.UUID) (*authz.Actor, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read actor cache: %w", err)
	}

	var actor authz.Actor
	if err := json.Unmarshal(data, &actor); err != nil {
		return nil, fmt.Errorf("failed to decode cached actor: %w", err)
	}
	return &actor, nil
}

// Set stores a snapshot for the configured TTL.
func (c *ActorCache) Set(ctx context.Context, actor *authz.Actor) error {
	if c == nil || c.client == nil || actor == nil {
		return nil
	}

	data, err := json.Marshal(actor)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(actor.ID), data, c.ttl).Err()
}

// Invalidate drops the snapshot of one user.
func (c *ActorCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(userID)).Err()
}

// InvalidateAll drops every snapshot, e.g. after the role catalog was reseeded.
func (c *ActorCache) InvalidateAll(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, "actor:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	c.log.Debug("no cached actors to invalidate")
	return nil
}

// IsAvailable returns true if snapshots are actually cached.
func (c *ActorCache) IsAvailable() bool {
	return c != nil && c.client != nil
}

// Close closes the Redis connection.
func (c *ActorCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
