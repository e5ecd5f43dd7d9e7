// Package cache holds the process-external preference cache. Profiles are
// cached per child id and invalidated on every write; the merge engine
// itself never touches this layer.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kidsactivitytracker/backend/internal/domain"
)

// ErrMiss is returned when no cached profile exists for the child.
var ErrMiss = errors.New("preference cache miss")

const (
	keyPrefix  = "child:prefs:"
	defaultTTL = 15 * time.Minute
)

type PreferenceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPreferenceCache(client *redis.Client) *PreferenceCache {
	return &PreferenceCache{client: client, ttl: defaultTTL}
}

func key(childID uuid.UUID) string {
	return keyPrefix + childID.String()
}

func (c *PreferenceCache) Get(ctx context.Context, childID uuid.UUID) (*domain.ChildProfile, error) {
	data, err := c.client.Get(ctx, key(childID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var child domain.ChildProfile
	if err := json.Unmarshal(data, &child); err != nil {
		// A stale or corrupt entry behaves like a miss; the store is the
		// source of truth.
		return nil, ErrMiss
	}
	return &child, nil
}

func (c *PreferenceCache) Set(ctx context.Context, child *domain.ChildProfile) error {
	data, err := json.Marshal(child)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, key(child.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached profile. Every write path must call this so
// the next merge reads a fresh profile.
func (c *PreferenceCache) Invalidate(ctx context.Context, childID uuid.UUID) error {
	if err := c.client.Del(ctx, key(childID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
