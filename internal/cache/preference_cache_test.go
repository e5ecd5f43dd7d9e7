package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kidsactivitytracker/backend/internal/domain"
)

func newTestCache(t *testing.T) (*PreferenceCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewPreferenceCache(client), mr
}

func TestCacheGetMissing(t *testing.T) {
	c, _ := newTestCache(t)

	if _, err := c.Get(context.Background(), uuid.New()); !errors.Is(err, ErrMiss) {
		t.Errorf("Get on empty cache: err = %v, want ErrMiss", err)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	child := &domain.ChildProfile{ID: uuid.New(), Name: "Mira", Age: 7}

	if err := c.Set(ctx, child); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("child:prefs:" + child.ID.String()) {
		t.Fatalf("profile not stored under child:prefs:%s", child.ID)
	}

	got, err := c.Get(ctx, child.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != child.ID || got.Name != child.Name || got.Age != child.Age {
		t.Errorf("Get = %+v, want %+v", got, child)
	}
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	id := uuid.New()
	mr.Set("child:prefs:"+id.String(), "{not json")

	if _, err := c.Get(context.Background(), id); !errors.Is(err, ErrMiss) {
		t.Errorf("Get on corrupt entry: err = %v, want ErrMiss", err)
	}
}

func TestCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	child := &domain.ChildProfile{ID: uuid.New(), Name: "Theo", Age: 9}

	if err := c.Set(ctx, child); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Invalidate(ctx, child.ID); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := c.Get(ctx, child.ID); !errors.Is(err, ErrMiss) {
		t.Errorf("Get after Invalidate: err = %v, want ErrMiss", err)
	}
}
