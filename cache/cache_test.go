package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"todo-auth-api/api"
)

func TestNilCacheIsANoop(t *testing.T) {
	var c *Accounts
	ctx := context.Background()

	c.Set(ctx, api.Account{ID: 1, PublicID: "pub-alice"})
	if _, ok := c.Get(ctx, "pub-alice"); ok {
		t.Error("expected a miss from a nil cache")
	}
	c.Invalidate(ctx, "pub-alice")
	if err := c.Close(); err != nil {
		t.Errorf("close nil cache: %v", err)
	}

	disabled, err := Open(ctx, "", time.Minute)
	if err != nil {
		t.Fatalf("open with empty addr: %v", err)
	}
	if disabled != nil {
		t.Error("expected caching to be disabled for an empty addr")
	}
}

func TestAccountsRoundTrip(t *testing.T) {
	redisAddr := os.Getenv("REDIS_TEST_ADDR")
	if redisAddr == "" {
		t.Skip("REDIS_TEST_ADDR is not set")
	}

	ctx := context.Background()
	c, err := Open(ctx, redisAddr, time.Minute)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer c.Close()

	want := api.Account{ID: 7, PublicID: "pub-cache-test", Name: "alice", PasswordHash: "secret"}
	c.rdb.Del(ctx, key(want.PublicID))
	defer c.rdb.Del(ctx, key(want.PublicID))

	if _, ok := c.Get(ctx, want.PublicID); ok {
		t.Fatal("expected a miss before Set")
	}

	c.Set(ctx, want)
	got, ok := c.Get(ctx, want.PublicID)
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if got.ID != want.ID || got.Name != want.Name {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if got.PasswordHash != "" {
		t.Error("password hash must not be cached")
	}

	c.Invalidate(ctx, want.PublicID)
	if _, ok := c.Get(ctx, want.PublicID); ok {
		t.Error("expected a miss after Invalidate")
	}

	// A lookup that read the row before the invalidation must not revive it.
	c.Set(ctx, want)
	if _, ok := c.Get(ctx, want.PublicID); ok {
		t.Error("expected Set after Invalidate to be ignored")
	}
}
