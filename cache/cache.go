package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"todo-auth-api/api"
)

const DefaultTTL = 5 * time.Minute

// Accounts is a read-through cache of accounts keyed by public id. A nil
// *Accounts is valid and caches nothing.
type Accounts struct {
	rdb *redis.Client
	ttl time.Duration
}

// Open connects to Redis at addr. An empty addr disables caching and returns
// a nil cache.
func Open(ctx context.Context, addr string, ttl time.Duration) (*Accounts, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return New(rdb, ttl), nil
}

func New(rdb *redis.Client, ttl time.Duration) *Accounts {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Accounts{rdb: rdb, ttl: ttl}
}

func (c *Accounts) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// tombstone marks an account as recently changed. Set never overwrites it,
// so a lookup that read the row before an update or delete cannot put the
// stale account back.
const tombstone = "-"

func key(publicID string) string {
	return "Account: " + publicID
}

// Get returns the cached account and true on a hit. Redis failures count as
// a miss.
func (c *Accounts) Get(ctx context.Context, publicID string) (api.Account, bool) {
	if c == nil {
		return api.Account{}, false
	}

	val, err := c.rdb.Get(ctx, key(publicID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("WARN: cache read for %s failed: %v", key(publicID), err)
		}
		return api.Account{}, false
	}
	if val == tombstone {
		return api.Account{}, false
	}

	var e entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		log.Printf("WARN: dropping undecodable cache entry %s: %v", key(publicID), err)
		return api.Account{}, false
	}
	log.Println("CACHE HIT for key:", key(publicID))
	return e.account(), true
}

func (c *Accounts) Set(ctx context.Context, a api.Account) {
	if c == nil {
		return
	}

	data, err := json.Marshal(newEntry(a))
	if err != nil {
		log.Printf("WARN: could not marshal account %s for cache: %v", a.PublicID, err)
		return
	}
	if err := c.rdb.SetNX(ctx, key(a.PublicID), data, c.ttl).Err(); err != nil {
		log.Printf("ERROR: failed to set cache key %s: %v", key(a.PublicID), err)
	}
}

// Invalidate drops the cached account and blocks re-caching it for one TTL.
func (c *Accounts) Invalidate(ctx context.Context, publicID string) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, key(publicID), tombstone, c.ttl).Err(); err != nil {
		log.Printf("WARN: failed to invalidate cache key %s: %v", key(publicID), err)
	}
}

// entry is the cached form of an account. api.Account hides its internal id
// and hash from JSON, the cache needs the id.
type entry struct {
	ID       int64  `json:"id"`
	PublicID string `json:"public_id"`
	Name     string `json:"name"`
	Admin    bool   `json:"admin"`
}

func newEntry(a api.Account) entry {
	return entry{ID: a.ID, PublicID: a.PublicID, Name: a.Name, Admin: a.Admin}
}

func (e entry) account() api.Account {
	return api.Account{ID: e.ID, PublicID: e.PublicID, Name: e.Name, Admin: e.Admin}
}
