package cache

import (
	"context"
	"sync/atomic"

	expirable "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// LRU is an in-memory cache with a size bound and a per-entry TTL.
// Concurrent loads of the same key are collapsed into one call.
type LRU struct {
	lru    *expirable.LRU[string, []byte]
	group  singleflight.Group
	config Config

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
	shared    atomic.Int64
}

// NewLRU creates a new LRU cache. It returns nil when the configuration
// disables caching; a nil *LRU is safe to use and never stores anything.
func NewLRU(config Config) *LRU {
	if config.MaxItems <= 0 {
		return nil
	}
	c := &LRU{config: config}
	c.lru = expirable.NewLRU[string, []byte](config.MaxItems, func(string, []byte) {
		c.evictions.Add(1)
	}, config.TTL)
	return c
}

func (c *LRU) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return v, true
}

func (c *LRU) Set(key string, value []byte) {
	if c == nil {
		return
	}
	c.sets.Add(1)
	c.lru.Add(key, value)
}

func (c *LRU) Delete(key string) {
	if c == nil {
		return
	}
	c.lru.Remove(key)
}

func (c *LRU) Clear() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func (c *LRU) Keys() []string {
	if c == nil {
		return nil
	}
	return c.lru.Keys()
}

func (c *LRU) Size() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func (c *LRU) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	s := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sets:      c.sets.Load(),
		Evictions: c.evictions.Load(),
		Shared:    c.shared.Load(),
		Size:      c.lru.Len(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRatio = float64(s.Hits) / float64(total)
	}
	return s
}

// Fetch returns the cached value for key, or runs load once for all
// concurrent callers and caches a successful result. The shared load runs
// detached from any one caller's cancellation; each caller stops waiting
// when its own ctx is done.
func (c *LRU) Fetch(ctx context.Context, key string, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil {
		return load(ctx)
	}
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		body, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.Set(key, body)
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.shared.Add(1)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

var _ Cache = (*LRU)(nil)
