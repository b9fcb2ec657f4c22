// Package cache holds the two read-cache shapes the client uses: bounded
// TTL caches keyed by call argument, and size-1 latest-value caches for
// things that never change while connected to one controller.
package cache

import (
	"sync"
	"time"
)

// Observer receives hit/miss callbacks so the owner can export cache
// effectiveness as metrics without this package knowing the backend.
type Observer interface {
	CacheHit(name string)
	CacheMiss(name string)
}

type entry[T any] struct {
	val T
	exp time.Time
}

// TTL is a bounded map cache with per-entry expiry. Its job is to collapse
// duplicate reads inside one poll cycle, so the TTL is short.
type TTL[T any] struct {
	mu   sync.Mutex
	name string
	m    map[string]entry[T]
	ttl  time.Duration
	max  int
	obs  Observer
	now  func() time.Time
}

func NewTTL[T any](name string, ttl time.Duration, max int, obs Observer) *TTL[T] {
	return &TTL[T]{
		name: name,
		m:    make(map[string]entry[T]),
		ttl:  ttl,
		max:  max,
		obs:  obs,
		now:  time.Now,
	}
}

func (c *TTL[T]) Get(key string) (T, bool) {
	var zero T
	c.mu.Lock()
	e, ok := c.m[key]
	now := c.now()
	c.mu.Unlock()
	if !ok || now.After(e.exp) {
		if c.obs != nil {
			c.obs.CacheMiss(c.name)
		}
		return zero, false
	}
	if c.obs != nil {
		c.obs.CacheHit(c.name)
	}
	return e.val, true
}

func (c *TTL[T]) Set(key string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.m[key]; !exists && len(c.m) >= c.max {
		c.evict()
	}
	c.m[key] = entry[T]{val: v, exp: c.now().Add(c.ttl)}
}

// evict drops expired entries, then entries closest to expiry until there is
// room for one more. Called with the lock held.
func (c *TTL[T]) evict() {
	now := c.now()
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
		}
	}
	for len(c.m) >= c.max {
		var victim string
		var soonest time.Time
		first := true
		for k, e := range c.m {
			if first || e.exp.Before(soonest) {
				victim, soonest = k, e.exp
				first = false
			}
		}
		delete(c.m, victim)
	}
}

// Latest is a size-1 cache with no expiry.
type Latest[T any] struct {
	mu  sync.Mutex
	val T
	ok  bool
}

func (l *Latest[T]) Get() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.val, l.ok
}

func (l *Latest[T]) Set(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.val = v
	l.ok = true
}
