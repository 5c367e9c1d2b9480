package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is an in-process validation cache with LRU eviction and TTL expiry.
type Memory struct {
	lru *expirable.LRU[string, struct{}]
}

// NewMemory creates a Memory cache holding at most size entries for ttl each.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 1024
	}
	return &Memory{lru: expirable.NewLRU[string, struct{}](size, nil, ttl)}
}

// IsValid reports whether cacheKey was marked valid and has not expired.
func (m *Memory) IsValid(_ context.Context, cacheKey string) (bool, error) {
	_, ok := m.lru.Get(cacheKey)
	return ok, nil
}

// MarkValid records a positive validation.
func (m *Memory) MarkValid(_ context.Context, cacheKey string) error {
	m.lru.Add(cacheKey, struct{}{})
	return nil
}

// Forget removes a cached validation.
func (m *Memory) Forget(_ context.Context, cacheKey string) error {
	m.lru.Remove(cacheKey)
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Close purges the cache.
func (m *Memory) Close() error {
	m.lru.Purge()
	return nil
}
