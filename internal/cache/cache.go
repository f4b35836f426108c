package cache

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codectx/fastcontext/pkg/types"
)

// Key is the cache key for one fully-parameterized query
type Key [sha256.Size]byte

// entry pairs a stored result with its expiry deadline
type entry struct {
	result    *types.FastContextResult
	expiresAt time.Time
}

// QueryCache is an LRU of search results with per-entry TTL expiry. Results
// are deep-copied on the way in and out so callers can never mutate a
// cached value through a shared pointer.
type QueryCache struct {
	lru *lru.Cache[Key, entry]
	ttl time.Duration
}

// New creates a cache holding up to size entries, each valid for ttl
func New(size int, ttl time.Duration) (*QueryCache, error) {
	if size < 1 {
		return nil, fmt.Errorf("cache size must be >= 1, got %d", size)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	l, err := lru.New[Key, entry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &QueryCache{lru: l, ttl: ttl}, nil
}

// KeyFor derives the cache key from every parameter that affects the result
// shape. Two queries differing in any filter or limit never collide.
func KeyFor(query string, includes, excludes []string, maxResults int, includeContent bool) Key {
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(includes, "\x00")))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(excludes, "\x00")))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(maxResults)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(includeContent)))

	var key Key
	copy(key[:], h.Sum(nil))
	return key
}

// Get returns a copy of the cached result, or nil on miss. An expired entry
// counts as a miss and is evicted. The returned copy is marked as served
// from cache with zero search time.
func (c *QueryCache) Get(key Key) *types.FastContextResult {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		return nil
	}

	out := e.result.Clone()
	out.FromCache = true
	out.SearchTimeMs = 0
	return out
}

// Put stores a copy of the result under key with a fresh TTL
func (c *QueryCache) Put(key Key, result *types.FastContextResult) {
	if result == nil {
		return
	}
	c.lru.Add(key, entry{
		result:    result.Clone(),
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Len returns the number of live entries, expired ones included until read
func (c *QueryCache) Len() int { return c.lru.Len() }

// Clear drops every entry
func (c *QueryCache) Clear() { c.lru.Purge() }
