// Package cache provides the LRU query-result cache with TTL expiry.
//
// Keys are a sha256 digest of every search parameter, so identical queries
// with different filters or limits occupy distinct slots. Values are deep
// copies in both directions; nothing a caller does to a returned result can
// leak back into the cache.
package cache
