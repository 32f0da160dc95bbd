// Package cache provides a typed LRU cache on top of hashicorp/golang-lru.
//
//	seen := cache.NewLRU[string, struct{}](1024)
//	seen.Put("org:2025-09", struct{}{})
//	if seen.Contains("org:2025-09") {
//	    // skip the lookup
//	}
//
// All methods are safe for concurrent use.
package cache
