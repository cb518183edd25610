// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

/*
Package cache provides a thread-safe in-memory LRU cache with TTL support.

The anime repositories memoize parsed documents here so that repeated
requests for the same show skip XML/JSON parsing. The cached object stores
below them still decide when upstream data is refreshed; the memo TTL only
bounds how long a parsed copy outlives its source.

# Overview

  - O(1) Get, Add and Remove through a hashmap plus a doubly-linked list
  - O(1) eviction of the least recently used entry at capacity
  - Lazy expiration on Get, plus CleanupExpired for periodic sweeps
  - Hit and miss counters for metrics

# Usage Example

	memo := cache.NewLRU[*models.AnimeEntry](1024, 10*time.Minute)

	if entry, ok := memo.Get("A123"); ok {
	    return entry, nil
	}
	entry, err := parse()
	memo.Add("A123", entry)

# Thread Safety

All methods are safe for concurrent use. Values are returned as stored, so
callers that hand out mutable values must copy them.
*/
package cache
