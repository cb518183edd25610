// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

/*
Package objstore provides the object stores that hold raw upstream documents
and images.

Every store implements Store: Stat, Get and Put of named objects carrying a
content type, a last-modified time, a last-fetched time and a TTL.

Backends:
  - FileStore, SingleFileStore: plain files with metadata in xattrs
  - S3Store: S3 compatible buckets via minio-go
  - BadgerStore: embedded badger database
  - RedisStore: Redis hashes shared between instances
  - MemoryStore, NullStore

HTTPStore and HTTPClient are the read-only upstream side with request and
error throttling. CachedStore combines an upstream with a cache and serves
stale entries when the upstream fails.

Stores are usually created from URLs with NewStore.
*/
package objstore
