// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

// Package testinfra provides test infrastructure for integration testing with containers.
//
// It uses testcontainers-go to start the services the stores and repositories
// talk to in production:
//   - MinIOContainer for the S3 object store
//   - RedisContainer for the Redis object store
//   - PostgresContainer for the Postgres mapping repository
//
// Integration tests carry the integration build tag and skip when Docker is
// not available:
//
//	//go:build integration
//
//	func TestS3Store(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    minio, err := testinfra.NewMinIOContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, minio)
//	    // ...
//	}
//
// Run them with:
//
//	go test -tags integration ./...
package testinfra
