// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to start the real backing services the
// model lifecycle can be configured against, so the Redis model cache and the
// MinIO artifact store are exercised against production-equivalent servers.
//
// # Redis Container
//
//	func TestRedisCache(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, redis)
//
//	    client := goredis.NewClient(&goredis.Options{Addr: redis.Addr})
//	    // ...
//	}
//
// # MinIO Container
//
// NewMinioContainer starts a single-node MinIO server with known credentials
// for artifact store tests.
//
// # Build Tags
//
// Everything in this package is behind the integration build tag:
//
//	go test -tags integration ./...
package testinfra
