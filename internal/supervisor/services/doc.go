// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

/*
Package services provides suture.Service wrappers for Jobmatch components.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts http.ErrServerClosed to a clean return

Model Cache Warmer (WarmerService):
  - Loads the production model of every type at startup
  - Optionally re-warms on an interval, typically the cache TTL

The training scheduler and the event model reloader already have the
Serve shape and are added to the tree directly.
*/
package services
