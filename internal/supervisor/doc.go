// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

/*
Package supervisor runs the long-lived services under a suture v4 tree.

	jobmatch (root)
	├── events-layer    lifecycle event consumers (model reloader)
	├── training-layer  training scheduler, model cache warmer
	└── api-layer       HTTP server

Each layer restarts its own children with suture's backoff. Supervisor
events are logged through sutureslog on the slog bridge of the zerolog
logger.

Services only need Serve(ctx) error and, for readable logs, String().
Package services holds wrappers for components that do not have that
shape natively.
*/
package supervisor
