// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

/*
Package api exposes the training, registry and recommendation operations
over HTTP using the Chi router.

Routes live under /api/v1:

	POST /training/train-all
	POST /training/train/{type}
	GET  /training/status
	GET  /models/types
	GET  /models/{type}/versions
	GET  /models/{type}/production
	POST /models/{type}/promote/{version}
	POST /models/{type}/rollback
	POST /models/cache/invalidate?type=
	GET  /recommendations/jobs/{studentID}?mode=&limit=
	GET  /recommendations/students/{jobID}?mode=&limit=
	POST /predictions/pay/{algorithm}

plus /health and the Prometheus /metrics endpoint.

Every JSON body uses the APIResponse envelope. Errors classified by
package apperr map to status codes: invalid input 400, not found 404,
conflict 409, insufficient data 422, unavailable 503, anything else 500.

Training requests detach from the request context so that a client
disconnect does not abort a run half way through registration.
*/
package api
