// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the committee roster API.

# Route Registration

NewRouter builds the services, their handlers and a configured
http.ServeMux:

	mux := router.NewRouter(db, cfg, metrics.NewManager())

Every API route is wrapped with middleware.WithLogging and
middleware.WithMetrics.

# Endpoints

Health, banner and metrics:

	GET /health
	GET /
	GET /metrics

Eligibility and weights:

	GET   /eligibility                 - Eligibility preflight
	GET   /designation-weight          - Per-seat and total weight
	PATCH /committees/lted-weight      - Set or clear a committee's weight (admin)
	POST  /weighted-table/import       - Bulk weight import (admin)

Roster (admin):

	POST   /committees/{id}/members           - Admit a voter
	DELETE /committees/{id}/members/{voterId} - Remove a voter

Flags:

	POST /eligibility-flags/run          - Rescan memberships (admin)
	GET  /eligibility-flags              - Paged flag list
	POST /eligibility-flags/{id}/confirm - Review (admin)
	POST /eligibility-flags/{id}/dismiss - Review (admin)

Terms:

	GET  /terms/active
	POST /terms/{id}/activate (admin)
*/
package router
